package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/dubeyashu123/Siaara-Backend/internal/config"
	"github.com/dubeyashu123/Siaara-Backend/internal/dispatch"
	"github.com/dubeyashu123/Siaara-Backend/internal/leads"
	"github.com/dubeyashu123/Siaara-Backend/internal/llm"
	"github.com/dubeyashu123/Siaara-Backend/internal/logging"
	"github.com/dubeyashu123/Siaara-Backend/internal/reply"
	"github.com/dubeyashu123/Siaara-Backend/internal/server"
	"github.com/dubeyashu123/Siaara-Backend/internal/stt"
	"github.com/dubeyashu123/Siaara-Backend/internal/telephony"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("refusing to start", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := leads.NewSheetsStore(ctx, cfg.SheetID, cfg.SheetCredentialsFile)
	if err != nil {
		slog.Error("failed to create lead store", "error", err)
		os.Exit(1)
	}

	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer gemini.Close()

	calls := telephony.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)

	handler := &server.Handler{
		Config:     cfg,
		Dispatcher: dispatch.New(store, calls, cfg.AnswerURL()),
		Replies:    reply.NewDispatcher(gemini, calls, cfg.AnswerURL()),
		Streams: func() stt.Stream {
			return stt.NewDeepgramStream(cfg.DeepgramAPIKey, cfg.Transcription)
		},
	}

	addr := ":" + cfg.Port
	slog.Info("server starting", "addr", addr, "answer_url", cfg.AnswerURL())
	if err := http.ListenAndServe(addr, server.NewRouter(handler)); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
