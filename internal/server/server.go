// Package server exposes the HTTP and websocket surface of the agent.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dubeyashu123/Siaara-Backend/internal/config"
	"github.com/dubeyashu123/Siaara-Backend/internal/dispatch"
	"github.com/dubeyashu123/Siaara-Backend/internal/relay"
	"github.com/dubeyashu123/Siaara-Backend/internal/stt"
	"github.com/dubeyashu123/Siaara-Backend/internal/telephony"
	"github.com/dubeyashu123/Siaara-Backend/internal/telephony/twiml"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The telephony provider connects from its own media hosts.
		return true
	},
}

// CallDispatcher runs one outbound dispatch attempt.
type CallDispatcher interface {
	DispatchNext(ctx context.Context) (dispatch.Result, error)
}

// StreamFactory builds a fresh transcription stream per call session.
type StreamFactory func() stt.Stream

// Handler holds the wired dependencies behind every endpoint.
type Handler struct {
	Config     *config.Config
	Dispatcher CallDispatcher
	Streams    StreamFactory
	Replies    relay.TranscriptHandler
}

// NewRouter registers every endpoint on a fresh mux.
func NewRouter(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.home)
	mux.HandleFunc("/call", h.call)
	mux.HandleFunc("/plivo_answer", h.answer)
	mux.HandleFunc("/media", h.media)
	mux.HandleFunc("/twiml_reply", h.twimlReply)
	mux.HandleFunc("/end_call", h.endCall)
	return mux
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "AI Sales Agent is running!",
	})
}

func (h *Handler) call(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.Dispatcher.DispatchNext(r.Context())
	if err != nil {
		slog.Error("dispatch failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"detail": "Failed to initiate call. " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	callSID := r.FormValue("CallSid")

	streamURL := h.Config.MediaStreamURL()
	if callSID != "" {
		streamURL += "?call_sid=" + callSID
	}

	doc := telephony.AnswerDocument(streamURL, h.Config.Greeting, h.Config.AnswerHoldMode)
	writeXML(w, doc)
}

func (h *Handler) media(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("media websocket upgrade failed", "error", err)
		return
	}

	callSID := r.URL.Query().Get("call_sid")
	session := relay.NewSession(conn, h.Streams(), h.Replies, callSID)
	// The request context dies with the hijacked connection's HTTP
	// bookkeeping; the session manages its own lifetime.
	if err := session.Run(context.Background()); err != nil {
		slog.Error("call session ended with error", "call_sid", session.CallSID(), "error", err)
	}
}

func (h *Handler) twimlReply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	text := r.FormValue("text")
	writeXML(w, telephony.ReplyDocument(text, h.Config.AnswerURL()))
}

func (h *Handler) endCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if sid := r.FormValue("CallSid"); sid != "" {
		slog.Info("ending call", "call_sid", sid)
	}
	writeXML(w, telephony.EndDocument())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write json response", "error", err)
	}
}

func writeXML(w http.ResponseWriter, doc *twiml.Document) {
	body, err := doc.XML()
	if err != nil {
		slog.Error("failed to serialise call-control document", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Write(body)
}
