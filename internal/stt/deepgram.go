package stt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/pkg/client/listen"

	"github.com/dubeyashu123/Siaara-Backend/internal/config"
)

// mulaw silence byte; a 20ms frame at 8kHz is 160 samples.
const (
	mulawSilence     = 0xFF
	silenceFrameSize = 160
)

// DeepgramStream is the Deepgram live-transcription implementation of
// Stream, tuned for telephony audio.
type DeepgramStream struct {
	apiKey string
	cfg    config.Transcription

	conn        *client.WSCallback
	transcripts chan Transcript
	closeOnce   sync.Once
}

func NewDeepgramStream(apiKey string, cfg config.Transcription) *DeepgramStream {
	return &DeepgramStream{
		apiKey:      apiKey,
		cfg:         cfg,
		transcripts: make(chan Transcript, 100),
	}
}

func (d *DeepgramStream) Connect(ctx context.Context) error {
	clientOptions := interfaces.ClientOptions{
		APIKey: d.apiKey,
	}

	tOptions := interfaces.LiveTranscriptionOptions{
		Model:          d.cfg.Model,
		Language:       d.cfg.Language,
		Encoding:       d.cfg.Encoding,
		SampleRate:     d.cfg.SampleRate,
		Channels:       d.cfg.Channels,
		Punctuate:      d.cfg.Punctuate,
		InterimResults: d.cfg.InterimResults,
	}

	conn, err := client.NewWebSocketUsingCallback(ctx, "", &clientOptions, &tOptions, &deepgramReceiver{d: d})
	if err != nil {
		return fmt.Errorf("stt: create deepgram websocket: %w", err)
	}
	d.conn = conn

	if ok := d.conn.Connect(); !ok {
		return fmt.Errorf("stt: deepgram websocket handshake failed")
	}
	return nil
}

// Configure primes the live session with a short burst of silence so the
// provider's cold start does not clip the lead's first word.
func (d *DeepgramStream) Configure() error {
	frame := make([]byte, silenceFrameSize)
	for i := range frame {
		frame[i] = mulawSilence
	}
	for i := 0; i < d.cfg.PrimingFrames; i++ {
		if _, err := d.conn.Write(frame); err != nil {
			return fmt.Errorf("stt: prime stream: %w", err)
		}
	}
	return nil
}

func (d *DeepgramStream) SendAudio(p []byte) error {
	if _, err := d.conn.Write(p); err != nil {
		return fmt.Errorf("stt: send audio: %w", err)
	}
	return nil
}

func (d *DeepgramStream) Transcripts() <-chan Transcript {
	return d.transcripts
}

func (d *DeepgramStream) Close() error {
	if d.conn != nil {
		d.conn.Stop()
	}
	d.closeTranscripts()
	return nil
}

func (d *DeepgramStream) closeTranscripts() {
	d.closeOnce.Do(func() { close(d.transcripts) })
}

// deepgramReceiver implements msginterfaces.LiveMessageCallback.
type deepgramReceiver struct {
	d *DeepgramStream
}

func (r *deepgramReceiver) Open(or *msginterfaces.OpenResponse) error {
	slog.Debug("deepgram stream open")
	return nil
}

func (r *deepgramReceiver) Message(mr *msginterfaces.MessageResponse) error {
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}
	alt := mr.Channel.Alternatives[0]
	if alt.Transcript == "" {
		return nil
	}
	select {
	case r.d.transcripts <- Transcript{Text: alt.Transcript, Final: mr.IsFinal}:
	default:
		slog.Warn("transcript queue full, dropping result")
	}
	return nil
}

func (r *deepgramReceiver) Metadata(md *msginterfaces.MetadataResponse) error { return nil }

func (r *deepgramReceiver) SpeechStarted(ssr *msginterfaces.SpeechStartedResponse) error {
	return nil
}

func (r *deepgramReceiver) UtteranceEnd(ur *msginterfaces.UtteranceEndResponse) error {
	return nil
}

func (r *deepgramReceiver) Close(cr *msginterfaces.CloseResponse) error {
	r.d.closeTranscripts()
	return nil
}

func (r *deepgramReceiver) Error(er *msginterfaces.ErrorResponse) error {
	slog.Error("deepgram stream error", "response", er)
	return nil
}

func (r *deepgramReceiver) UnhandledEvent(byData []byte) error { return nil }
