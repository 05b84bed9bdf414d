// Package reply turns finalized transcripts into speech pushed back into
// the live call.
package reply

import (
	"context"
	"log/slog"
	"time"

	"github.com/dubeyashu123/Siaara-Backend/internal/telephony"
	"github.com/dubeyashu123/Siaara-Backend/internal/telephony/twiml"
)

// Spoken when the model returns an empty completion.
const fillerReply = "I see. Could you tell me a little more about that?"

// Bound on one completion so session teardown never waits on a stuck model
// call.
const generateTimeout = 15 * time.Second

// Generator produces the agent's reply text for a transcript.
type Generator interface {
	GenerateReply(ctx context.Context, transcript string) (string, error)
}

// CallUpdater pushes a call-control document into a live call.
type CallUpdater interface {
	UpdateCall(ctx context.Context, callSID string, doc *twiml.Document) error
}

// Dispatcher is safe for use by concurrent call sessions: the call SID is
// an argument, never shared state.
type Dispatcher struct {
	llm       Generator
	calls     CallUpdater
	answerURL string
}

func NewDispatcher(llm Generator, calls CallUpdater, answerURL string) *Dispatcher {
	return &Dispatcher{llm: llm, calls: calls, answerURL: answerURL}
}

// HandleTranscript generates and speaks a reply. Failures are logged and
// swallowed: the call continues, just without this reply.
func (d *Dispatcher) HandleTranscript(ctx context.Context, callSID, transcript string) {
	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	text, err := d.llm.GenerateReply(genCtx, transcript)
	if err != nil {
		slog.Error("reply generation failed", "call_sid", callSID, "error", err)
		return
	}
	if text == "" {
		text = fillerReply
	}

	slog.Info("speaking reply", "call_sid", callSID, "reply", text)

	doc := telephony.ReplyDocument(text, d.answerURL)
	if err := d.calls.UpdateCall(ctx, callSID, doc); err != nil {
		slog.Error("failed to push reply into call", "call_sid", callSID, "error", err)
	}
}
