package reply

import (
	"context"
	"errors"
	"testing"

	"github.com/dubeyashu123/Siaara-Backend/internal/telephony/twiml"
)

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) GenerateReply(ctx context.Context, transcript string) (string, error) {
	return f.reply, f.err
}

type fakeUpdater struct {
	callSID string
	doc     *twiml.Document
	err     error
	calls   int
}

func (f *fakeUpdater) UpdateCall(ctx context.Context, callSID string, doc *twiml.Document) error {
	f.calls++
	f.callSID = callSID
	f.doc = doc
	return f.err
}

func firstSay(t *testing.T, doc *twiml.Document) twiml.Say {
	t.Helper()
	for _, v := range doc.Verbs() {
		if say, ok := v.(twiml.Say); ok {
			return say
		}
	}
	t.Fatal("document has no Say verb")
	return twiml.Say{}
}

func TestHandleTranscriptSpeaksReply(t *testing.T) {
	updater := &fakeUpdater{}
	d := NewDispatcher(&fakeGenerator{reply: "Happy to explain!"}, updater, "https://example.com/plivo_answer")

	d.HandleTranscript(context.Background(), "CA123", "what does your service do?")

	if updater.calls != 1 {
		t.Fatalf("expected one call update, got %d", updater.calls)
	}
	if updater.callSID != "CA123" {
		t.Errorf("reply pushed into the wrong call: %q", updater.callSID)
	}
	if say := firstSay(t, updater.doc); say.Text != "Happy to explain!" {
		t.Errorf("unexpected spoken text: %q", say.Text)
	}
}

func TestHandleTranscriptEmptyCompletionUsesFiller(t *testing.T) {
	updater := &fakeUpdater{}
	d := NewDispatcher(&fakeGenerator{reply: ""}, updater, "https://example.com/plivo_answer")

	d.HandleTranscript(context.Background(), "CA123", "hmm")

	if updater.calls != 1 {
		t.Fatalf("expected one call update, got %d", updater.calls)
	}
	if say := firstSay(t, updater.doc); say.Text != fillerReply {
		t.Errorf("expected filler acknowledgment, got %q", say.Text)
	}
}

func TestHandleTranscriptModelFailureStaysSilent(t *testing.T) {
	updater := &fakeUpdater{}
	d := NewDispatcher(&fakeGenerator{err: errors.New("model timeout")}, updater, "https://example.com/plivo_answer")

	d.HandleTranscript(context.Background(), "CA123", "hello?")

	if updater.calls != 0 {
		t.Errorf("model failure must not push a reply, got %d updates", updater.calls)
	}
}

func TestHandleTranscriptUpdateFailureIsSwallowed(t *testing.T) {
	updater := &fakeUpdater{err: errors.New("call already completed")}
	d := NewDispatcher(&fakeGenerator{reply: "Still there?"}, updater, "https://example.com/plivo_answer")

	// Must not panic or propagate; the session simply continues unspoken.
	d.HandleTranscript(context.Background(), "CA123", "bye")
}
