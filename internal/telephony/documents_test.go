package telephony

import (
	"strings"
	"testing"

	"github.com/dubeyashu123/Siaara-Backend/internal/config"
	"github.com/dubeyashu123/Siaara-Backend/internal/telephony/twiml"
)

func TestAnswerDocumentShape(t *testing.T) {
	doc := AnswerDocument("wss://example.com/media", "Hi, this is Rahul.", config.HoldPause)

	var streams, says, pauses int
	for _, v := range doc.Verbs() {
		switch v.(type) {
		case twiml.Start:
			streams++
		case twiml.Say:
			says++
		case twiml.Pause:
			pauses++
		}
	}
	if streams != 1 {
		t.Errorf("expected exactly one stream-start verb, got %d", streams)
	}
	if says != 1 {
		t.Errorf("expected exactly one greeting verb, got %d", says)
	}
	if pauses != 1 {
		t.Errorf("expected a hold pause, got %d", pauses)
	}

	body, err := doc.XML()
	if err != nil {
		t.Fatalf("XML() error: %v", err)
	}
	if !strings.Contains(string(body), "wss://example.com/media") {
		t.Errorf("stream not pointed at relay address: %q", body)
	}
}

func TestAnswerDocumentGatherHold(t *testing.T) {
	doc := AnswerDocument("wss://example.com/media", "Hello", config.HoldGather)

	var gathers, pauses int
	for _, v := range doc.Verbs() {
		switch v.(type) {
		case twiml.Gather:
			gathers++
		case twiml.Pause:
			pauses++
		}
	}
	if gathers != 1 || pauses != 0 {
		t.Errorf("gather hold mode: got %d gathers, %d pauses", gathers, pauses)
	}
}

func TestReplyDocument(t *testing.T) {
	doc := ReplyDocument("Sounds great!", "https://example.com/plivo_answer")

	verbs := doc.Verbs()
	if len(verbs) != 2 {
		t.Fatalf("expected say+redirect, got %d verbs", len(verbs))
	}
	say, ok := verbs[0].(twiml.Say)
	if !ok || say.Text != "Sounds great!" {
		t.Errorf("first verb should speak the reply, got %#v", verbs[0])
	}
	redir, ok := verbs[1].(twiml.Redirect)
	if !ok || redir.URL != "https://example.com/plivo_answer" {
		t.Errorf("second verb should redirect to the answer webhook, got %#v", verbs[1])
	}
}

func TestEndDocument(t *testing.T) {
	verbs := EndDocument().Verbs()
	if len(verbs) != 1 {
		t.Fatalf("expected a single verb, got %d", len(verbs))
	}
	if _, ok := verbs[0].(twiml.Hangup); !ok {
		t.Errorf("expected Hangup, got %#v", verbs[0])
	}
}
