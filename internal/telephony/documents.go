package telephony

import (
	"github.com/dubeyashu123/Siaara-Backend/internal/config"
	"github.com/dubeyashu123/Siaara-Backend/internal/telephony/twiml"
)

// How long each hold variant keeps the call leg alive while the media
// stream runs in the background.
const (
	holdPauseSeconds  = 60
	gatherTimeoutSecs = 60
)

// AnswerDocument is what Twilio fetches when the lead answers: open the
// media stream back to the relay, speak the greeting, then hold the leg so
// the stream has a live call to ride on.
func AnswerDocument(streamURL, greeting string, hold config.HoldMode) *twiml.Document {
	doc := twiml.New().
		Append(twiml.Start{Stream: twiml.Stream{URL: streamURL, Track: "both"}}).
		Append(twiml.Say{Text: greeting})

	if hold == config.HoldGather {
		doc.Append(twiml.Gather{NumDigits: 1, Timeout: gatherTimeoutSecs})
	} else {
		doc.Append(twiml.Pause{Length: holdPauseSeconds})
	}
	return doc
}

// ReplyDocument speaks the agent's reply, then redirects to the answer
// webhook so the stream and hold are re-established for the next turn.
func ReplyDocument(text, answerURL string) *twiml.Document {
	return twiml.New().
		Append(twiml.Say{Text: text}).
		Append(twiml.Redirect{URL: answerURL, Method: "POST"})
}

// EndDocument hangs the call up.
func EndDocument() *twiml.Document {
	return twiml.New().Append(twiml.Hangup{})
}
