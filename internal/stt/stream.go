// Package stt streams call audio to a speech-to-text provider and emits
// finalized transcripts.
package stt

import "context"

// Transcript is one provider result. Final results are no longer subject to
// revision and are the only ones the relay acts on.
type Transcript struct {
	Text  string
	Final bool
}

// Stream is one live transcription session.
type Stream interface {
	// Connect opens the provider websocket. Failure here is fatal to the
	// owning call session.
	Connect(ctx context.Context) error
	// Configure runs the one-time start-of-stream side effects. Must be
	// called exactly once, before the first SendAudio.
	Configure() error
	// SendAudio forwards raw encoded audio bytes verbatim.
	SendAudio(p []byte) error
	// Transcripts delivers provider results in arrival order. The channel
	// closes when the provider side closes.
	Transcripts() <-chan Transcript
	Close() error
}
