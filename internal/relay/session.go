// Package relay bridges one call's telephony media stream to the
// speech-to-text provider and routes finalized transcripts to the reply
// dispatcher.
package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dubeyashu123/Siaara-Backend/internal/stt"
)

// State is the session lifecycle position.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	default:
		return "closed"
	}
}

// MediaSocket is the telephony side of the relay. *websocket.Conn
// satisfies it.
type MediaSocket interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// TranscriptHandler receives each finalized transcript with the session's
// own call SID, so concurrent sessions never share reply state.
type TranscriptHandler interface {
	HandleTranscript(ctx context.Context, callSID, transcript string)
}

const (
	transcriptQueueDepth = 64
	defaultDrainGrace    = 2 * time.Second
)

// Session owns both connections for the lifetime of one call. One leg
// ending tears the whole session down; nothing is retried or resumed.
type Session struct {
	id      string
	media   MediaSocket
	stream  stt.Stream
	replies TranscriptHandler
	log     *slog.Logger

	state      atomic.Int32
	drainGrace time.Duration

	mu         sync.Mutex
	callSID    string
	configured bool

	closeOnce sync.Once
	queue     chan string
}

// NewSession builds a session. callSID may be empty; the start frame names
// the call once the stream opens.
func NewSession(media MediaSocket, stream stt.Stream, replies TranscriptHandler, callSID string) *Session {
	id := uuid.NewString()
	s := &Session{
		id:         id,
		media:      media,
		stream:     stream,
		replies:    replies,
		log:        slog.With("session", id),
		drainGrace: defaultDrainGrace,
		callSID:    callSID,
		queue:      make(chan string, transcriptQueueDepth),
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// CallSID returns the call this session is serving, if known yet.
func (s *Session) CallSID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callSID
}

func (s *Session) setCallSID(sid string) {
	s.mu.Lock()
	s.callSID = sid
	s.mu.Unlock()
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Run relays until any leg ends, then drains and closes everything.
// It blocks for the life of the call.
func (s *Session) Run(ctx context.Context) error {
	s.log.Info("call session starting", "call_sid", s.CallSID())

	if err := s.stream.Connect(ctx); err != nil {
		s.log.Error("transcription connect failed", "error", err)
		s.shutdown()
		s.setState(StateClosed)
		return err
	}
	s.setState(StateActive)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	exited := make(chan error, 3)

	listen := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := fn(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.log.Warn("relay listener exited", "listener", name, "error", err)
			}
			exited <- err
		}()
	}

	listen("telephony", s.telephonyListener)
	listen("transcription", s.transcriptionListener)
	listen("reply", s.replyListener)

	// Fail fast: the first listener to end, cleanly or not, ends the call
	// session.
	err := <-exited
	s.setState(StateDraining)
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.drainGrace):
		// Listeners blocked in socket reads only come back when the
		// sockets close under them.
		s.shutdown()
		<-done
	}

	s.shutdown()
	s.setState(StateClosed)
	s.log.Info("call session closed", "call_sid", s.CallSID())

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// shutdown closes both provider connections. Best effort; close errors are
// logged, not retried.
func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		if err := s.stream.Close(); err != nil {
			s.log.Warn("transcription close failed", "error", err)
		}
		if err := s.media.Close(); err != nil {
			s.log.Warn("media socket close failed", "error", err)
		}
	})
}

// telephonyListener reads media-stream frames. The start event configures
// the transcription stream exactly once; media events forward decoded audio
// bytes verbatim; stop ends the session.
func (s *Session) telephonyListener(ctx context.Context) error {
	for {
		_, msg, err := s.media.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("relay: read media frame: %w", err)
		}

		var f Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.log.Warn("dropping malformed media frame", "error", err)
			continue
		}

		switch f.Event {
		case EventStart:
			if f.Start != nil && f.Start.CallSID != "" {
				s.setCallSID(f.Start.CallSID)
			}
			if !s.configured {
				if err := s.stream.Configure(); err != nil {
					return err
				}
				s.configured = true
			}
			s.log.Info("media stream started", "call_sid", s.CallSID())

		case EventMedia:
			if !s.configured || f.Media == nil {
				continue
			}
			audio, err := base64.StdEncoding.DecodeString(f.Media.Payload)
			if err != nil {
				s.log.Warn("dropping undecodable media payload", "error", err)
				continue
			}
			if err := s.stream.SendAudio(audio); err != nil {
				return err
			}

		case EventStop:
			s.log.Info("media stream stopped", "call_sid", s.CallSID())
			return nil
		}
	}
}

// transcriptionListener drains provider results in arrival order; only
// finalized, non-empty text reaches the reply queue.
func (s *Session) transcriptionListener(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-s.stream.Transcripts():
			if !ok {
				return nil
			}
			if !t.Final || t.Text == "" {
				continue
			}
			s.log.Info("final transcript", "call_sid", s.CallSID(), "text", t.Text)
			select {
			case s.queue <- t.Text:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// replyListener feeds queued transcripts to the reply dispatcher, one at a
// time, in order.
func (s *Session) replyListener(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text := <-s.queue:
			s.replies.HandleTranscript(ctx, s.CallSID(), text)
		}
	}
}
