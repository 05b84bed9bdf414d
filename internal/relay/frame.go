package relay

// Media-stream frame events sent by the telephony provider over the
// websocket, as JSON text messages.
const (
	EventStart = "start"
	EventMedia = "media"
	EventStop  = "stop"
)

// Frame is one decoded media-stream message.
type Frame struct {
	Event     string        `json:"event"`
	StreamSID string        `json:"streamSid,omitempty"`
	Start     *StartPayload `json:"start,omitempty"`
	Media     *MediaPayload `json:"media,omitempty"`
}

// StartPayload names the call the stream belongs to.
type StartPayload struct {
	CallSID   string `json:"callSid"`
	StreamSID string `json:"streamSid,omitempty"`
}

// MediaPayload carries one base64-encoded audio chunk.
type MediaPayload struct {
	Track   string `json:"track,omitempty"`
	Payload string `json:"payload"`
}
