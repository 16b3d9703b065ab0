package proto

// EventType identifies a frame of the relay's message stream.
type EventType string

// Event types.
const (
	EventStart          EventType = "start"
	EventTextDelta      EventType = "text-delta"
	EventReasoningDelta EventType = "reasoning-delta"
	EventFinish         EventType = "finish"
	EventError          EventType = "error"
)

// Event is one frame of the relay's message stream, carried as the data of a
// server-sent event.
type Event struct {
	Type      EventType `json:"type"`
	MessageID string    `json:"messageId,omitempty"`
	Delta     string    `json:"delta,omitempty"`
	ErrorText string    `json:"errorText,omitempty"`
}

// PartType returns the part type a delta event targets and whether the event
// carries a delta at all.
func (e Event) PartType() (PartType, bool) {
	switch e.Type {
	case EventTextDelta:
		return PartText, true
	case EventReasoningDelta:
		return PartReasoning, true
	}
	return "", false
}

// Request is a chat request sent to the relay.
type Request struct {
	Messages []Message `json:"messages"`
	Model    string    `json:"model"`
	System   string    `json:"system,omitempty"`
}
