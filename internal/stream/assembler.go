package stream

import (
	"sync"

	"github.com/hicap-oss/parley/internal/proto"
)

// Assembler builds the conversation from streamed delta events. It owns the
// mutable in-progress messages; once finalized a message joins the immutable
// transcript. Events arrive from the stream pump while Render is called from
// the UI, hence the mutex.
type Assembler struct {
	mu    sync.Mutex
	done  []proto.Message
	open  map[string]*proto.Message
	order []string
}

// NewAssembler creates an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{open: make(map[string]*proto.Message)}
}

// Append adds an already-complete message to the transcript.
func (a *Assembler) Append(msg proto.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.done = append(a.done, msg)
}

// Apply merges one event into the in-progress state. An unknown message ID
// opens a new assistant message; a delta whose part type differs from the
// message's last part closes that part and opens a new one. Events that
// carry no delta are ignored.
func (a *Assembler) Apply(ev proto.Event) {
	pt, ok := ev.PartType()
	if !ok || ev.MessageID == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	msg := a.open[ev.MessageID]
	if msg == nil {
		msg = &proto.Message{ID: ev.MessageID, Role: proto.RoleAssistant}
		a.open[ev.MessageID] = msg
		a.order = append(a.order, ev.MessageID)
	}
	if n := len(msg.Parts); n > 0 && msg.Parts[n-1].Type == pt {
		msg.Parts[n-1].Text += ev.Delta
		return
	}
	msg.Parts = append(msg.Parts, proto.Part{Type: pt, Text: ev.Delta})
}

// Finalize moves the in-progress message with the given ID into the
// transcript as-is. Unknown IDs are a no-op.
func (a *Assembler) Finalize(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.finalize(id)
}

// FinalizeOpen finalizes every in-progress message in arrival order. Used at
// stream end and when the user stops mid-stream: whatever content arrived is
// kept exactly as it was assembled.
func (a *Assembler) FinalizeOpen() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range a.order {
		a.finalize(id)
	}
}

func (a *Assembler) finalize(id string) {
	msg, ok := a.open[id]
	if !ok {
		return
	}
	delete(a.open, id)
	for i, oid := range a.order {
		if oid == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.done = append(a.done, *msg)
}

// Render returns a snapshot of the conversation: the transcript followed by
// the in-progress messages in arrival order. Cheap enough to call on every
// redraw while streaming.
func (a *Assembler) Render() []proto.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]proto.Message, 0, len(a.done)+len(a.order))
	out = append(out, a.done...)
	for _, id := range a.order {
		out = append(out, a.open[id].Clone())
	}
	return out
}

// Transcript returns only the finalized messages.
func (a *Assembler) Transcript() []proto.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]proto.Message(nil), a.done...)
}
