package stream

import (
	"strings"
	"sync"
)

// Buffer accumulates the raw decoded text of a stream for the debug view.
// It is purely additive and safe for concurrent use; the structured message
// path never depends on it.
type Buffer struct {
	mu sync.Mutex
	sb strings.Builder
}

// Append adds text to the buffer.
func (b *Buffer) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sb.WriteString(text)
}

// Clear empties the buffer. Called at the start of each new request.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sb.Reset()
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}
