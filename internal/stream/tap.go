package stream

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Listener receives decoded text as it passes through a Tap.
type Listener func(text string)

// Tap observes the bytes of an in-flight response body without consuming it.
// Attach wraps the body; the primary consumer keeps reading the wrapped body
// as usual while every read is decoded and fanned out to the listeners. A
// listener failure is logged and never reaches the primary consumer.
type Tap struct {
	mu        sync.Mutex
	decoder   Decoder
	listeners []Listener
	detached  bool
}

// NewTap creates a tap that forwards decoded text to the given listeners.
func NewTap(listeners ...Listener) *Tap {
	return &Tap{listeners: listeners}
}

// Attach wraps body so that every read is observed by the tap. A nil tap or
// a nil body is a no-op and returns body unchanged.
func (t *Tap) Attach(body io.ReadCloser) io.ReadCloser {
	if t == nil || body == nil {
		return body
	}
	return &tappedBody{tap: t, body: body}
}

// Detach stops the tap; subsequent reads pass through unobserved.
func (t *Tap) Detach() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.detached = true
}

func (t *Tap) observe(p []byte) {
	t.mu.Lock()
	if t.detached {
		t.mu.Unlock()
		return
	}
	text := t.decoder.Feed(p)
	t.mu.Unlock()
	t.emit(text)
}

func (t *Tap) finish() {
	t.mu.Lock()
	if t.detached {
		t.mu.Unlock()
		return
	}
	text := t.decoder.Flush()
	t.mu.Unlock()
	t.emit(text)
}

func (t *Tap) emit(text string) {
	if text == "" {
		return
	}
	for _, l := range t.listeners {
		deliver(l, text)
	}
}

func deliver(l Listener, text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("stream tap listener failed", "recover", r)
		}
	}()
	l(text)
}

type tappedBody struct {
	tap  *Tap
	body io.ReadCloser
}

func (b *tappedBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if n > 0 {
		b.tap.observe(p[:n])
	}
	if err == io.EOF {
		b.tap.finish()
	}
	return n, err
}

func (b *tappedBody) Close() error {
	b.tap.Detach()
	return b.body.Close()
}

// Tapper tracks the active tap. At most one tap may observe the transport at
// a time: activating a new one tears down the previous one, so a stale
// request can never keep feeding the debug view.
type Tapper struct {
	mu     sync.Mutex
	active *Tap
}

// Activate makes t the active tap, detaching any previous one.
func (tp *Tapper) Activate(t *Tap) *Tap {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.active != nil {
		tp.active.Detach()
	}
	tp.active = t
	return t
}

// Release detaches the active tap, if any.
func (tp *Tapper) Release() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.active != nil {
		tp.active.Detach()
		tp.active = nil
	}
}
