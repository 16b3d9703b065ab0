// Package client implements the transport side of the relay protocol: one
// POST per chat turn, answered by a stream of typed message events carried
// over server-sent events.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"

	"github.com/tmaxmax/go-sse"

	"github.com/hicap-oss/parley/internal/proto"
	"github.com/hicap-oss/parley/internal/stream"
)

// Config represents the configuration for the relay client.
type Config struct {
	Endpoint   string
	HTTPClient *http.Client
}

// Client is a relay API client.
type Client struct {
	config Config
}

// New creates a new relay client with the given configuration.
func New(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	return &Client{config: config}
}

// Stream issues the chat request and returns the event stream. The tap, when
// not nil, observes the raw response body without consuming it; the event
// stream reads the same body through the tap's wrapper.
func (c *Client) Stream(ctx context.Context, req proto.Request, tap *stream.Tap) (*Stream, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	hr.Header.Set("Content-Type", "application/json")
	hr.Header.Set("Accept", "text/event-stream")

	resp, err := c.config.HTTPClient.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		if len(bytes.TrimSpace(body)) > 0 {
			return nil, fmt.Errorf("client: relay returned %s: %s", resp.Status, bytes.TrimSpace(body))
		}
		return nil, fmt.Errorf("client: relay returned %s", resp.Status)
	}

	body := tap.Attach(resp.Body)
	s := &Stream{body: body}
	s.pull, s.stop = iter.Pull2(sse.Read(body, nil))
	return s, nil
}

// Stream is an ongoing relay response.
type Stream struct {
	body io.ReadCloser
	pull func() (sse.Event, error, bool)
	stop func()
	cur  proto.Event
	err  error
	done bool
}

// Next advances to the next event. It returns false once the stream is
// exhausted, errored, or the relay sent a finish or error frame; check Err
// afterwards.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	for {
		ev, err, ok := s.pull()
		if !ok {
			s.done = true
			return false
		}
		if err != nil {
			s.err = fmt.Errorf("client: %w", err)
			s.done = true
			return false
		}
		var event proto.Event
		if uerr := json.Unmarshal([]byte(ev.Data), &event); uerr != nil {
			// frames we don't understand are skipped, not fatal
			continue
		}
		switch event.Type {
		case "":
			continue
		case proto.EventFinish:
			s.done = true
			return false
		case proto.EventError:
			s.err = fmt.Errorf("client: %s", event.ErrorText)
			s.done = true
			return false
		}
		s.cur = event
		return true
	}
}

// Current returns the event Next advanced to.
func (s *Stream) Current() proto.Event {
	return s.cur
}

// Err returns the streaming error, if any.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the underlying response body.
func (s *Stream) Close() error {
	s.done = true
	if s.stop != nil {
		s.stop()
	}
	if s.body == nil {
		return nil
	}
	if err := s.body.Close(); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	s.body = nil
	return nil
}
