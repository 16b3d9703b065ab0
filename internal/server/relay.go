package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/hicap-oss/parley/internal/proto"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req proto.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	body, err := s.completionParams(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ew := eventWriter{w: w, flusher: flusher}
	id := uuid.NewString()
	ew.send(proto.Event{Type: proto.EventStart, MessageID: id})

	s.logger.Info("chat", "model", body.Model, "messages", len(body.Messages))

	upstream := s.client.Chat.Completions.NewStreaming(ctx, body)
	defer upstream.Close() //nolint:errcheck

	var splitter thinkSplitter
	for upstream.Next() {
		chunk := upstream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta
		if reasoning := reasoningField(delta); reasoning != "" {
			ew.send(proto.Event{Type: proto.EventReasoningDelta, MessageID: id, Delta: reasoning})
		}
		for _, p := range splitter.feed(delta.Content) {
			ew.send(deltaEvent(id, p))
		}
	}
	for _, p := range splitter.flush() {
		ew.send(deltaEvent(id, p))
	}

	if err := upstream.Err(); err != nil {
		s.logger.Error("upstream", "err", err)
		ew.send(proto.Event{Type: proto.EventError, MessageID: id, ErrorText: errorText(ctx, err)})
		return
	}
	ew.send(proto.Event{Type: proto.EventFinish, MessageID: id})
}

// completionParams converts the relay request into an upstream completion
// request. Messages whose role the relay does not forward are dropped.
func (s *Server) completionParams(req proto.Request) (openai.ChatCompletionNewParams, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		if !proto.ValidRole(msg.Role) {
			continue
		}
		switch msg.Role {
		case proto.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content()))
		case proto.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content()))
		case proto.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content()))
		}
	}
	if len(messages) == 0 {
		return openai.ChatCompletionNewParams{}, errors.New("no forwardable messages")
	}

	model := req.Model
	if model == "" {
		model = s.config.Model
	}
	return openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}, nil
}

func deltaEvent(id string, p piece) proto.Event {
	typ := proto.EventTextDelta
	if p.reasoning {
		typ = proto.EventReasoningDelta
	}
	return proto.Event{Type: typ, MessageID: id, Delta: p.text}
}

// reasoningField extracts reasoning text that some upstreams attach to the
// delta as a nonstandard field.
func reasoningField(delta openai.ChatCompletionChunkChoiceDelta) string {
	var extra struct {
		Reasoning        json.RawMessage `json:"reasoning"`
		ReasoningContent json.RawMessage `json:"reasoning_content"`
	}
	if err := json.Unmarshal([]byte(delta.RawJSON()), &extra); err != nil {
		return ""
	}
	for _, raw := range []json.RawMessage{extra.ReasoningContent, extra.Reasoning} {
		var text string
		if len(raw) > 0 && json.Unmarshal(raw, &text) == nil && text != "" {
			return text
		}
	}
	return ""
}

func errorText(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "upstream request timed out"
	}
	return err.Error()
}

type eventWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (ew eventWriter) send(ev proto.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(ew.w, "data: %s\n\n", data)
	ew.flusher.Flush()
}
