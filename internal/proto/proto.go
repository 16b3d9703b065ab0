// Package proto is the shared protocol between the chat client and the relay.
package proto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ValidRole reports whether role is one the relay will forward.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// PartType identifies the kind of a message part.
type PartType string

// Part types.
const (
	PartText       PartType = "text"
	PartReasoning  PartType = "reasoning"
	PartToolCall   PartType = "tool-call"
	PartToolResult PartType = "tool-result"
)

// Part is a typed fragment of a message. Text belonging to the same logical
// part is concatenated in arrival order; parts of different types are never
// merged into each other.
type Part struct {
	Type PartType `json:"type"`
	Text string   `json:"text,omitempty"`
}

// Message is a message in the conversation.
type Message struct {
	ID    string `json:"id,omitempty"`
	Role  string `json:"role"`
	Parts []Part `json:"parts,omitempty"`
}

// message mirrors Message for decoding, plus the flat legacy shape where the
// whole body sits in a content string.
type message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Parts   []Part `json:"parts"`
	Content string `json:"content"`
}

// UnmarshalJSON accepts both the structured parts shape and the flat
// {role, content} shape. A flat message becomes a single text part here, at
// ingestion, so nothing downstream has to re-check which shape it was.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw message
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("proto: %w", err)
	}
	m.ID = raw.ID
	m.Role = raw.Role
	m.Parts = raw.Parts
	if len(m.Parts) == 0 && raw.Content != "" {
		m.Parts = []Part{{Type: PartText, Text: raw.Content}}
	}
	return nil
}

// TextMessage builds a finalized single-part text message.
func TextMessage(role, text string) Message {
	return Message{
		Role:  role,
		Parts: []Part{{Type: PartText, Text: text}},
	}
}

// Content returns the concatenated text parts of the message.
func (m Message) Content() string {
	var sb strings.Builder
	for _, part := range m.Parts {
		if part.Type == PartText {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// Reasoning returns the concatenated reasoning parts of the message.
func (m Message) Reasoning() string {
	var sb strings.Builder
	for _, part := range m.Parts {
		if part.Type == PartReasoning {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// Clone returns a copy of the message whose parts do not alias the original.
func (m Message) Clone() Message {
	out := m
	out.Parts = append([]Part(nil), m.Parts...)
	return out
}

// Conversation is a conversation.
type Conversation []Message

func (cc Conversation) String() string {
	var sb strings.Builder
	for _, msg := range cc {
		if len(msg.Parts) == 0 {
			continue
		}
		switch msg.Role {
		case RoleSystem:
			sb.WriteString("**System**: ")
		case RoleUser:
			sb.WriteString("**User**: ")
		case RoleAssistant:
			sb.WriteString("**Assistant**: ")
		default:
			continue
		}
		for _, part := range msg.Parts {
			switch part.Type {
			case PartReasoning:
				sb.WriteString("\n")
				for line := range strings.SplitSeq(part.Text, "\n") {
					sb.WriteString("> " + line + "\n")
				}
				sb.WriteString("\n")
			case PartText:
				sb.WriteString(part.Text)
			}
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}
