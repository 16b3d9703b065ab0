package proto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnmarshalMessage(t *testing.T) {
	t.Run("structured", func(t *testing.T) {
		var msg Message
		require.NoError(t, json.Unmarshal([]byte(`{
			"id": "m1",
			"role": "assistant",
			"parts": [
				{"type": "reasoning", "text": "hmm"},
				{"type": "text", "text": "hello"}
			]
		}`), &msg))
		require.Equal(t, Message{
			ID:   "m1",
			Role: RoleAssistant,
			Parts: []Part{
				{Type: PartReasoning, Text: "hmm"},
				{Type: PartText, Text: "hello"},
			},
		}, msg)
	})

	t.Run("flat", func(t *testing.T) {
		var msg Message
		require.NoError(t, json.Unmarshal([]byte(`{"role":"user","content":"hi there"}`), &msg))
		require.Equal(t, Message{
			Role:  RoleUser,
			Parts: []Part{{Type: PartText, Text: "hi there"}},
		}, msg)
	})

	t.Run("flat empty content", func(t *testing.T) {
		var msg Message
		require.NoError(t, json.Unmarshal([]byte(`{"role":"user"}`), &msg))
		require.Empty(t, msg.Parts)
	})
}

func TestMessageContent(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		Parts: []Part{
			{Type: PartReasoning, Text: "think "},
			{Type: PartText, Text: "hello"},
			{Type: PartReasoning, Text: "more"},
			{Type: PartText, Text: " world"},
		},
	}
	require.Equal(t, "hello world", msg.Content())
	require.Equal(t, "think more", msg.Reasoning())
}

func TestValidRole(t *testing.T) {
	require.True(t, ValidRole(RoleUser))
	require.True(t, ValidRole(RoleAssistant))
	require.True(t, ValidRole(RoleSystem))
	require.False(t, ValidRole("tool"))
	require.False(t, ValidRole(""))
}

func TestConversationString(t *testing.T) {
	messages := []Message{
		TextMessage(RoleSystem, "you are a medieval king"),
		TextMessage(RoleUser, "first 4 natural numbers"),
		{
			Role: RoleAssistant,
			Parts: []Part{
				{Type: PartReasoning, Text: "count from one"},
				{Type: PartText, Text: "1, 2, 3, 4"},
			},
		},
		{Role: RoleAssistant},
	}
	out := Conversation(messages).String()
	require.Contains(t, out, "**System**: you are a medieval king")
	require.Contains(t, out, "**User**: first 4 natural numbers")
	require.Contains(t, out, "> count from one")
	require.Contains(t, out, "1, 2, 3, 4")
}

func TestEventPartType(t *testing.T) {
	pt, ok := Event{Type: EventTextDelta}.PartType()
	require.True(t, ok)
	require.Equal(t, PartText, pt)

	pt, ok = Event{Type: EventReasoningDelta}.PartType()
	require.True(t, ok)
	require.Equal(t, PartReasoning, pt)

	_, ok = Event{Type: EventStart}.PartType()
	require.False(t, ok)
	_, ok = Event{Type: EventFinish}.PartType()
	require.False(t, ok)
}
