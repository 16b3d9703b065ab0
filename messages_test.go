package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hicap-oss/parley/internal/proto"
)

func TestLastPrompt(t *testing.T) {
	messages := []proto.Message{
		proto.TextMessage(proto.RoleSystem, "be brief"),
		proto.TextMessage(proto.RoleUser, "first question"),
		proto.TextMessage(proto.RoleAssistant, "first answer"),
		proto.TextMessage(proto.RoleUser, "second question"),
		proto.TextMessage(proto.RoleAssistant, "second answer"),
	}
	require.Equal(t, "second question", lastPrompt(messages))
	require.Empty(t, lastPrompt(nil))
}

func TestFirstLine(t *testing.T) {
	require.Equal(t, "hello", firstLine("hello"))
	require.Equal(t, "first", firstLine("first\nsecond\nthird"))
	require.Equal(t, "trimmed", firstLine("  trimmed  \nrest"))
	long := strings.Repeat("na", 40)
	require.Equal(t, long[:50]+"…", firstLine(long))
	require.Empty(t, firstLine("\n\n"))
}

func TestNewConversationID(t *testing.T) {
	id := newConversationID()
	require.Len(t, id, 40)
	require.NotEqual(t, id, newConversationID())
}
