package cache

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hicap-oss/parley/internal/proto"
)

func TestCache(t *testing.T) {
	t.Run("read non-existent", func(t *testing.T) {
		cache, err := NewConversations(t.TempDir())
		require.NoError(t, err)
		err = cache.Read("super-fake", &[]proto.Message{})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("write", func(t *testing.T) {
		cache, err := NewConversations(t.TempDir())
		require.NoError(t, err)
		messages := []proto.Message{
			proto.TextMessage(proto.RoleUser, "first 4 natural numbers"),
			{
				ID:   "m1",
				Role: proto.RoleAssistant,
				Parts: []proto.Part{
					{Type: proto.PartReasoning, Text: "count from one"},
					{Type: proto.PartText, Text: "1, 2, 3, 4"},
				},
			},
		}
		require.NoError(t, cache.Write("fake", &messages))

		result := []proto.Message{}
		require.NoError(t, cache.Read("fake", &result))

		require.Equal(t, messages, result)
	})

	t.Run("delete", func(t *testing.T) {
		cache, err := NewConversations(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, cache.Write("fake", &[]proto.Message{}))
		require.NoError(t, cache.Delete("fake"))
		require.ErrorIs(t, cache.Read("fake", nil), os.ErrNotExist)
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Run("write", func(t *testing.T) {
			cache, err := NewConversations(t.TempDir())
			require.NoError(t, err)
			require.ErrorIs(t, cache.Write("", nil), errInvalidID)
		})
		t.Run("delete", func(t *testing.T) {
			cache, err := NewConversations(t.TempDir())
			require.NoError(t, err)
			require.ErrorIs(t, cache.Delete(""), errInvalidID)
		})
		t.Run("read", func(t *testing.T) {
			cache, err := NewConversations(t.TempDir())
			require.NoError(t, err)
			require.ErrorIs(t, cache.Read("", nil), errInvalidID)
		})
	})
}
