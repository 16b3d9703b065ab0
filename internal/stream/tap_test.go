package stream

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func record(sb *strings.Builder) Listener {
	return func(text string) { sb.WriteString(text) }
}

func TestTap(t *testing.T) {
	t.Run("primary stream intact", func(t *testing.T) {
		var got strings.Builder
		tap := NewTap(record(&got))
		body := tap.Attach(io.NopCloser(strings.NewReader("hello world")))
		out, err := io.ReadAll(body)
		require.NoError(t, err)
		require.Equal(t, "hello world", string(out))
		require.Equal(t, "hello world", got.String())
	})

	t.Run("split runes decode across reads", func(t *testing.T) {
		var got strings.Builder
		tap := NewTap(record(&got))
		src := iotest.OneByteReader(strings.NewReader("héllo 世界"))
		body := tap.Attach(io.NopCloser(src))
		out, err := io.ReadAll(body)
		require.NoError(t, err)
		require.Equal(t, "héllo 世界", string(out))
		require.Equal(t, "héllo 世界", got.String())
		require.NotContains(t, got.String(), string(utf8.RuneError))
	})

	t.Run("nil body is a no-op", func(t *testing.T) {
		tap := NewTap()
		require.Nil(t, tap.Attach(nil))
	})

	t.Run("nil tap passes through", func(t *testing.T) {
		var tap *Tap
		body := io.NopCloser(strings.NewReader("x"))
		require.Equal(t, body, tap.Attach(body))
	})

	t.Run("listener panic does not break primary", func(t *testing.T) {
		var got strings.Builder
		tap := NewTap(
			func(string) { panic("broken listener") },
			record(&got),
		)
		body := tap.Attach(io.NopCloser(strings.NewReader("still fine")))
		out, err := io.ReadAll(body)
		require.NoError(t, err)
		require.Equal(t, "still fine", string(out))
		require.Equal(t, "still fine", got.String())
	})

	t.Run("detached tap stops observing", func(t *testing.T) {
		var got strings.Builder
		tap := NewTap(record(&got))
		body := tap.Attach(io.NopCloser(strings.NewReader("secret")))
		tap.Detach()
		_, err := io.ReadAll(body)
		require.NoError(t, err)
		require.Empty(t, got.String())
	})

	t.Run("close detaches", func(t *testing.T) {
		var got strings.Builder
		tap := NewTap(record(&got))
		body := tap.Attach(io.NopCloser(strings.NewReader("abc")))
		require.NoError(t, body.Close())
		buf := make([]byte, 4)
		_, _ = body.Read(buf)
		require.Empty(t, got.String())
	})
}

func TestTapper(t *testing.T) {
	t.Run("activating detaches previous", func(t *testing.T) {
		var tp Tapper
		var first, second strings.Builder

		old := tp.Activate(NewTap(record(&first)))
		oldBody := old.Attach(io.NopCloser(strings.NewReader("old stream")))

		cur := tp.Activate(NewTap(record(&second)))
		curBody := cur.Attach(io.NopCloser(strings.NewReader("new stream")))

		_, err := io.ReadAll(oldBody)
		require.NoError(t, err)
		out, err := io.ReadAll(curBody)
		require.NoError(t, err)

		require.Empty(t, first.String())
		require.Equal(t, "new stream", second.String())
		require.Equal(t, "new stream", string(out))
	})

	t.Run("release detaches", func(t *testing.T) {
		var tp Tapper
		var got strings.Builder
		tap := tp.Activate(NewTap(record(&got)))
		body := tap.Attach(io.NopCloser(strings.NewReader("quiet")))
		tp.Release()
		_, err := io.ReadAll(body)
		require.NoError(t, err)
		require.Empty(t, got.String())
	})
}

func TestBuffer(t *testing.T) {
	var b Buffer
	b.Append("raw ")
	b.Append("bytes")
	require.Equal(t, "raw bytes", b.String())
	b.Clear()
	require.Empty(t, b.String())
	b.Append("fresh")
	require.Equal(t, "fresh", b.String())
}
