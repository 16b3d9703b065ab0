package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func feedAll(ts *thinkSplitter, chunks ...string) []piece {
	var out []piece
	for _, c := range chunks {
		for _, p := range ts.feed(c) {
			out = appendPiece(out, p)
		}
	}
	for _, p := range ts.flush() {
		out = appendPiece(out, p)
	}
	return out
}

func TestThinkSplitter(t *testing.T) {
	t.Run("plain text passes through", func(t *testing.T) {
		var ts thinkSplitter
		got := feedAll(&ts, "hello", " world")
		require.Equal(t, []piece{{false, "hello world"}}, got)
	})

	t.Run("block in one chunk", func(t *testing.T) {
		var ts thinkSplitter
		got := feedAll(&ts, "<think>plan</think>answer")
		require.Equal(t, []piece{{true, "plan"}, {false, "answer"}}, got)
	})

	t.Run("thinking variant", func(t *testing.T) {
		var ts thinkSplitter
		got := feedAll(&ts, "<thinking>hm</thinking>ok")
		require.Equal(t, []piece{{true, "hm"}, {false, "ok"}}, got)
	})

	t.Run("tag split across chunks", func(t *testing.T) {
		var ts thinkSplitter
		got := feedAll(&ts, "<thi", "nk>pl", "an</th", "ink>ans", "wer")
		require.Equal(t, []piece{{true, "plan"}, {false, "answer"}}, got)
	})

	t.Run("unclosed block stays reasoning", func(t *testing.T) {
		var ts thinkSplitter
		got := feedAll(&ts, "<think>never finished")
		require.Equal(t, []piece{{true, "never finished"}}, got)
	})

	t.Run("incomplete marker at end is literal text", func(t *testing.T) {
		var ts thinkSplitter
		got := feedAll(&ts, "2 < 3 and x <thin")
		require.Equal(t, []piece{{false, "2 < 3 and x <thin"}}, got)
	})

	t.Run("angle brackets that are not markers", func(t *testing.T) {
		var ts thinkSplitter
		got := feedAll(&ts, "a < b, use <code>x</code>")
		require.Equal(t, []piece{{false, "a < b, use <code>x</code>"}}, got)
	})

	t.Run("multiple blocks", func(t *testing.T) {
		var ts thinkSplitter
		got := feedAll(&ts, "<think>one</think>mid<think>two</think>end")
		require.Equal(t, []piece{
			{true, "one"},
			{false, "mid"},
			{true, "two"},
			{false, "end"},
		}, got)
	})
}
