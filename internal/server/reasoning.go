package server

import "strings"

// Some models interleave their reasoning with the answer as inline
// <think>...</think> blocks instead of using a dedicated response field. The
// splitter separates the two while the response is still streaming: tag
// markers may arrive split across chunks, so it holds back any trailing bytes
// that could still turn out to be a marker.

var (
	thinkOpenTags  = []string{"<think>", "<thinking>"}
	thinkCloseTags = []string{"</think>", "</thinking>"}
)

type piece struct {
	reasoning bool
	text      string
}

type thinkSplitter struct {
	inThink bool
	pending string
}

// feed classifies the next chunk of model output into reasoning and answer
// pieces. Text held back from a previous call is prepended first.
func (ts *thinkSplitter) feed(s string) []piece {
	buf := ts.pending + s
	ts.pending = ""
	var out []piece
	for buf != "" {
		tags := thinkOpenTags
		if ts.inThink {
			tags = thinkCloseTags
		}
		if idx, tag := findTag(buf, tags); idx >= 0 {
			out = appendPiece(out, piece{ts.inThink, buf[:idx]})
			ts.inThink = !ts.inThink
			buf = buf[idx+len(tag):]
			continue
		}
		hold := partialTagLen(buf, tags)
		out = appendPiece(out, piece{ts.inThink, buf[:len(buf)-hold]})
		ts.pending = buf[len(buf)-hold:]
		break
	}
	return out
}

// flush releases held-back text once the stream has ended. A marker that
// never completed is treated as literal text.
func (ts *thinkSplitter) flush() []piece {
	if ts.pending == "" {
		return nil
	}
	p := piece{ts.inThink, ts.pending}
	ts.pending = ""
	return []piece{p}
}

func findTag(s string, tags []string) (int, string) {
	best, bestTag := -1, ""
	for _, tag := range tags {
		if i := strings.Index(s, tag); i >= 0 && (best < 0 || i < best) {
			best, bestTag = i, tag
		}
	}
	return best, bestTag
}

// partialTagLen returns the length of the longest suffix of s that is a
// proper prefix of one of the tags.
func partialTagLen(s string, tags []string) int {
	longest := 0
	for _, tag := range tags {
		limit := min(len(s), len(tag)-1)
		for n := limit; n > longest; n-- {
			if strings.HasSuffix(s, tag[:n]) {
				longest = n
				break
			}
		}
	}
	return longest
}

func appendPiece(pieces []piece, p piece) []piece {
	if p.text == "" {
		return pieces
	}
	if n := len(pieces); n > 0 && pieces[n-1].reasoning == p.reasoning {
		pieces[n-1].text += p.text
		return pieces
	}
	return append(pieces, p)
}
