// Package stream turns the raw byte chunks of a streaming response into the
// conversation state the UI renders: an incremental UTF-8 decoder, a
// non-destructive body tap for the debug view, and the message-part
// assembler.
package stream

import "unicode/utf8"

// Decoder incrementally decodes a byte stream into text. A multi-byte
// sequence split across chunk boundaries is held back until the rest of it
// arrives, so callers never see a replacement character for a rune that was
// merely split. Malformed input is passed through as-is.
type Decoder struct {
	pending []byte
}

// Feed decodes the next chunk and returns the decodable text, which may be
// empty when the chunk ends mid-rune.
func (d *Decoder) Feed(p []byte) string {
	buf := p
	if len(d.pending) > 0 {
		buf = append(d.pending, p...)
		d.pending = nil
	}
	cut := len(buf)
	for i := len(buf) - 1; i >= 0 && len(buf)-i < utf8.UTFMax; i-- {
		if !utf8.RuneStart(buf[i]) {
			continue
		}
		if buf[i] >= utf8.RuneSelf && !utf8.FullRune(buf[i:]) {
			cut = i
		}
		break
	}
	d.pending = append([]byte(nil), buf[cut:]...)
	return string(buf[:cut])
}

// Flush returns any buffered remainder at end of stream. A trailing sequence
// the stream truncated mid-rune is dropped rather than emitted as garbage.
func (d *Decoder) Flush() string {
	rest := d.pending
	d.pending = nil
	if !utf8.FullRune(rest) {
		return ""
	}
	return string(rest)
}
