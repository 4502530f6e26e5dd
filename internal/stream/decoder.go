// Package stream implements the streaming chat-response pipeline: SSE frame
// decoding, payload classification, structured-data extraction and the
// session controller that drives them over a live transport.
package stream

import "strings"

// dataPrefix is the SSE frame prefix; only data frames are forwarded.
const dataPrefix = "data: "

// Frame is one decoded SSE record. Data holds the payload after the
// "data: " prefix.
type Frame struct {
	Data string
}

// FrameDecoder reassembles newline-delimited SSE frames from raw transport
// chunks. Chunks may split a frame at any byte offset; the decoder keeps the
// incomplete tail across calls. The zero value is ready to use.
type FrameDecoder struct {
	buf string
}

// Feed appends a raw chunk and returns every complete data frame it closes,
// in arrival order. Lines without the data prefix (comments, blank
// keep-alives) are dropped. The trailing incomplete line stays buffered.
func (d *FrameDecoder) Feed(chunk string) []Frame {
	d.buf += chunk

	var frames []Frame
	for {
		idx := strings.Index(d.buf, "\n")
		if idx < 0 {
			break
		}
		line := d.buf[:idx]
		d.buf = d.buf[idx+1:]

		if f, ok := parseFrame(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Finish flushes the decoder at end of stream. A buffered line that forms a
// complete data frame (the server may omit the final newline) is returned;
// anything else is a partial frame and is discarded, never emitted.
func (d *FrameDecoder) Finish() (Frame, bool) {
	line := d.buf
	d.buf = ""
	return parseFrame(line)
}

func parseFrame(line string) (Frame, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, dataPrefix) {
		return Frame{}, false
	}
	return Frame{Data: trimmed[len(dataPrefix):]}, true
}
