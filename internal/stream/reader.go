// Package stream turns the server's SSE byte stream into normalized
// event records. One Reader owns one subscription body; it never
// reconnects on its own.
package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"sync/atomic"
)

// Event is a normalized server event: a type tag and its raw properties.
type Event struct {
	Type       string
	Properties json.RawMessage
}

// Reader reads `data: <json>` records off a server-sent event stream.
// Lines may be split anywhere by the transport; the reader assembles
// complete lines before acting. The [DONE] sentinel, empty payloads,
// unparseable JSON, and frames without a recognizable type are all
// skipped without error.
type Reader struct {
	body io.ReadCloser
	buf  *bufio.Reader
	live atomic.Bool
}

func NewReader(body io.ReadCloser) *Reader {
	return &Reader{
		body: body,
		buf:  bufio.NewReader(body),
	}
}

// Live reports whether the stream has delivered at least one event and has
// not failed since. The owner watches this flag to decide on reconnecting.
func (r *Reader) Live() bool {
	return r.live.Load()
}

// MarkDead clears the live flag. Called by the owner when the consume loop
// exits on a real failure.
func (r *Reader) MarkDead() {
	r.live.Store(false)
}

// Close releases the underlying stream. Closing unblocks a pending Next,
// which then returns the transport's close error.
func (r *Reader) Close() error {
	return r.body.Close()
}

// Next blocks until the next well-formed event record or a read error.
// It returns io.EOF when the stream ends normally.
func (r *Reader) Next() (Event, error) {
	for {
		line, err := r.buf.ReadString('\n')
		if err != nil {
			// A partial trailing line without its newline is still a
			// complete payload once the stream ends.
			if err == io.EOF && strings.TrimSpace(line) != "" {
				if ev, ok := decodeLine(line); ok {
					r.live.Store(true)
					return ev, nil
				}
			}
			return Event{}, err
		}

		ev, ok := decodeLine(line)
		if !ok {
			continue
		}
		r.live.Store(true)
		return ev, nil
	}
}

func decodeLine(line string) (Event, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "data:") {
		return Event{}, false
	}
	payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if payload == "" || payload == "[DONE]" {
		return Event{}, false
	}

	var frame struct {
		Type       string          `json:"type"`
		Properties json.RawMessage `json:"properties"`
		Payload    *struct {
			Type       string          `json:"type"`
			Properties json.RawMessage `json:"properties"`
		} `json:"payload"`
	}
	if err := json.Unmarshal([]byte(payload), &frame); err != nil {
		// One bad record never kills the stream.
		return Event{}, false
	}

	switch {
	case frame.Type != "":
		return Event{Type: frame.Type, Properties: frame.Properties}, true
	case frame.Payload != nil && frame.Payload.Type != "":
		return Event{Type: frame.Payload.Type, Properties: frame.Payload.Properties}, true
	default:
		return Event{}, false
	}
}
