package stream

import (
	"io"
	"testing"
)

// chunkedReader feeds its chunks one Read at a time, so logical lines get
// split across reads the way a real network stream splits them.
type chunkedReader struct {
	chunks []string
	idx    int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.idx >= len(c.chunks) {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[c.idx])
	// chunks fit the buffer in these tests
	c.idx++
	return n, nil
}

func (c *chunkedReader) Close() error { return nil }

func collect(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = append(out, ev)
	}
}

func TestReaderSplitAcrossReads(t *testing.T) {
	r := NewReader(&chunkedReader{chunks: []string{
		`data: {"type":"session.upd`,
		`ated","properties":{"info":{"id":"s1"}}}` + "\n\n",
		`data: {"type":"message.created","properties":{}}` + "\n",
	}})

	events := collect(t, r)
	if len(events) != 2 {
		t.Fatalf("unexpected event count: %d", len(events))
	}
	if events[0].Type != "session.updated" || events[1].Type != "message.created" {
		t.Fatalf("unexpected types: %q %q", events[0].Type, events[1].Type)
	}
	if !r.Live() {
		t.Fatalf("live flag must be set after first event")
	}
}

func TestReaderSkipsGarbage(t *testing.T) {
	input := "data: [DONE]\n" +
		"data:\n" +
		": comment line\n" +
		"data: {not json}\n" +
		"\n" +
		`data: {"noType":true}` + "\n" +
		`data: {"type":"todo.updated","properties":{"sessionID":"s1"}}` + "\n"

	r := NewReader(io.NopCloser(&chunkedReader{chunks: []string{input}}))
	events := collect(t, r)
	if len(events) != 1 || events[0].Type != "todo.updated" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestReaderNestedPayloadShape(t *testing.T) {
	input := `data: {"payload":{"type":"permission.created","properties":{"id":"perm1"}}}` + "\n"
	r := NewReader(io.NopCloser(&chunkedReader{chunks: []string{input}}))

	ev, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type != "permission.created" {
		t.Fatalf("unexpected type: %q", ev.Type)
	}
	if string(ev.Properties) != `{"id":"perm1"}` {
		t.Fatalf("unexpected properties: %s", ev.Properties)
	}
}

func TestReaderTrailingLineWithoutNewline(t *testing.T) {
	input := `data: {"type":"session.idle","properties":{}}`
	r := NewReader(io.NopCloser(&chunkedReader{chunks: []string{input}}))

	ev, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type != "session.idle" {
		t.Fatalf("unexpected type: %q", ev.Type)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestReaderLiveFlagLifecycle(t *testing.T) {
	r := NewReader(io.NopCloser(&chunkedReader{}))
	if r.Live() {
		t.Fatalf("live must start false")
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	r.MarkDead()
	if r.Live() {
		t.Fatalf("live must be false after MarkDead")
	}
}
