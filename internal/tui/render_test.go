package tui

import (
	"strings"
	"testing"

	"openwork/internal/i18n"
	"openwork/internal/state"
)

func TestRoleMarker(t *testing.T) {
	if got := roleMarker("user"); got != "👤" {
		t.Fatalf("user marker = %q", got)
	}
	if got := roleMarker("assistant"); got != "🤖" {
		t.Fatalf("assistant marker = %q", got)
	}
	if got := roleMarker("system"); got != "·" {
		t.Fatalf("unknown marker = %q", got)
	}
}

func TestRenderPart_Tool(t *testing.T) {
	theme := DarkTheme()

	part := state.Part{Type: "tool", Tool: &state.ToolState{Name: "bash", Status: "completed", Output: "one\ntwo"}}
	out := renderPart(part, theme, 80, false)
	if !strings.Contains(out, "🔧 bash (completed)") {
		t.Fatalf("missing tool head: %q", out)
	}
	if !strings.Contains(out, "one") || !strings.Contains(out, "two") {
		t.Fatalf("missing output: %q", out)
	}

	failed := state.Part{Type: "tool", Tool: &state.ToolState{Name: "edit", Status: "error", Error: "no such file\ndetail"}}
	out = renderPart(failed, theme, 80, false)
	if !strings.Contains(out, "no such file") {
		t.Fatalf("missing error line: %q", out)
	}
	if strings.Contains(out, "detail") {
		t.Fatalf("error should keep only the first line: %q", out)
	}
}

func TestRenderPart_Reasoning(t *testing.T) {
	part := state.Part{Type: "reasoning", Text: "thinking hard\nmore detail"}
	out := renderPart(part, DarkTheme(), 80, false)
	if !strings.Contains(out, "thinking hard") {
		t.Fatalf("missing reasoning: %q", out)
	}
	if strings.Contains(out, "more detail") {
		t.Fatalf("reasoning should keep only the first line: %q", out)
	}
}

func TestRenderTranscript(t *testing.T) {
	messages := []state.Message{
		{
			Info:  state.MessageInfo{ID: "m1", Role: "user"},
			Parts: []state.Part{{ID: "p1", Type: "text", Text: "fix the bug"}},
		},
		{
			Info:  state.MessageInfo{ID: "m2", Role: "assistant"},
			Parts: []state.Part{{ID: "p2", Type: "text", Text: "done"}},
		},
	}
	out := RenderTranscript(messages, DarkTheme(), 80, false)
	if !strings.Contains(out, "fix the bug") || !strings.Contains(out, "done") {
		t.Fatalf("transcript missing content: %q", out)
	}
	if strings.Index(out, "fix the bug") > strings.Index(out, "done") {
		t.Fatal("messages out of order")
	}
}

func TestRenderMarkdownFallback(t *testing.T) {
	if RenderMarkdown("", 80) != "" {
		t.Fatal("empty input should render empty")
	}
	out := RenderMarkdown("plain text", 80)
	if !strings.Contains(out, "plain text") {
		t.Fatalf("content lost: %q", out)
	}
}

func TestTodoMarker(t *testing.T) {
	cases := map[string]string{
		"completed":   "[x]",
		"in_progress": "[~]",
		"pending":     "[ ]",
		"":            "[ ]",
	}
	for status, want := range cases {
		if got := todoMarker(status); got != want {
			t.Fatalf("todoMarker(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestRenderTodos(t *testing.T) {
	theme := DarkTheme()
	locale := i18n.Global()

	empty := RenderTodos(nil, theme, locale)
	if !strings.Contains(empty, locale.T("todo.empty")) {
		t.Fatalf("empty list = %q", empty)
	}

	out := RenderTodos([]state.TodoItem{
		{Content: "write tests", Status: "in_progress"},
		{Content: "ship it", Status: "pending"},
	}, theme, locale)
	if !strings.Contains(out, "[~] write tests") {
		t.Fatalf("missing in-progress item: %q", out)
	}
	if !strings.Contains(out, "[ ] ship it") {
		t.Fatalf("missing pending item: %q", out)
	}
}

func TestTruncateLines(t *testing.T) {
	short := "a\nb"
	if got := truncateLines(short, 6); got != short {
		t.Fatalf("short input changed: %q", got)
	}

	long := "1\n2\n3\n4\n5"
	got := truncateLines(long, 3)
	if !strings.HasSuffix(got, "... (2 more lines)") {
		t.Fatalf("missing truncation marker: %q", got)
	}
	if !strings.HasPrefix(got, "1\n2\n3\n") {
		t.Fatalf("kept lines wrong: %q", got)
	}
}

func TestIndentBlock(t *testing.T) {
	got := indentBlock("a\n\nb\n", "  ")
	if got != "  a\n\n  b" {
		t.Fatalf("indentBlock = %q", got)
	}
}

func TestSessionStatusLabel(t *testing.T) {
	locale := i18n.Global()
	if got := sessionStatusLabel(state.StatusRunning, locale); got != locale.T("status.working") {
		t.Fatalf("running label = %q", got)
	}
	if got := sessionStatusLabel(state.StatusRetry, locale); got != locale.T("status.retrying") {
		t.Fatalf("retry label = %q", got)
	}
	if got := sessionStatusLabel(state.StatusIdle, locale); got != locale.T("status.idle") {
		t.Fatalf("idle label = %q", got)
	}
}
