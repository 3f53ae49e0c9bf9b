package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"openwork/internal/i18n"
	"openwork/internal/state"
)

// RenderMarkdown renders markdown through Glamour, falling back to the
// raw text on renderer errors.
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func roleMarker(role string) string {
	switch role {
	case "user":
		return "👤"
	case "assistant":
		return "🤖"
	default:
		return "·"
	}
}

func renderPart(part state.Part, theme Theme, width int, markdown bool) string {
	switch {
	case part.Tool != nil:
		head := fmt.Sprintf("🔧 %s (%s)", part.Tool.Name, part.Tool.Status)
		if part.Tool.Error != "" {
			return head + "\n" + theme.ErrorStyle.Render("  "+firstLine(part.Tool.Error))
		}
		if part.Tool.Output != "" {
			return head + "\n" + theme.MutedStyle.Render(indentBlock(truncateLines(part.Tool.Output, 6), "  "))
		}
		return head
	case part.Type == "reasoning":
		return theme.MutedStyle.Render("💭 " + firstLine(part.Text))
	case part.Text != "":
		if markdown {
			return RenderMarkdown(part.Text, width)
		}
		return part.Text
	default:
		return ""
	}
}

func renderMessage(msg state.Message, theme Theme, width int, markdown bool) string {
	var parts []string
	parts = append(parts, roleMarker(msg.Info.Role)+" "+theme.MutedStyle.Render(msg.Info.Role))
	for _, p := range msg.Parts {
		if rendered := renderPart(p, theme, width, markdown); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n")
}

// RenderTranscript renders the full message list for the chat viewport.
func RenderTranscript(messages []state.Message, theme Theme, width int, markdown bool) string {
	var blocks []string
	for _, msg := range messages {
		blocks = append(blocks, renderMessage(msg, theme, width, markdown))
	}
	return strings.Join(blocks, "\n\n")
}

func todoMarker(status string) string {
	switch status {
	case "completed":
		return "[x]"
	case "in_progress":
		return "[~]"
	default:
		return "[ ]"
	}
}

// RenderTodos renders the plan sidebar section.
func RenderTodos(todos []state.TodoItem, theme Theme, locale *i18n.I18n) string {
	if len(todos) == 0 {
		return theme.MutedStyle.Render("  " + locale.T("todo.empty"))
	}
	lines := make([]string, 0, len(todos))
	for _, todo := range todos {
		line := fmt.Sprintf("  %s %s", todoMarker(todo.Status), todo.Content)
		if todo.Status == "completed" {
			line = theme.MutedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func sessionStatusLabel(status state.SessionStatus, locale *i18n.I18n) string {
	switch status {
	case state.StatusRunning:
		return locale.T("status.working")
	case state.StatusRetry:
		return locale.T("status.retrying")
	default:
		return locale.T("status.idle")
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func truncateLines(s string, max int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= max {
		return strings.Join(lines, "\n")
	}
	kept := append([]string{}, lines[:max]...)
	kept = append(kept, fmt.Sprintf("... (%d more lines)", len(lines)-max))
	return strings.Join(kept, "\n")
}

func indentBlock(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
