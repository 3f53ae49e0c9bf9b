package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"openwork/internal/state"
)

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	statusBar := a.renderStatusBar(a.width)

	chat := lipgloss.JoinVertical(lipgloss.Left,
		a.chatView.View(),
		a.theme.InputStyle.Width(a.chatWidth()).Render(a.input.View()),
	)

	columns := []string{chat}
	if w := a.sessionListWidth(); w > 0 {
		columns = append([]string{a.renderSessionList(w, a.height-1)}, columns...)
	}
	if w := a.sidebarWidth(); w > 0 {
		columns = append(columns, a.renderSidebar(w, a.height-1))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	view := lipgloss.JoinVertical(lipgloss.Left, body, statusBar)

	switch a.overlay {
	case overlayPermission:
		return a.placeOverlay(view, a.renderPermissionOverlay())
	case overlayModel:
		return a.placeOverlay(view, a.renderModelOverlay())
	}
	return view
}

func (a App) placeOverlay(_, overlay string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlay)
}

func (a App) renderSessionList(width, height int) string {
	sessions := a.store.Sessions()
	selectedID := a.store.SelectedID()

	var lines []string
	lines = append(lines, a.theme.TitleStyle.Render(" "+a.locale.T("panel.sessions")))
	if len(sessions) == 0 {
		lines = append(lines, a.theme.MutedStyle.Render(" "+a.locale.T("session.empty")))
	}
	for i, session := range sessions {
		title := session.Title
		if strings.TrimSpace(title) == "" {
			title = a.locale.T("session.untitled")
		}
		marker := "  "
		if session.ID == selectedID {
			marker = "▸ "
		}
		line := marker + truncate(title, width-6)
		switch {
		case a.focus == PanelSessions && i == a.sessionCursor:
			line = a.theme.SelectedStyle.Render(line)
		case session.Status == state.StatusRunning:
			line = a.theme.SuccessStyle.Render(line) + " ●"
		case session.Status == state.StatusRetry:
			line = a.theme.WarningStyle.Render(line) + " ↻"
		}
		lines = append(lines, line)
	}

	style := lipgloss.NewStyle().Width(width).Height(height)
	return style.Render(strings.Join(lines, "\n"))
}

func (a App) renderSidebar(width, height int) string {
	var parts []string

	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("panel.todos")))
	parts = append(parts, RenderTodos(a.store.Todos(), a.theme, a.locale))
	parts = append(parts, "")

	resolved := a.models.Resolve(a.store.SelectedID(), a.store.Messages())
	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("model.title")))
	parts = append(parts, "  "+resolved.String())
	parts = append(parts, "")

	estimate := a.estimator.CountTranscript(a.store.Messages())
	parts = append(parts, a.theme.MutedStyle.Render("  "+a.locale.T("status.tokens", estimate)))

	return a.theme.SidebarStyle.Width(width).Height(height).Render(strings.Join(parts, "\n"))
}

func (a App) renderStatusBar(width int) string {
	conn := a.locale.T("status.disconnected")
	connStyle := a.theme.ErrorStyle
	if a.store.Live() {
		conn = a.locale.T("status.connected")
		connStyle = a.theme.SuccessStyle
	}

	sessionStatus := ""
	if session, ok := a.store.Session(a.store.SelectedID()); ok {
		sessionStatus = " · " + sessionStatusLabel(session.Status, a.locale)
	}

	left := " " + connStyle.Render(conn) + sessionStatus
	right := ""
	switch {
	case a.lastError != "":
		right = a.theme.ErrorStyle.Render(truncate(a.lastError, width/2)) + "  "
	case a.statusMsg != "":
		right = a.theme.MutedStyle.Render(a.statusMsg) + "  "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return a.theme.StatusStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func (a App) renderPermissionOverlay() string {
	perms := a.store.Permissions()
	if len(perms) == 0 {
		return ""
	}
	current := perms[0]

	var lines []string
	lines = append(lines, a.theme.WarningStyle.Render(a.locale.T("perm.title")))
	lines = append(lines, "")
	lines = append(lines, a.locale.T("perm.request", current.Permission))
	if len(current.Patterns) > 0 {
		lines = append(lines, a.theme.MutedStyle.Render(a.locale.T("perm.patterns", strings.Join(current.Patterns, ", "))))
	}
	if len(perms) > 1 {
		lines = append(lines, a.theme.MutedStyle.Render(fmt.Sprintf("(+%d pending)", len(perms)-1)))
	}
	lines = append(lines, "")
	lines = append(lines, a.locale.T("perm.prompt"))

	return a.theme.OverlayStyle.Render(strings.Join(lines, "\n"))
}

func (a App) renderModelOverlay() string {
	var lines []string
	lines = append(lines, a.theme.TitleStyle.Render(a.locale.T("model.title")))
	lines = append(lines, "")
	for i, opt := range a.modelOptions {
		line := "  " + opt.String()
		if i == a.modelCursor {
			line = a.theme.SelectedStyle.Render("▸ " + opt.String())
		}
		lines = append(lines, line)
	}
	lines = append(lines, "")
	lines = append(lines, a.theme.MutedStyle.Render("enter: use for next prompt · s: save as default · esc: close"))

	return a.theme.OverlayStyle.Render(strings.Join(lines, "\n"))
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
