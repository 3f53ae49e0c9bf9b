package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Panels
	"panel.sessions": "Sessions",
	"panel.chat":     "Chat",
	"panel.todos":    "Plan",

	// Status bar
	"status.connected":    "Connected",
	"status.disconnected": "Disconnected",
	"status.working":      "Working...",
	"status.retrying":     "Retrying...",
	"status.idle":         "Idle",
	"status.tokens":       "~%d tokens",
	"status.model":        "Model: %s",

	// Session list
	"session.untitled":   "(untitled)",
	"session.new":        "New session",
	"session.empty":      "No sessions yet. Press 'n' to create one.",
	"session.created":    "Session created: %s",
	"session.deleted":    "Session deleted",
	"session.select":     "Select a session",
	"session.refreshing": "Refreshing sessions...",

	// Todos
	"todo.empty":       "No plan items",
	"todo.pending":     "pending",
	"todo.in_progress": "in progress",
	"todo.completed":   "completed",

	// Permissions
	"perm.title":    "Permission Required",
	"perm.request":  "The agent wants to use: %s",
	"perm.patterns": "Patterns: %s",
	"perm.once":     "Allow once",
	"perm.always":   "Always allow",
	"perm.reject":   "Reject",
	"perm.prompt":   "Allow? [o]nce / [a]lways / [r]eject",
	"perm.answered": "Permission %s: %s",

	// Input
	"input.placeholder": "Type a message... (Shift+Enter for newline)",
	"input.submit_hint": "Enter to send",

	// Keybindings
	"keys.tab":    "tab switch",
	"keys.quit":   "ctrl+c quit",
	"keys.model":  "ctrl+o model",
	"keys.newses": "n new session",

	// Model picker
	"model.title":    "Choose Model",
	"model.current":  "Current: %s",
	"model.default":  "Saved as default: %s",
	"model.override": "Next prompt will use: %s",

	// Server / engine
	"server.waiting":   "Waiting for server at %s...",
	"server.ready":     "Server ready (version %s)",
	"server.not_ready": "Server not ready: %s",
	"server.lost":      "Event stream lost; reconnecting when the server returns...",
	"engine.starting":  "Starting opencode in %s...",
	"engine.started":   "Engine running at %s (pid %d)",
	"engine.stopped":   "Engine stopped",
	"engine.not_found": "opencode CLI not found",

	// Skills
	"skill.imported": "Skill imported: %s",
	"skill.empty":    "No skills found",

	// Errors
	"error.prompt_failed":  "Failed to send prompt: %v",
	"error.reply_failed":   "Failed to answer permission: %v",
	"error.session_failed": "Session operation failed: %v",

	// Commands (plain mode)
	"cmd.help":     "Show available commands",
	"cmd.new":      "Create a new session",
	"cmd.sessions": "List sessions",
	"cmd.use":      "Switch to a session",
	"cmd.delete":   "Delete a session",
	"cmd.model":    "Pick the model for the next prompt",
	"cmd.todos":    "Show the current plan",
	"cmd.skills":   "List available skills",
	"cmd.exit":     "Exit",
}
