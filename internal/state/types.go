package state

import (
	"encoding/json"
	"strings"
	"time"
)

// SessionStatus is the synchronized view of a session's execution state.
type SessionStatus string

const (
	StatusIdle    SessionStatus = "idle"
	StatusRunning SessionStatus = "running"
	StatusRetry   SessionStatus = "retry"
)

// StatusFromWire maps the server's status strings onto SessionStatus.
// Anything unrecognized is treated as idle.
func StatusFromWire(s string) SessionStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "busy", "running":
		return StatusRunning
	case "retry":
		return StatusRetry
	default:
		return StatusIdle
	}
}

// Session is a unit of work tracked by the remote server.
type Session struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	Status    SessionStatus `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ModelRef identifies the backing model for a session turn.
// Equality is structural: both fields must match.
type ModelRef struct {
	ProviderID string `json:"providerID"`
	ModelID    string `json:"modelID"`
}

func (m ModelRef) IsZero() bool {
	return m.ProviderID == "" && m.ModelID == ""
}

func (m ModelRef) String() string {
	if m.IsZero() {
		return ""
	}
	return m.ProviderID + "/" + m.ModelID
}

// MessageInfo is the identity and metadata of a chat message.
// Model is carried only on user messages.
type MessageInfo struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionID"`
	Role      string    `json:"role"`
	Model     *ModelRef `json:"model,omitempty"`
}

// Part is a single renderable fragment of a message. Type-specific state
// lives in Text / Tool; unknown part types keep their raw payload in State.
type Part struct {
	ID        string          `json:"id"`
	MessageID string          `json:"messageID"`
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Tool      *ToolState      `json:"tool,omitempty"`
	State     json.RawMessage `json:"state,omitempty"`
}

// ToolState is the payload of a tool part.
type ToolState struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Message owns an ordered part list. Parts append on new ids and replace
// in place on existing ids; insertion order is significant.
type Message struct {
	Info  MessageInfo `json:"info"`
	Parts []Part      `json:"parts"`
}

// TodoItem is one step of a server-maintained plan. The todo list is a
// rank-ordered snapshot replaced wholesale, never patched per field.
type TodoItem struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// PermissionRequest is a pending authorization ask from the server.
// ReceivedAt is client-only: the first time this id was seen, preserved
// across re-fetches so prompts keep a stable age and order.
type PermissionRequest struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"sessionID"`
	Permission string         `json:"permission"`
	Patterns   []string       `json:"patterns"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ReceivedAt time.Time      `json:"-"`
}
