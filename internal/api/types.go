package api

import (
	"encoding/json"
	"time"

	"openwork/internal/state"
)

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Version string `json:"version"`
	Reason  string `json:"reason,omitempty"`
}

// SessionInfo is the wire shape of a session.
type SessionInfo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s SessionInfo) ToState() state.Session {
	return state.Session{
		ID:        s.ID,
		Title:     s.Title,
		Slug:      s.Slug,
		Status:    state.StatusFromWire(s.Status),
		UpdatedAt: s.UpdatedAt,
	}
}

// MessageInfo is the wire shape of a message's identity and metadata.
type MessageInfo struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionID"`
	Role      string          `json:"role"`
	Model     *state.ModelRef `json:"model,omitempty"`
}

func (m MessageInfo) ToState() state.MessageInfo {
	return state.MessageInfo{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Model:     m.Model,
	}
}

// PartInfo is the wire shape of a message part. Tool parts put the tool
// name at the top level and the execution state underneath.
type PartInfo struct {
	ID        string          `json:"id"`
	MessageID string          `json:"messageID"`
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Tool      string          `json:"tool,omitempty"`
	State     json.RawMessage `json:"state,omitempty"`
}

func (p PartInfo) ToState() state.Part {
	part := state.Part{
		ID:        p.ID,
		MessageID: p.MessageID,
		Type:      p.Type,
		Text:      p.Text,
		State:     p.State,
	}
	if p.Type == "tool" {
		var ts struct {
			Status string `json:"status"`
			Output string `json:"output"`
			Error  string `json:"error"`
		}
		_ = json.Unmarshal(p.State, &ts)
		part.Tool = &state.ToolState{
			Name:   p.Tool,
			Status: ts.Status,
			Output: ts.Output,
			Error:  ts.Error,
		}
	}
	return part
}

// MessageRecord pairs a message with its parts as returned by the
// transcript endpoint.
type MessageRecord struct {
	Info  MessageInfo `json:"info"`
	Parts []PartInfo  `json:"parts"`
}

func (m MessageRecord) ToState() state.Message {
	parts := make([]state.Part, 0, len(m.Parts))
	for _, p := range m.Parts {
		parts = append(parts, p.ToState())
	}
	return state.Message{Info: m.Info.ToState(), Parts: parts}
}

// MessagesToState converts a fetched transcript wholesale.
func MessagesToState(records []MessageRecord) []state.Message {
	out := make([]state.Message, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToState())
	}
	return out
}

// PromptPart is one fragment of an outgoing prompt.
type PromptPart struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// PromptRequest submits the next user turn for a session.
type PromptRequest struct {
	MessageID string          `json:"messageID"`
	Model     *state.ModelRef `json:"model,omitempty"`
	Parts     []PromptPart    `json:"parts"`
}

// PermissionInfo is the wire shape of a pending permission request. The
// server list carries no client-arrival timestamp; that is added during
// reconciliation.
type PermissionInfo struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"sessionID"`
	Permission string         `json:"permission"`
	Patterns   []string       `json:"patterns"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func (p PermissionInfo) ToState() state.PermissionRequest {
	return state.PermissionRequest{
		ID:         p.ID,
		SessionID:  p.SessionID,
		Permission: p.Permission,
		Patterns:   append([]string(nil), p.Patterns...),
		Metadata:   p.Metadata,
	}
}

// PermissionsToState converts a fetched permission list.
func PermissionsToState(infos []PermissionInfo) []state.PermissionRequest {
	out := make([]state.PermissionRequest, 0, len(infos))
	for _, p := range infos {
		out = append(out, p.ToState())
	}
	return out
}

// PermissionResponse is a user's answer to a permission request.
type PermissionResponse string

const (
	PermissionOnce   PermissionResponse = "once"
	PermissionAlways PermissionResponse = "always"
	PermissionReject PermissionResponse = "reject"
)

// TodoInfo is the wire shape of a plan item.
type TodoInfo struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

func (t TodoInfo) ToState() state.TodoItem {
	return state.TodoItem(t)
}

// TodosToState converts a fetched todo snapshot.
func TodosToState(infos []TodoInfo) []state.TodoItem {
	out := make([]state.TodoItem, 0, len(infos))
	for _, t := range infos {
		out = append(out, t.ToState())
	}
	return out
}

// FileEntry is one entry of the server file listing.
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

func (f FileEntry) IsDir() bool { return f.Type == "directory" }
