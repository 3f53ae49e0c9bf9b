// Package syncer drives the event-sourced session synchronizer: it
// consumes the server's event stream, applies mutations to the state
// store, and issues supplementary re-fetches where an event's payload is
// not enough to patch state incrementally.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"openwork/internal/api"
	"openwork/internal/model"
	"openwork/internal/state"
	"openwork/internal/stream"
)

// Server is the slice of the REST facade the reconciler needs. *api.Client
// satisfies it; tests substitute fakes.
type Server interface {
	ListSessions(ctx context.Context) ([]api.SessionInfo, error)
	CreateSession(ctx context.Context, title string) (api.SessionInfo, error)
	DeleteSession(ctx context.Context, id string) error
	Messages(ctx context.Context, sessionID string) ([]api.MessageRecord, error)
	Prompt(ctx context.Context, sessionID string, req api.PromptRequest) error
	ListPermissions(ctx context.Context) ([]api.PermissionInfo, error)
	ReplyPermission(ctx context.Context, id string, response api.PermissionResponse) error
	Todos(ctx context.Context, sessionID string) ([]api.TodoInfo, error)
	Subscribe(ctx context.Context) (io.ReadCloser, error)
}

// Reconciler owns one connection cycle. There is exactly one consumption
// loop per live connection; supplementary fetches run as goroutines whose
// completions re-enter the store through tagged snapshot replacement.
type Reconciler struct {
	client Server
	store  *state.Store
	models *model.Resolver
	logf   func(format string, args ...any)

	fetches sync.WaitGroup
}

func New(client Server, store *state.Store, models *model.Resolver, logf func(string, ...any)) *Reconciler {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Reconciler{client: client, store: store, models: models, logf: logf}
}

// Run subscribes to the event stream and consumes it until the stream
// fails or ctx is canceled. Deliberate cancellation is not an error.
// There is no auto-reconnect: when Run returns, the owner decides whether
// to start a fresh probe + subscribe cycle.
func (r *Reconciler) Run(ctx context.Context) error {
	body, err := r.client.Subscribe(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("open event stream: %w", err)
	}

	reader := stream.NewReader(body)
	// unblock a pending read when the caller cancels
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			reader.Close()
		case <-done:
			reader.Close()
		}
	}()

	for {
		ev, err := reader.Next()
		if err != nil {
			// any exit, clean or not, leaves the stream dead; the owner
			// watches the flag and decides whether to reconnect
			reader.MarkDead()
			r.store.SetLive(false)
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				r.logf("event stream failed: %v", err)
			}
			return nil
		}
		r.store.SetLive(true)
		r.Handle(ctx, ev)
	}
}

// Handle applies one normalized event. Unknown event types are ignored.
func (r *Reconciler) Handle(ctx context.Context, ev stream.Event) {
	switch {
	case ev.Type == "session.created" || ev.Type == "session.updated":
		r.handleSession(ev.Properties)
	case ev.Type == "session.deleted":
		r.handleSessionDeleted(ev.Properties)
	case ev.Type == "message.created" || ev.Type == "message.updated":
		r.handleMessage(ev.Properties)
	case ev.Type == "message.part.created" || ev.Type == "message.part.updated":
		r.handlePart(ev.Properties)
	case ev.Type == "message.part.deleted":
		r.handlePartDeleted(ev.Properties)
	case strings.HasPrefix(ev.Type, "permission."):
		// permissions are low volume; a full re-list with the stable-age
		// merge beats incremental patching
		r.refreshPermissions(ctx)
	case strings.HasPrefix(ev.Type, "todo."):
		// todos are a rank-ordered snapshot, only refreshed for the
		// session on screen
		if id := r.store.SelectedID(); id != "" {
			r.refreshTodos(ctx, id)
		}
	}
}

func (r *Reconciler) handleSession(props json.RawMessage) {
	var p struct {
		Info api.SessionInfo `json:"info"`
	}
	if err := json.Unmarshal(props, &p); err != nil || p.Info.ID == "" {
		return
	}
	r.store.ApplySession(p.Info.ToState())
}

func (r *Reconciler) handleSessionDeleted(props json.RawMessage) {
	var p struct {
		Info struct {
			ID string `json:"id"`
		} `json:"info"`
		SessionID string `json:"sessionID"`
	}
	if err := json.Unmarshal(props, &p); err != nil {
		return
	}
	id := p.Info.ID
	if id == "" {
		id = p.SessionID
	}
	if id == "" {
		return
	}
	r.store.DeleteSession(id)
	r.models.Forget(id)
}

func (r *Reconciler) handleMessage(props json.RawMessage) {
	var p struct {
		Info api.MessageInfo `json:"info"`
	}
	if err := json.Unmarshal(props, &p); err != nil || p.Info.ID == "" {
		return
	}
	r.store.ApplyMessage(p.Info.ToState())
}

func (r *Reconciler) handlePart(props json.RawMessage) {
	// the part rides under "part" or, on older servers, under "info"
	var p struct {
		Part api.PartInfo `json:"part"`
		Info api.PartInfo `json:"info"`
	}
	if err := json.Unmarshal(props, &p); err != nil {
		return
	}
	part := p.Part
	if part.ID == "" {
		part = p.Info
	}
	if part.ID == "" || part.MessageID == "" {
		return
	}
	r.store.ApplyPart(part.ToState())
}

func (r *Reconciler) handlePartDeleted(props json.RawMessage) {
	var p struct {
		Info struct {
			ID        string `json:"id"`
			MessageID string `json:"messageID"`
		} `json:"info"`
		MessageID string `json:"messageID"`
		PartID    string `json:"partID"`
	}
	if err := json.Unmarshal(props, &p); err != nil {
		return
	}
	messageID, partID := p.MessageID, p.PartID
	if partID == "" {
		messageID, partID = p.Info.MessageID, p.Info.ID
	}
	if messageID == "" || partID == "" {
		return
	}
	r.store.DeletePart(messageID, partID)
}

// --- supplementary fetches ---
//
// Fire-and-forget relative to the consumption loop. Each is an idempotent
// replace-with-latest-snapshot keyed by session or permission id, so
// overlapping completions are safe; transcript and todo results are
// additionally tagged with the session they were issued for and discarded
// when stale. Failures keep last-known state until the next refresh.

func (r *Reconciler) refreshPermissions(ctx context.Context) {
	r.fetches.Add(1)
	go func() {
		defer r.fetches.Done()
		perms, err := r.client.ListPermissions(ctx)
		if err != nil {
			r.logf("refresh permissions: %v", err)
			return
		}
		r.store.ReplacePermissions(api.PermissionsToState(perms))
	}()
}

func (r *Reconciler) refreshTodos(ctx context.Context, sessionID string) {
	r.fetches.Add(1)
	go func() {
		defer r.fetches.Done()
		todos, err := r.client.Todos(ctx, sessionID)
		if err != nil {
			r.logf("refresh todos: %v", err)
			return
		}
		r.store.ReplaceTodos(sessionID, api.TodosToState(todos))
	}()
}

func (r *Reconciler) refreshHistory(ctx context.Context, sessionID string) {
	r.fetches.Add(1)
	go func() {
		defer r.fetches.Done()
		records, err := r.client.Messages(ctx, sessionID)
		if err != nil {
			r.logf("refresh history: %v", err)
			return
		}
		messages := api.MessagesToState(records)
		if r.store.ReplaceMessages(sessionID, messages) {
			r.models.SeedFromHistory(sessionID, messages)
		}
	}()
}

// WaitFetches blocks until all in-flight supplementary fetches settle.
func (r *Reconciler) WaitFetches() {
	r.fetches.Wait()
}

// --- user actions ---

// RefreshSessions replaces the session list from the server.
func (r *Reconciler) RefreshSessions(ctx context.Context) error {
	infos, err := r.client.ListSessions(ctx)
	if err != nil {
		return err
	}
	sessions := make([]state.Session, 0, len(infos))
	for _, info := range infos {
		sessions = append(sessions, info.ToState())
	}
	r.store.ReplaceSessions(sessions)
	return nil
}

// SelectSession switches the active session: full history, todo snapshot,
// and pending permissions are re-fetched, and the session's last-used
// model is inferred from the fetched history. Background sessions never
// keep a transcript, so selection always starts from a fresh fetch.
func (r *Reconciler) SelectSession(ctx context.Context, sessionID string) {
	r.store.Select(sessionID)
	if sessionID == "" {
		return
	}
	r.refreshHistory(ctx, sessionID)
	r.refreshTodos(ctx, sessionID)
	r.refreshPermissions(ctx)
}

// NewSession creates a session on the server, records it locally and
// selects it.
func (r *Reconciler) NewSession(ctx context.Context, title string) (state.Session, error) {
	info, err := r.client.CreateSession(ctx, title)
	if err != nil {
		return state.Session{}, err
	}
	session := info.ToState()
	r.store.ApplySession(session)
	r.SelectSession(ctx, session.ID)
	return session, nil
}

// DeleteSession removes a session on the server and locally.
func (r *Reconciler) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.client.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	r.store.DeleteSession(sessionID)
	r.models.Forget(sessionID)
	return nil
}

// SendPrompt resolves the session's effective model, submits the prompt,
// and commits the resolved model as last-known (clearing any override).
// Failures propagate to the caller for display; there is no retry.
func (r *Reconciler) SendPrompt(ctx context.Context, sessionID, text string) (state.ModelRef, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return state.ModelRef{}, fmt.Errorf("prompt is empty")
	}

	resolved := r.models.Resolve(sessionID, r.store.Messages())
	req := api.PromptRequest{
		MessageID: "msg_" + uuid.NewString(),
		Model:     &resolved,
		Parts: []api.PromptPart{
			{ID: "prt_" + uuid.NewString(), Type: "text", Text: text},
		},
	}
	if err := r.client.Prompt(ctx, sessionID, req); err != nil {
		return state.ModelRef{}, err
	}
	r.models.NotePromptSent(sessionID, resolved)
	return resolved, nil
}

// ReplyPermission answers a pending request and re-lists permissions so
// the prompt disappears (or stays, on server rejection) authoritatively.
func (r *Reconciler) ReplyPermission(ctx context.Context, id string, response api.PermissionResponse) error {
	if err := r.client.ReplyPermission(ctx, id, response); err != nil {
		return err
	}
	r.refreshPermissions(ctx)
	return nil
}
