// Package tui is the interactive terminal front end: a session list, the
// live transcript of the selected session, the plan sidebar, and
// overlays for permission requests and model selection. All displayed
// state comes from the store; user actions go through the Controller.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"openwork/internal/api"
	"openwork/internal/i18n"
	"openwork/internal/model"
	"openwork/internal/state"
	"openwork/internal/tokens"
)

// Controller is the slice of the reconciler the TUI drives.
// *syncer.Reconciler satisfies it.
type Controller interface {
	RefreshSessions(ctx context.Context) error
	SelectSession(ctx context.Context, sessionID string)
	NewSession(ctx context.Context, title string) (state.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SendPrompt(ctx context.Context, sessionID, text string) (state.ModelRef, error)
	ReplyPermission(ctx context.Context, id string, response api.PermissionResponse) error
}

// PanelID identifies a focusable panel.
type PanelID int

const (
	PanelSessions PanelID = iota
	PanelChat
)

type overlayID int

const (
	overlayNone overlayID = iota
	overlayPermission
	overlayModel
)

// --- Tea messages ---

// syncTickMsg drives periodic re-reads of the store snapshot.
type syncTickMsg time.Time

type actionErrMsg struct{ err error }

type promptSentMsg struct{ resolved state.ModelRef }

type sessionsRefreshedMsg struct{}

const syncInterval = 250 * time.Millisecond

func syncTick() tea.Cmd {
	return tea.Tick(syncInterval, func(t time.Time) tea.Msg {
		return syncTickMsg(t)
	})
}

// App is the Bubble Tea model.
type App struct {
	ctx     context.Context
	store   *state.Store
	control Controller
	models  *model.Resolver

	// saveDefault persists a model chosen as the cross-session default;
	// nil disables the binding.
	saveDefault func(state.ModelRef) error

	estimator *tokens.Estimator

	width  int
	height int

	focus         PanelID
	sessionCursor int
	chatView      viewport.Model
	input         textarea.Model

	overlay      overlayID
	modelCursor  int
	modelOptions []state.ModelRef

	markdown  bool
	statusMsg string
	lastError string

	theme  Theme
	keys   KeyMap
	locale *i18n.I18n
}

// NewApp builds the TUI model.
func NewApp(ctx context.Context, store *state.Store, control Controller, models *model.Resolver, saveDefault func(state.ModelRef) error, markdown bool) App {
	ta := textarea.New()
	ta.Placeholder = i18n.T("input.placeholder")
	ta.CharLimit = 8192
	ta.SetHeight(3)
	ta.Focus()

	return App{
		ctx:         ctx,
		store:       store,
		control:     control,
		models:      models,
		saveDefault: saveDefault,
		estimator:   tokens.Default(),
		focus:       PanelChat,
		input:       ta,
		markdown:    markdown,
		theme:       DarkTheme(),
		keys:        DefaultKeyMap(),
		locale:      i18n.Global(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, syncTick())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case syncTickMsg:
		a.refreshFromStore()
		if a.overlay == overlayNone && len(a.store.Permissions()) > 0 {
			a.overlay = overlayPermission
		}
		return a, syncTick()

	case actionErrMsg:
		a.lastError = msg.err.Error()
		return a, nil

	case promptSentMsg:
		a.statusMsg = a.locale.T("status.model", msg.resolved.String())
		a.lastError = ""
		return a, nil

	case sessionsRefreshedMsg:
		a.clampSessionCursor()
		return a, nil
	}

	if a.focus == PanelChat && a.overlay == overlayNone {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	switch a.overlay {
	case overlayPermission:
		return a.handlePermissionKey(msg)
	case overlayModel:
		return a.handleModelKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.SwitchPanel):
		if a.focus == PanelChat {
			a.focus = PanelSessions
			a.input.Blur()
		} else {
			a.focus = PanelChat
			a.input.Focus()
		}
		return a, nil
	case key.Matches(msg, a.keys.ModelPicker):
		a.openModelPicker()
		return a, nil
	}

	if a.focus == PanelSessions {
		return a.handleSessionKey(msg)
	}
	return a.handleChatKey(msg)
}

func (a App) handleSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := a.store.Sessions()
	switch {
	case key.Matches(msg, a.keys.ScrollUp):
		if a.sessionCursor > 0 {
			a.sessionCursor--
		}
	case key.Matches(msg, a.keys.ScrollDown):
		if a.sessionCursor < len(sessions)-1 {
			a.sessionCursor++
		}
	case key.Matches(msg, a.keys.Submit):
		if a.sessionCursor < len(sessions) {
			id := sessions[a.sessionCursor].ID
			a.focus = PanelChat
			a.input.Focus()
			return a, a.selectSessionCmd(id)
		}
	case key.Matches(msg, a.keys.NewSession):
		return a, a.newSessionCmd()
	case key.Matches(msg, a.keys.Delete):
		if a.sessionCursor < len(sessions) {
			return a, a.deleteSessionCmd(sessions[a.sessionCursor].ID)
		}
	case key.Matches(msg, a.keys.Refresh):
		return a, a.refreshSessionsCmd()
	}
	return a, nil
}

func (a App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Submit):
		text := strings.TrimSpace(a.input.Value())
		if text == "" {
			return a, nil
		}
		sessionID := a.store.SelectedID()
		if sessionID == "" {
			a.lastError = a.locale.T("session.select")
			return a, nil
		}
		a.input.Reset()
		return a, a.sendPromptCmd(sessionID, text)
	case msg.String() == "pgup":
		a.chatView.HalfViewUp()
		return a, nil
	case msg.String() == "pgdown":
		a.chatView.HalfViewDown()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handlePermissionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	perms := a.store.Permissions()
	if len(perms) == 0 {
		a.overlay = overlayNone
		return a, nil
	}
	// requests are answered oldest first
	current := perms[0]

	var response api.PermissionResponse
	switch {
	case msg.String() == "o":
		response = api.PermissionOnce
	case msg.String() == "a":
		response = api.PermissionAlways
	case msg.String() == "r":
		response = api.PermissionReject
	case key.Matches(msg, a.keys.Cancel):
		a.overlay = overlayNone
		return a, nil
	default:
		return a, nil
	}

	a.overlay = overlayNone
	a.statusMsg = a.locale.T("perm.answered", current.Permission, string(response))
	return a, a.replyPermissionCmd(current.ID, response)
}

func (a App) handleModelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.ScrollUp):
		if a.modelCursor > 0 {
			a.modelCursor--
		}
	case key.Matches(msg, a.keys.ScrollDown):
		if a.modelCursor < len(a.modelOptions)-1 {
			a.modelCursor++
		}
	case key.Matches(msg, a.keys.Submit):
		if a.modelCursor < len(a.modelOptions) {
			chosen := a.modelOptions[a.modelCursor]
			a.models.SetOverride(a.store.SelectedID(), chosen)
			a.statusMsg = a.locale.T("model.override", chosen.String())
		}
		a.overlay = overlayNone
	case msg.String() == "s":
		if a.modelCursor < len(a.modelOptions) && a.saveDefault != nil {
			chosen := a.modelOptions[a.modelCursor]
			if err := a.saveDefault(chosen); err != nil {
				a.lastError = err.Error()
			} else {
				a.statusMsg = a.locale.T("model.default", chosen.String())
			}
		}
		a.overlay = overlayNone
	case key.Matches(msg, a.keys.Cancel):
		a.overlay = overlayNone
	}
	return a, nil
}

// --- commands ---

func (a App) selectSessionCmd(id string) tea.Cmd {
	ctx, control := a.ctx, a.control
	return func() tea.Msg {
		control.SelectSession(ctx, id)
		return nil
	}
}

func (a App) newSessionCmd() tea.Cmd {
	ctx, control := a.ctx, a.control
	return func() tea.Msg {
		if _, err := control.NewSession(ctx, ""); err != nil {
			return actionErrMsg{err}
		}
		return sessionsRefreshedMsg{}
	}
}

func (a App) deleteSessionCmd(id string) tea.Cmd {
	ctx, control := a.ctx, a.control
	return func() tea.Msg {
		if err := control.DeleteSession(ctx, id); err != nil {
			return actionErrMsg{err}
		}
		return sessionsRefreshedMsg{}
	}
}

func (a App) refreshSessionsCmd() tea.Cmd {
	ctx, control := a.ctx, a.control
	return func() tea.Msg {
		if err := control.RefreshSessions(ctx); err != nil {
			return actionErrMsg{err}
		}
		return sessionsRefreshedMsg{}
	}
}

func (a App) sendPromptCmd(sessionID, text string) tea.Cmd {
	ctx, control := a.ctx, a.control
	return func() tea.Msg {
		resolved, err := control.SendPrompt(ctx, sessionID, text)
		if err != nil {
			return actionErrMsg{fmt.Errorf("send prompt: %w", err)}
		}
		return promptSentMsg{resolved}
	}
}

func (a App) replyPermissionCmd(id string, response api.PermissionResponse) tea.Cmd {
	ctx, control := a.ctx, a.control
	return func() tea.Msg {
		if err := control.ReplyPermission(ctx, id, response); err != nil {
			return actionErrMsg{fmt.Errorf("reply permission: %w", err)}
		}
		return nil
	}
}

// --- internal ---

func (a *App) relayout() {
	chatWidth := a.chatWidth()
	chatHeight := a.height - 7
	if chatHeight < 3 {
		chatHeight = 3
	}
	atBottom := a.chatView.AtBottom()
	a.chatView = viewport.New(chatWidth, chatHeight)
	a.refreshFromStore()
	if atBottom {
		a.chatView.GotoBottom()
	}
	a.input.SetWidth(chatWidth - 2)
}

func (a *App) refreshFromStore() {
	atBottom := a.chatView.AtBottom()
	a.chatView.SetContent(RenderTranscript(a.store.Messages(), a.theme, a.chatWidth(), a.markdown))
	if atBottom {
		a.chatView.GotoBottom()
	}
	a.clampSessionCursor()
}

func (a *App) clampSessionCursor() {
	n := len(a.store.Sessions())
	if a.sessionCursor >= n {
		a.sessionCursor = n - 1
	}
	if a.sessionCursor < 0 {
		a.sessionCursor = 0
	}
}

func (a *App) openModelPicker() {
	a.modelOptions = a.buildModelOptions()
	a.modelCursor = 0
	current := a.models.Resolve(a.store.SelectedID(), a.store.Messages())
	for i, opt := range a.modelOptions {
		if opt == current {
			a.modelCursor = i
			break
		}
	}
	a.overlay = overlayModel
}

// buildModelOptions collects every model the client currently knows
// about: the builtin default, the resolved current one, and any model
// seen in the loaded transcript.
func (a *App) buildModelOptions() []state.ModelRef {
	seen := map[state.ModelRef]struct{}{}
	var options []state.ModelRef
	add := func(ref state.ModelRef) {
		if ref.IsZero() {
			return
		}
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}
		options = append(options, ref)
	}

	add(a.models.Resolve(a.store.SelectedID(), a.store.Messages()))
	add(model.Builtin)
	for _, msg := range a.store.Messages() {
		if msg.Info.Model != nil {
			add(*msg.Info.Model)
		}
	}
	return options
}

func (a App) chatWidth() int {
	sessionWidth := a.sessionListWidth()
	sidebarWidth := a.sidebarWidth()
	w := a.width - sessionWidth - sidebarWidth - 2
	if w < 20 {
		w = 20
	}
	return w
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, store *state.Store, control Controller, models *model.Resolver, saveDefault func(state.ModelRef) error, markdown bool) error {
	app := NewApp(ctx, store, control, models, saveDefault, markdown)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (a App) sessionListWidth() int {
	if a.width < 80 {
		return 0
	}
	return 24
}

func (a App) sidebarWidth() int {
	if a.width < 100 {
		return 0
	}
	return 30
}
