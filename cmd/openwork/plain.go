package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"openwork/internal/api"
	"openwork/internal/config"
	"openwork/internal/i18n"
	"openwork/internal/model"
	"openwork/internal/settings"
	"openwork/internal/skills"
	"openwork/internal/state"
	"openwork/internal/syncer"
)

const turnPollInterval = 200 * time.Millisecond

// plainSession is the line-mode reworking of the client: the same store
// and reconciler as the TUI, driven by a readline loop instead of
// Bubble Tea.
type plainSession struct {
	cfg    config.Config
	client *api.Client
	store  *state.Store
	models *model.Resolver
	rec    *syncer.Reconciler
	prefs  *settings.Store
	in     *lineReader
}

func runPlain(ctx context.Context, cfg config.Config, client *api.Client, store *state.Store, models *model.Resolver, rec *syncer.Reconciler, prefs *settings.Store) error {
	in := openLineReader(filepath.Join(cfg.Storage.BaseDir, "history"))
	defer in.Close()

	p := &plainSession{
		cfg:    cfg,
		client: client,
		store:  store,
		models: models,
		rec:    rec,
		prefs:  prefs,
		in:     in,
	}

	p.printSessions()
	p.printHelp()

	for {
		line, err := p.in.ReadLine("> ")
		if err != nil {
			if interrupted(err) {
				fmt.Println()
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			exit, err := p.handleCommand(ctx, input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
			if exit {
				return nil
			}
			continue
		}

		if err := p.runTurn(ctx, input); err != nil {
			fmt.Fprintln(os.Stderr, i18n.T("error.prompt_failed", err))
		}
	}
}

func (p *plainSession) handleCommand(ctx context.Context, input string) (exit bool, err error) {
	cmd, arg := splitCommand(input)
	switch cmd {
	case "/help":
		p.printHelp()
	case "/sessions":
		if err := p.rec.RefreshSessions(ctx); err != nil {
			return false, err
		}
		p.printSessions()
	case "/new":
		session, err := p.rec.NewSession(ctx, arg)
		if err != nil {
			return false, fmt.Errorf("create session: %w", err)
		}
		fmt.Println(i18n.T("session.created", session.ID))
	case "/use":
		return false, p.selectSession(ctx, arg)
	case "/delete":
		session, ok := p.findSession(arg)
		if !ok {
			return false, fmt.Errorf("unknown session: %s", arg)
		}
		if err := p.rec.DeleteSession(ctx, session.ID); err != nil {
			return false, err
		}
		fmt.Println(i18n.T("session.deleted"))
	case "/model":
		return false, p.handleModel(arg)
	case "/models":
		p.printModels()
	case "/todos":
		p.rec.WaitFetches()
		p.printTodos()
	case "/skills":
		return false, p.printSkills(ctx)
	case "/permissions":
		p.printPermissions()
	case "/exit", "/quit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command: %s (try /help)", cmd)
	}
	return false, nil
}

func splitCommand(input string) (string, string) {
	parts := strings.SplitN(input, " ", 2)
	cmd := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return cmd, ""
	}
	return cmd, strings.TrimSpace(parts[1])
}

// runTurn sends one prompt and blocks until the session settles, echoing
// the assistant's reply and answering permission requests inline.
func (p *plainSession) runTurn(ctx context.Context, text string) error {
	sessionID := p.store.SelectedID()
	if sessionID == "" {
		return fmt.Errorf("%s", i18n.T("session.select"))
	}
	before := len(p.store.Messages())

	resolved, err := p.rec.SendPrompt(ctx, sessionID, text)
	if err != nil {
		return err
	}
	fmt.Println(i18n.T("status.model", resolved.String()))

	sawRunning := false
	started := time.Now()
	ticker := time.NewTicker(turnPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := p.answerPermissions(ctx); err != nil {
			return err
		}

		session, ok := p.store.Session(sessionID)
		if !ok || p.store.SelectedID() != sessionID {
			return nil
		}
		switch {
		case session.Status == state.StatusRunning:
			sawRunning = true
		case session.Status == state.StatusRetry:
			fmt.Println(i18n.T("status.retrying"))
		case sawRunning || time.Since(started) > 3*time.Second:
			// settled: print everything that arrived during the turn
			p.printNewMessages(before)
			return nil
		}
	}
}

func (p *plainSession) answerPermissions(ctx context.Context) error {
	for {
		perms := p.store.Permissions()
		if len(perms) == 0 {
			return nil
		}
		current := perms[0]

		fmt.Printf("\n%s\n", i18n.T("perm.title"))
		fmt.Println(i18n.T("perm.request", current.Permission))
		if len(current.Patterns) > 0 {
			fmt.Println(i18n.T("perm.patterns", strings.Join(current.Patterns, ", ")))
		}

		line, err := p.in.ReadLine(i18n.T("perm.prompt") + " ")
		if err != nil {
			if interrupted(err) {
				line = "r"
			} else {
				return err
			}
		}

		var response api.PermissionResponse
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "o", "once", "y", "yes":
			response = api.PermissionOnce
		case "a", "always":
			response = api.PermissionAlways
		case "r", "reject", "n", "no":
			response = api.PermissionReject
		default:
			continue
		}

		if err := p.rec.ReplyPermission(ctx, current.ID, response); err != nil {
			return fmt.Errorf("reply permission: %w", err)
		}
		_ = p.prefs.LogPermissionDecision(current.SessionID, current.Permission, string(response))
		fmt.Println(i18n.T("perm.answered", current.Permission, string(response)))
		p.rec.WaitFetches()
	}
}

func (p *plainSession) printNewMessages(fromIndex int) {
	messages := p.store.Messages()
	if fromIndex > len(messages) {
		fromIndex = 0
	}
	for _, msg := range messages[fromIndex:] {
		if msg.Info.Role == "user" {
			continue
		}
		for _, part := range msg.Parts {
			printPlainPart(part)
		}
	}
}

func printPlainPart(part state.Part) {
	switch {
	case part.Tool != nil:
		fmt.Printf("[tool] %s (%s)\n", part.Tool.Name, part.Tool.Status)
		if part.Tool.Error != "" {
			fmt.Printf("  %s\n", strings.SplitN(part.Tool.Error, "\n", 2)[0])
		}
	case part.Type == "reasoning":
		// reasoning stays out of plain output
	case part.Text != "":
		fmt.Println(part.Text)
	}
}

func (p *plainSession) selectSession(ctx context.Context, arg string) error {
	session, ok := p.findSession(arg)
	if !ok {
		return fmt.Errorf("unknown session: %s", arg)
	}
	p.rec.SelectSession(ctx, session.ID)
	p.rec.WaitFetches()
	title := session.Title
	if title == "" {
		title = i18n.T("session.untitled")
	}
	fmt.Printf("%s (%s)\n", title, session.ID)
	p.printTodos()
	return nil
}

// findSession accepts a 1-based list index or a session id.
func (p *plainSession) findSession(arg string) (state.Session, bool) {
	sessions := p.store.Sessions()
	if idx, err := strconv.Atoi(arg); err == nil {
		if idx >= 1 && idx <= len(sessions) {
			return sessions[idx-1], true
		}
		return state.Session{}, false
	}
	for _, session := range sessions {
		if session.ID == arg {
			return session, true
		}
	}
	return state.Session{}, false
}

func (p *plainSession) handleModel(arg string) error {
	sessionID := p.store.SelectedID()
	if arg == "" {
		resolved := p.models.Resolve(sessionID, p.store.Messages())
		fmt.Println(i18n.T("model.current", resolved.String()))
		return nil
	}
	ref, err := parseModelRef(arg)
	if err != nil {
		return err
	}
	if sessionID == "" {
		if err := p.prefs.SetDefaultModel(ref); err != nil {
			return err
		}
		fmt.Println(i18n.T("model.default", ref.String()))
		return nil
	}
	p.models.SetOverride(sessionID, ref)
	fmt.Println(i18n.T("model.override", ref.String()))
	return nil
}

func parseModelRef(arg string) (state.ModelRef, error) {
	provider, modelID, ok := strings.Cut(arg, "/")
	if !ok || provider == "" || modelID == "" {
		return state.ModelRef{}, fmt.Errorf("expected provider/model, got %q", arg)
	}
	return state.ModelRef{ProviderID: provider, ModelID: modelID}, nil
}

func (p *plainSession) printModels() {
	current := p.models.Resolve(p.store.SelectedID(), p.store.Messages())
	seen := map[state.ModelRef]struct{}{}
	for _, ref := range []state.ModelRef{current, model.Builtin} {
		if _, ok := seen[ref]; ok || ref.IsZero() {
			continue
		}
		seen[ref] = struct{}{}
		marker := "  "
		if ref == current {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, ref.String())
	}
	for _, msg := range p.store.Messages() {
		if msg.Info.Model == nil {
			continue
		}
		ref := *msg.Info.Model
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		fmt.Printf("  %s\n", ref.String())
	}
}

func (p *plainSession) printSessions() {
	sessions := p.store.Sessions()
	if len(sessions) == 0 {
		fmt.Println(i18n.T("session.empty"))
		return
	}
	selected := p.store.SelectedID()
	for i, session := range sessions {
		marker := "  "
		if session.ID == selected {
			marker = "* "
		}
		title := session.Title
		if title == "" {
			title = i18n.T("session.untitled")
		}
		fmt.Printf("%s%d. %s [%s] %s\n", marker, i+1, title, session.Status, session.ID)
	}
}

func (p *plainSession) printTodos() {
	todos := p.store.Todos()
	if len(todos) == 0 {
		fmt.Println(i18n.T("todo.empty"))
		return
	}
	for _, todo := range todos {
		marker := "[ ]"
		switch todo.Status {
		case "completed":
			marker = "[x]"
		case "in_progress":
			marker = "[~]"
		}
		fmt.Printf("%s %s\n", marker, todo.Content)
	}
}

func (p *plainSession) printPermissions() {
	perms := p.store.Permissions()
	if len(perms) == 0 {
		fmt.Println("no pending permission requests")
		return
	}
	for _, perm := range perms {
		fmt.Printf("%s: %s", perm.ID, perm.Permission)
		if len(perm.Patterns) > 0 {
			fmt.Printf(" (%s)", strings.Join(perm.Patterns, ", "))
		}
		fmt.Println()
	}
}

func (p *plainSession) printSkills(ctx context.Context) error {
	local, err := skills.Discover(p.cfg.Skills.Paths)
	if err != nil {
		return err
	}
	remote, err := skills.DiscoverRemote(ctx, p.client)
	if err != nil {
		return err
	}
	merged := skills.Merge(local, remote)
	list := merged.List()
	if len(list) == 0 {
		fmt.Println(i18n.T("skill.empty"))
		return nil
	}
	for _, info := range list {
		origin := "local"
		if info.Remote {
			origin = "server"
		}
		fmt.Printf("%s (%s): %s\n", info.Name, origin, info.Description)
	}
	return nil
}

func (p *plainSession) printHelp() {
	rows := [][2]string{
		{"/help", i18n.T("cmd.help")},
		{"/sessions", i18n.T("cmd.sessions")},
		{"/new [title]", i18n.T("cmd.new")},
		{"/use <n|id>", i18n.T("cmd.use")},
		{"/delete <n|id>", i18n.T("cmd.delete")},
		{"/model [provider/model]", i18n.T("cmd.model")},
		{"/models", i18n.T("model.title")},
		{"/todos", i18n.T("cmd.todos")},
		{"/skills", i18n.T("cmd.skills")},
		{"/permissions", i18n.T("perm.title")},
		{"/exit", i18n.T("cmd.exit")},
	}
	fmt.Println("commands:")
	for _, row := range rows {
		fmt.Printf("  %-24s %s\n", row[0], row[1])
	}
}
