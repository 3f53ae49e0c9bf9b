// Package model decides which execution model a session's next prompt
// should use.
package model

import (
	"sync"

	"openwork/internal/state"
)

// Builtin is the hardcoded fallback when no preference exists anywhere.
var Builtin = state.ModelRef{ProviderID: "anthropic", ModelID: "claude-sonnet-4-5"}

// Settings supplies the persisted global default; injected so the
// resolver never touches process-wide state directly.
type Settings interface {
	DefaultModel() state.ModelRef
}

// Resolver resolves the effective model per session, in strict precedence:
//
//  1. an explicit per-session override from the model picker,
//  2. the model last known to have been used for that session,
//  3. the most recent user message in history carrying a model,
//  4. the persisted global default, then the built-in.
//
// After a prompt is sent the resolved model becomes the session's
// last-known model and any override is cleared, so a transient pick
// cannot silently reappear on a later turn.
type Resolver struct {
	mu        sync.Mutex
	overrides map[string]state.ModelRef
	lastUsed  map[string]state.ModelRef
	settings  Settings
}

func NewResolver(settings Settings) *Resolver {
	return &Resolver{
		overrides: map[string]state.ModelRef{},
		lastUsed:  map[string]state.ModelRef{},
		settings:  settings,
	}
}

// SetOverride records an explicit model-picker choice for one session.
func (r *Resolver) SetOverride(sessionID string, ref state.ModelRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref.IsZero() {
		delete(r.overrides, sessionID)
		return
	}
	r.overrides[sessionID] = ref
}

// Override returns the pending override, if any.
func (r *Resolver) Override(sessionID string) (state.ModelRef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.overrides[sessionID]
	return ref, ok
}

// Resolve picks the model for the session's next prompt.
func (r *Resolver) Resolve(sessionID string, history []state.Message) state.ModelRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ref, ok := r.overrides[sessionID]; ok && !ref.IsZero() {
		return ref
	}
	if ref, ok := r.lastUsed[sessionID]; ok && !ref.IsZero() {
		return ref
	}
	if ref, ok := lastModelInHistory(history); ok {
		return ref
	}
	if r.settings != nil {
		if ref := r.settings.DefaultModel(); !ref.IsZero() {
			return ref
		}
	}
	return Builtin
}

// NotePromptSent commits the resolved model as the session's last-known
// model and drops the override that produced it.
func (r *Resolver) NotePromptSent(sessionID string, resolved state.ModelRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !resolved.IsZero() {
		r.lastUsed[sessionID] = resolved
	}
	delete(r.overrides, sessionID)
}

// SeedFromHistory caches the last-used model inferred from a freshly
// fetched transcript; a session with no modeled user message is left
// untouched.
func (r *Resolver) SeedFromHistory(sessionID string, history []state.Message) {
	ref, ok := lastModelInHistory(history)
	if !ok {
		return
	}
	r.mu.Lock()
	r.lastUsed[sessionID] = ref
	r.mu.Unlock()
}

// Forget drops all cached state for a deleted session.
func (r *Resolver) Forget(sessionID string) {
	r.mu.Lock()
	delete(r.overrides, sessionID)
	delete(r.lastUsed, sessionID)
	r.mu.Unlock()
}

func lastModelInHistory(history []state.Message) (state.ModelRef, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		info := history[i].Info
		if info.Role != "user" || info.Model == nil || info.Model.IsZero() {
			continue
		}
		return *info.Model, true
	}
	return state.ModelRef{}, false
}
