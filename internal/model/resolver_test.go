package model

import (
	"testing"

	"openwork/internal/state"
)

type fixedSettings struct{ ref state.ModelRef }

func (f fixedSettings) DefaultModel() state.ModelRef { return f.ref }

func userMessage(id string, ref *state.ModelRef) state.Message {
	return state.Message{Info: state.MessageInfo{ID: id, Role: "user", Model: ref}}
}

func TestResolvePrecedenceOverrideWins(t *testing.T) {
	r := NewResolver(fixedSettings{ref: state.ModelRef{ProviderID: "google", ModelID: "gemini"}})

	r.NotePromptSent("s1", state.ModelRef{ProviderID: "anthropic", ModelID: "claude"})
	r.SetOverride("s1", state.ModelRef{ProviderID: "openai", ModelID: "gpt-5"})

	got := r.Resolve("s1", nil)
	if got.ProviderID != "openai" || got.ModelID != "gpt-5" {
		t.Fatalf("override must win: %+v", got)
	}
}

func TestResolveAfterSendOverrideBecomesLastKnown(t *testing.T) {
	r := NewResolver(nil)
	r.NotePromptSent("s1", state.ModelRef{ProviderID: "anthropic", ModelID: "claude"})
	r.SetOverride("s1", state.ModelRef{ProviderID: "openai", ModelID: "gpt-5"})

	resolved := r.Resolve("s1", nil)
	r.NotePromptSent("s1", resolved)

	if _, ok := r.Override("s1"); ok {
		t.Fatalf("override must clear after send")
	}
	got := r.Resolve("s1", nil)
	if got.ProviderID != "openai" || got.ModelID != "gpt-5" {
		t.Fatalf("new last-known must be the sent model, got %+v", got)
	}
}

func TestResolveScansHistoryBackward(t *testing.T) {
	r := NewResolver(nil)
	history := []state.Message{
		userMessage("m1", &state.ModelRef{ProviderID: "openai", ModelID: "old"}),
		{Info: state.MessageInfo{ID: "m2", Role: "assistant"}},
		userMessage("m3", &state.ModelRef{ProviderID: "openai", ModelID: "new"}),
		{Info: state.MessageInfo{ID: "m4", Role: "assistant"}},
		userMessage("m5", nil),
	}

	got := r.Resolve("s1", history)
	if got.ModelID != "new" {
		t.Fatalf("expected most recent modeled user message, got %+v", got)
	}
}

func TestResolveFallsBackToSettingsThenBuiltin(t *testing.T) {
	withDefault := NewResolver(fixedSettings{ref: state.ModelRef{ProviderID: "google", ModelID: "gemini"}})
	if got := withDefault.Resolve("s1", nil); got.ModelID != "gemini" {
		t.Fatalf("expected settings default, got %+v", got)
	}

	bare := NewResolver(fixedSettings{})
	if got := bare.Resolve("s1", nil); got != Builtin {
		t.Fatalf("expected builtin fallback, got %+v", got)
	}
}

func TestSeedFromHistory(t *testing.T) {
	r := NewResolver(nil)
	r.SeedFromHistory("s1", []state.Message{
		userMessage("m1", &state.ModelRef{ProviderID: "anthropic", ModelID: "claude"}),
	})
	if got := r.Resolve("s1", nil); got.ModelID != "claude" {
		t.Fatalf("seed not applied: %+v", got)
	}

	// seeding with an unmodeled history leaves the cache alone
	r.SeedFromHistory("s1", []state.Message{userMessage("m2", nil)})
	if got := r.Resolve("s1", nil); got.ModelID != "claude" {
		t.Fatalf("unmodeled history must not clear cache: %+v", got)
	}
}

func TestForget(t *testing.T) {
	r := NewResolver(fixedSettings{})
	r.SetOverride("s1", state.ModelRef{ProviderID: "openai", ModelID: "gpt-5"})
	r.NotePromptSent("s1", state.ModelRef{ProviderID: "openai", ModelID: "gpt-5"})
	r.Forget("s1")
	if got := r.Resolve("s1", nil); got != Builtin {
		t.Fatalf("forget must drop cached state: %+v", got)
	}
}
