package main

import (
	"testing"

	"openwork/internal/state"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		input string
		cmd   string
		arg   string
	}{
		{"/help", "/help", ""},
		{"/new my session", "/new", "my session"},
		{"/USE 2", "/use", "2"},
		{"/model  anthropic/claude-sonnet-4-5", "/model", "anthropic/claude-sonnet-4-5"},
	}
	for _, tc := range cases {
		cmd, arg := splitCommand(tc.input)
		if cmd != tc.cmd || arg != tc.arg {
			t.Fatalf("splitCommand(%q) = %q, %q; want %q, %q", tc.input, cmd, arg, tc.cmd, tc.arg)
		}
	}
}

func TestParseModelRef(t *testing.T) {
	ref, err := parseModelRef("anthropic/claude-sonnet-4-5")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ref.ProviderID != "anthropic" || ref.ModelID != "claude-sonnet-4-5" {
		t.Fatalf("ref = %+v", ref)
	}

	for _, bad := range []string{"", "anthropic", "/model", "provider/"} {
		if _, err := parseModelRef(bad); err == nil {
			t.Fatalf("parseModelRef(%q) should fail", bad)
		}
	}
}

func TestFindSession(t *testing.T) {
	store := state.NewStore()
	store.ReplaceSessions([]state.Session{
		{ID: "ses_a", Title: "first"},
		{ID: "ses_b", Title: "second"},
	})
	p := &plainSession{store: store}

	if got, ok := p.findSession("2"); !ok || got.ID != "ses_b" {
		t.Fatalf("by index: %+v, %v", got, ok)
	}
	if got, ok := p.findSession("ses_a"); !ok || got.ID != "ses_a" {
		t.Fatalf("by id: %+v, %v", got, ok)
	}
	if _, ok := p.findSession("0"); ok {
		t.Fatal("index 0 should miss")
	}
	if _, ok := p.findSession("ses_missing"); ok {
		t.Fatal("unknown id should miss")
	}
}
