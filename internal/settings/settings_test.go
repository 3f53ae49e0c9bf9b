package settings

import (
	"path/filepath"
	"testing"

	"openwork/internal/state"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "settings.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDefaultModelRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if got := store.DefaultModel(); !got.IsZero() {
		t.Fatalf("fresh store should have no default, got %+v", got)
	}

	want := state.ModelRef{ProviderID: "anthropic", ModelID: "claude-sonnet-4-5"}
	if err := store.SetDefaultModel(want); err != nil {
		t.Fatalf("SetDefaultModel: %v", err)
	}
	if got := store.DefaultModel(); got != want {
		t.Fatalf("DefaultModel=%+v, want %+v", got, want)
	}

	// overwrite
	want = state.ModelRef{ProviderID: "openai", ModelID: "gpt-5"}
	if err := store.SetDefaultModel(want); err != nil {
		t.Fatalf("SetDefaultModel: %v", err)
	}
	if got := store.DefaultModel(); got != want {
		t.Fatalf("DefaultModel=%+v after overwrite, want %+v", got, want)
	}
}

func TestLastBaseURLAndProjectDir(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetLastBaseURL("  http://127.0.0.1:4096  "); err != nil {
		t.Fatalf("SetLastBaseURL: %v", err)
	}
	url, err := store.LastBaseURL()
	if err != nil {
		t.Fatalf("LastBaseURL: %v", err)
	}
	if url != "http://127.0.0.1:4096" {
		t.Fatalf("LastBaseURL=%q", url)
	}

	if err := store.SetLastProjectDir("/work/demo"); err != nil {
		t.Fatalf("SetLastProjectDir: %v", err)
	}
	dir, err := store.LastProjectDir()
	if err != nil {
		t.Fatalf("LastProjectDir: %v", err)
	}
	if dir != "/work/demo" {
		t.Fatalf("LastProjectDir=%q", dir)
	}
}

func TestPermissionDecisionLog(t *testing.T) {
	store := newTestStore(t)

	if err := store.LogPermissionDecision("s1", "bash", "once"); err != nil {
		t.Fatalf("LogPermissionDecision: %v", err)
	}
	if err := store.LogPermissionDecision("s1", "edit", "reject"); err != nil {
		t.Fatalf("LogPermissionDecision: %v", err)
	}
	if err := store.LogPermissionDecision("s2", "bash", "always"); err != nil {
		t.Fatalf("LogPermissionDecision: %v", err)
	}

	entries, err := store.PermissionDecisions("s1")
	if err != nil {
		t.Fatalf("PermissionDecisions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for s1, got %d", len(entries))
	}
	if entries[0].Permission != "bash" || entries[0].Decision != "once" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Permission != "edit" || entries[1].Decision != "reject" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
