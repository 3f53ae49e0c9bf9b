package skills

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"openwork/internal/api"
)

func writeSkill(t *testing.T, root, dir, content string) {
	t.Helper()
	skillDir := filepath.Join(root, dir)
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverParsesFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "review", "---\nname: code-review\ndescription: Review changed files\n---\n# Review\n")
	writeSkill(t, root, "bare", "# Bare skill\n\nDoes something useful.\n")

	catalog, err := Discover([]string{root, filepath.Join(root, "missing")})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	list := catalog.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 skills, got %+v", list)
	}

	review, ok := catalog.Get("code-review")
	if !ok || review.Description != "Review changed files" {
		t.Fatalf("code-review=%+v ok=%v", review, ok)
	}

	// no frontmatter: name falls back to the directory, description to
	// the first paragraph
	bare, ok := catalog.Get("bare")
	if !ok || bare.Description != "Does something useful." {
		t.Fatalf("bare=%+v ok=%v", bare, ok)
	}
}

func TestDiscoverRejectsDuplicateNames(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "a", "---\nname: same\n---\n")
	writeSkill(t, root, "b", "---\nname: same\n---\n")

	if _, err := Discover([]string{root}); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

type fakeFileSource struct {
	entries map[string][]api.FileEntry
	files   map[string]string
}

func (f *fakeFileSource) ListFiles(ctx context.Context, dir string) ([]api.FileEntry, error) {
	entries, ok := f.entries[dir]
	if !ok {
		return nil, fmt.Errorf("no such dir: %s", dir)
	}
	return entries, nil
}

func (f *fakeFileSource) ReadFile(ctx context.Context, path string) (string, error) {
	content, ok := f.files[path]
	if !ok {
		return "", fmt.Errorf("no such file: %s", path)
	}
	return content, nil
}

func TestDiscoverRemote(t *testing.T) {
	source := &fakeFileSource{
		entries: map[string][]api.FileEntry{
			".opencode/skill": {
				{Name: "deploy", Type: "directory"},
				{Name: "notes.txt", Type: "file"},
				{Name: "broken", Type: "directory"},
			},
		},
		files: map[string]string{
			".opencode/skill/deploy/SKILL.md": "---\nname: deploy\ndescription: Ship it\n---\n",
		},
	}

	catalog, err := DiscoverRemote(context.Background(), source)
	if err != nil {
		t.Fatalf("DiscoverRemote: %v", err)
	}
	list := catalog.List()
	if len(list) != 1 {
		t.Fatalf("expected only the readable skill dir, got %+v", list)
	}
	if !list[0].Remote || list[0].Name != "deploy" {
		t.Fatalf("skill=%+v", list[0])
	}
}

func TestDiscoverRemoteMissingRootIsEmpty(t *testing.T) {
	catalog, err := DiscoverRemote(context.Background(), &fakeFileSource{})
	if err != nil {
		t.Fatalf("DiscoverRemote: %v", err)
	}
	if got := catalog.List(); len(got) != 0 {
		t.Fatalf("expected empty catalog, got %+v", got)
	}
}

func TestMergePrefersOverlay(t *testing.T) {
	local := &Catalog{items: map[string]Info{
		"deploy": {Name: "deploy", Description: "local"},
		"review": {Name: "review", Description: "local"},
	}}
	remote := &Catalog{items: map[string]Info{
		"deploy": {Name: "deploy", Description: "remote", Remote: true},
	}}

	merged := Merge(local, remote)
	deploy, _ := merged.Get("deploy")
	if !deploy.Remote {
		t.Fatalf("overlay should win: %+v", deploy)
	}
	if _, ok := merged.Get("review"); !ok {
		t.Fatal("base entries should survive the merge")
	}
}
