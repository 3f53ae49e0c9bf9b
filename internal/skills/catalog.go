// Package skills discovers SKILL.md skill definitions, both on the
// local filesystem and inside the project the server is running in.
package skills

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"openwork/internal/api"
)

// Info is one discovered skill.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
	Remote      bool   `json:"remote"`
}

// Catalog is an immutable set of discovered skills keyed by name.
type Catalog struct {
	items map[string]Info
}

// Discover walks the given local roots for SKILL.md files. Missing roots
// are skipped; a duplicate skill name across roots is an error.
func Discover(roots []string) (*Catalog, error) {
	items := map[string]Info{}
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		if _, err := os.Stat(root); err != nil {
			continue
		}

		err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !strings.EqualFold(d.Name(), "SKILL.md") {
				return nil
			}
			data, rerr := os.ReadFile(p)
			if rerr != nil {
				return nil
			}
			abs, aerr := filepath.Abs(p)
			if aerr != nil {
				abs = p
			}
			info := parseSkill(string(data), abs, filepath.Base(filepath.Dir(p)))
			if _, ok := items[info.Name]; ok {
				return fmt.Errorf("duplicate skill name: %s", info.Name)
			}
			items[info.Name] = info
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return &Catalog{items: items}, nil
}

// FileSource is the slice of the server file API used for remote
// discovery. *api.Client satisfies it.
type FileSource interface {
	ListFiles(ctx context.Context, dir string) ([]api.FileEntry, error)
	ReadFile(ctx context.Context, filePath string) (string, error)
}

// DiscoverRemote lists .opencode/skill/*/SKILL.md through the server
// file API. A project without the skill directory yields an empty
// catalog, not an error.
func DiscoverRemote(ctx context.Context, source FileSource) (*Catalog, error) {
	const skillRoot = ".opencode/skill"

	items := map[string]Info{}
	entries, err := source.ListFiles(ctx, skillRoot)
	if err != nil {
		return &Catalog{items: items}, nil
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillPath := path.Join(skillRoot, entry.Name, "SKILL.md")
		content, err := source.ReadFile(ctx, skillPath)
		if err != nil {
			continue
		}
		info := parseSkill(content, skillPath, entry.Name)
		info.Remote = true
		if _, ok := items[info.Name]; ok {
			return nil, fmt.Errorf("duplicate skill name: %s", info.Name)
		}
		items[info.Name] = info
	}
	return &Catalog{items: items}, nil
}

// Merge overlays other onto c; on a name collision the entry from other
// wins. Either side may be nil.
func Merge(c, other *Catalog) *Catalog {
	items := map[string]Info{}
	if c != nil {
		for name, info := range c.items {
			items[name] = info
		}
	}
	if other != nil {
		for name, info := range other.items {
			items[name] = info
		}
	}
	return &Catalog{items: items}
}

// List returns all skills sorted by name.
func (c *Catalog) List() []Info {
	if c == nil {
		return nil
	}
	out := make([]Info, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Get looks up one skill by name.
func (c *Catalog) Get(name string) (Info, bool) {
	if c == nil {
		return Info{}, false
	}
	v, ok := c.items[name]
	return v, ok
}

func parseSkill(content, skillPath, fallbackName string) Info {
	name := ""
	desc := ""

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "---") {
		front, _ := splitFrontmatter(trimmed)
		for _, line := range strings.Split(front, "\n") {
			line = strings.TrimSpace(line)
			lower := strings.ToLower(line)
			if strings.HasPrefix(lower, "name:") {
				name = strings.TrimSpace(line[len("name:"):])
			}
			if strings.HasPrefix(lower, "description:") {
				desc = strings.TrimSpace(line[len("description:"):])
			}
		}
	}
	if name == "" {
		name = fallbackName
	}
	if desc == "" {
		desc = firstParagraph(content)
	}
	if desc == "" {
		desc = "No description"
	}
	return Info{Name: name, Description: desc, Path: skillPath}
}

func splitFrontmatter(content string) (string, string) {
	parts := strings.SplitN(content, "\n", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) != "---" {
		return "", content
	}
	rest := parts[1]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return "", content
	}
	return rest[:idx], rest[idx+4:]
}

func firstParagraph(content string) string {
	scanner := bufio.NewScanner(strings.NewReader(content))
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if len(lines) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}
