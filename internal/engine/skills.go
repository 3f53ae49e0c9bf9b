package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func copyDirRecursive(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", src)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dest, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", src, err)
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			if err := copyDirRecursive(from, to); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			// skip symlinks and other non-regular entries
			continue
		}
		data, err := os.ReadFile(from)
		if err != nil {
			return fmt.Errorf("read %s: %w", from, err)
		}
		if err := os.WriteFile(to, data, 0o644); err != nil {
			return fmt.Errorf("copy %s -> %s: %w", from, to, err)
		}
	}
	return nil
}

// ImportSkill copies a skill directory into the project's
// .opencode/skill tree under the source directory's base name.
func ImportSkill(projectDir, sourceDir string, overwrite bool) (ExecResult, error) {
	projectDir = strings.TrimSpace(projectDir)
	if projectDir == "" {
		return ExecResult{}, fmt.Errorf("project dir is required")
	}
	sourceDir = strings.TrimSpace(sourceDir)
	if sourceDir == "" {
		return ExecResult{}, fmt.Errorf("source dir is required")
	}

	name := filepath.Base(filepath.Clean(sourceDir))
	if name == "." || name == string(filepath.Separator) {
		return ExecResult{}, fmt.Errorf("cannot infer skill name from %q", sourceDir)
	}

	dest := filepath.Join(projectDir, ".opencode", "skill", name)
	if _, err := os.Stat(dest); err == nil {
		if !overwrite {
			return ExecResult{}, fmt.Errorf("skill already exists at %s", dest)
		}
		if err := os.RemoveAll(dest); err != nil {
			return ExecResult{}, fmt.Errorf("remove existing skill dir %s: %w", dest, err)
		}
	}

	if err := copyDirRecursive(sourceDir, dest); err != nil {
		return ExecResult{}, err
	}
	return ExecResult{OK: true, Status: 0, Stdout: "Imported skill to " + dest}, nil
}
