package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFile is an opencode.json file as seen on disk.
type ConfigFile struct {
	Path    string `json:"path"`
	Exists  bool   `json:"exists"`
	Content string `json:"content,omitempty"`
}

func resolveConfigPath(scope, projectDir string) (string, error) {
	switch strings.TrimSpace(scope) {
	case "project":
		projectDir = strings.TrimSpace(projectDir)
		if projectDir == "" {
			return "", fmt.Errorf("project dir is required")
		}
		return filepath.Join(projectDir, "opencode.json"), nil
	case "global":
		base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve config directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, "opencode", "opencode.json"), nil
	default:
		return "", fmt.Errorf("scope must be %q or %q", "project", "global")
	}
}

// ReadConfig reads the opencode.json for the given scope. A missing file
// is not an error; Exists reports it.
func ReadConfig(scope, projectDir string) (ConfigFile, error) {
	path, err := resolveConfigPath(scope, projectDir)
	if err != nil {
		return ConfigFile{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ConfigFile{Path: path}, nil
		}
		return ConfigFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ConfigFile{Path: path, Exists: true, Content: string(data)}, nil
}

// WriteConfig writes the opencode.json for the given scope, creating
// parent directories as needed.
func WriteConfig(scope, projectDir, content string) (string, error) {
	path, err := resolveConfigPath(scope, projectDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
