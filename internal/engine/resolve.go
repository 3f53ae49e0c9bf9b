// Package engine manages a local opencode server process: discovering
// the executable, starting and stopping `opencode serve`, guided
// installation, and the opencode.json config files it reads.
package engine

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const executableName = "opencode"

// DoctorResult describes whether and where the opencode CLI was found
// and what it is capable of.
type DoctorResult struct {
	Found         bool     `json:"found"`
	InPath        bool     `json:"inPath"`
	ResolvedPath  string   `json:"resolvedPath,omitempty"`
	Version       string   `json:"version,omitempty"`
	SupportsServe bool     `json:"supportsServe"`
	Notes         []string `json:"notes"`
}

func candidatePaths() []string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".opencode", "bin", executableName))
	}
	// Homebrew, then common Linux locations.
	candidates = append(candidates,
		filepath.Join("/opt/homebrew/bin", executableName),
		filepath.Join("/usr/local/bin", executableName),
		filepath.Join("/usr/bin", executableName),
	)
	return candidates
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ResolveExecutable locates the opencode CLI. A non-empty override wins
// outright; otherwise PATH is searched first, then the usual install
// locations. The notes record every place that was checked.
func ResolveExecutable(override string) (path string, inPath bool, notes []string) {
	override = strings.TrimSpace(override)
	if override != "" {
		if isFile(override) {
			return override, false, []string{"Using configured command: " + override}
		}
		notes = append(notes, "Configured command missing: "+override)
	}

	if found, err := exec.LookPath(executableName); err == nil {
		notes = append(notes, "Found in PATH: "+found)
		return found, true, notes
	}
	notes = append(notes, "Not found on PATH")

	for _, candidate := range candidatePaths() {
		if isFile(candidate) {
			notes = append(notes, "Found at "+candidate)
			return candidate, false, notes
		}
		notes = append(notes, "Missing: "+candidate)
	}
	return "", false, notes
}

func executableVersion(ctx context.Context, program string) string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, program, "--version").CombinedOutput()
	if err != nil && len(out) == 0 {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func supportsServe(ctx context.Context, program string) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, program, "serve", "--help")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// Doctor probes the opencode installation.
func Doctor(ctx context.Context, override string) DoctorResult {
	path, inPath, notes := ResolveExecutable(override)
	result := DoctorResult{
		Found:        path != "",
		InPath:       inPath,
		ResolvedPath: path,
		Notes:        notes,
	}
	if path != "" {
		result.Version = executableVersion(ctx, path)
		result.SupportsServe = supportsServe(ctx, path)
	}
	return result
}
