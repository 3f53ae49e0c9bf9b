package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecResult captures the outcome of a spawned helper command.
type ExecResult struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// runCapture runs cmd and captures its output. A missing executable is
// reported as found=false rather than an error so callers can fall back.
func runCapture(cmd *exec.Cmd) (ExecResult, bool, error) {
	var stdout, stderr strings.Builder
	cmd.Stdin = nil
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			return ExecResult{
				OK:     false,
				Status: exitErr.ExitCode(),
				Stdout: stdout.String(),
				Stderr: stderr.String(),
			}, true, nil
		case errors.Is(err, exec.ErrNotFound):
			return ExecResult{}, false, nil
		default:
			return ExecResult{}, false, fmt.Errorf("run %s: %w", cmd.Path, err)
		}
	}
	return ExecResult{OK: true, Status: 0, Stdout: stdout.String(), Stderr: stderr.String()}, true, nil
}

// Install runs the guided installer, placing the binary under
// ~/.opencode/bin.
func Install(ctx context.Context) (ExecResult, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	installDir := filepath.Join(home, ".opencode", "bin")

	cmd := exec.CommandContext(ctx, "bash", "-lc", "curl -fsSL https://opencode.ai/install | bash")
	cmd.Env = append(os.Environ(), "OPENCODE_INSTALL_DIR="+installDir)

	result, found, err := runCapture(cmd)
	if err != nil {
		return ExecResult{}, err
	}
	if !found {
		return ExecResult{}, fmt.Errorf("bash not available for guided install")
	}
	return result, nil
}

// OpkgInstall installs a package into projectDir, trying the opkg CLI
// first and falling back to openpackage, pnpm dlx, and npx.
func OpkgInstall(ctx context.Context, projectDir, pkg string) (ExecResult, error) {
	projectDir = strings.TrimSpace(projectDir)
	if projectDir == "" {
		return ExecResult{}, fmt.Errorf("project dir is required")
	}
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return ExecResult{}, fmt.Errorf("package is required")
	}

	attempts := [][]string{
		{"opkg", "install", pkg},
		{"openpackage", "install", pkg},
		{"pnpm", "dlx", "opkg", "install", pkg},
		{"npx", "opkg", "install", pkg},
	}
	for _, argv := range attempts {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Dir = projectDir
		result, found, err := runCapture(cmd)
		if err != nil {
			return ExecResult{}, err
		}
		if found {
			return result, nil
		}
	}

	return ExecResult{
		OK:     false,
		Status: -1,
		Stderr: "OpenPackage CLI not found. Install with `npm install -g opkg` (or `openpackage`), or ensure pnpm/npx is available.",
	}, nil
}
