package engine

import (
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Info is a point-in-time snapshot of the managed server process.
type Info struct {
	Running    bool   `json:"running"`
	BaseURL    string `json:"baseUrl,omitempty"`
	ProjectDir string `json:"projectDir,omitempty"`
	Hostname   string `json:"hostname,omitempty"`
	Port       int    `json:"port,omitempty"`
	PID        int    `json:"pid,omitempty"`
}

// Manager owns at most one `opencode serve` child process.
type Manager struct {
	command string
	cors    []string

	mu         sync.Mutex
	cmd        *exec.Cmd
	done       chan struct{}
	projectDir string
	hostname   string
	port       int
	baseURL    string
}

// NewManager configures a manager. command optionally overrides
// executable discovery; cors lists origins passed to the server.
func NewManager(command string, cors []string) *Manager {
	return &Manager{command: command, cors: cors}
}

func freePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("bind ephemeral port: %w", err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

func (m *Manager) snapshotLocked() Info {
	running := false
	pid := 0
	if m.cmd != nil {
		select {
		case <-m.done:
			m.cmd = nil
		default:
			running = true
			pid = m.cmd.Process.Pid
		}
	}
	return Info{
		Running:    running,
		BaseURL:    m.baseURL,
		ProjectDir: m.projectDir,
		Hostname:   m.hostname,
		Port:       m.port,
		PID:        pid,
	}
}

func (m *Manager) stopLocked() {
	if m.cmd != nil {
		_ = m.cmd.Process.Kill()
		<-m.done
		m.cmd = nil
	}
	m.projectDir = ""
	m.hostname = ""
	m.port = 0
	m.baseURL = ""
}

// Info reports the current process state.
func (m *Manager) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Stop kills the managed process if one is running.
func (m *Manager) Stop() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	return m.snapshotLocked()
}

// Start launches `opencode serve` in projectDir on a free local port,
// stopping any previous instance first. The returned Info carries the
// base URL to probe.
func (m *Manager) Start(projectDir string) (Info, error) {
	projectDir = strings.TrimSpace(projectDir)
	if projectDir == "" {
		return Info{}, fmt.Errorf("project dir is required")
	}

	hostname := "127.0.0.1"
	port, err := freePort()
	if err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()

	program, _, notes := ResolveExecutable(m.command)
	if program == "" {
		return Info{}, fmt.Errorf(
			"opencode CLI not found; install with `npm install -g opencode-ai` or `curl -fsSL https://opencode.ai/install | bash`\n%s",
			strings.Join(notes, "\n"))
	}

	args := []string{"serve", "--hostname", hostname, "--port", strconv.Itoa(port)}
	for _, origin := range m.cors {
		args = append(args, "--cors", origin)
	}

	cmd := exec.Command(program, args...)
	cmd.Dir = projectDir
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return Info{}, fmt.Errorf("start opencode: %w", err)
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	m.cmd = cmd
	m.done = done
	m.projectDir = projectDir
	m.hostname = hostname
	m.port = port
	m.baseURL = fmt.Sprintf("http://%s:%d", hostname, port)
	return m.snapshotLocked(), nil
}
