// Package api is the REST facade over the agent execution server. It
// covers session CRUD, prompt submission, permissions, todos, the file
// API used for skill discovery, health, and the raw SSE subscription.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to one server at a fixed base URL.
type Client struct {
	baseURL string
	// httpClient carries the request timeout; streamClient must not,
	// the subscription body stays open for the connection's lifetime.
	httpClient   *http.Client
	streamClient *http.Client
}

type Options struct {
	TimeoutMS int
}

func NewClient(baseURL string, opts Options) *Client {
	timeout := time.Duration(opts.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s failed: status=%d body=%s",
			req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// --- sessions ---

func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	var sessions []SessionInfo
	if err := c.get(ctx, "/session", &sessions); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (c *Client) CreateSession(ctx context.Context, title string) (SessionInfo, error) {
	var session SessionInfo
	in := map[string]string{"title": strings.TrimSpace(title)}
	if err := c.post(ctx, "/session", in, &session); err != nil {
		return SessionInfo{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("session id is empty")
	}
	if err := c.delete(ctx, "/session/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// --- messages ---

func (c *Client) Messages(ctx context.Context, sessionID string) ([]MessageRecord, error) {
	var messages []MessageRecord
	path := "/session/" + url.PathEscape(sessionID) + "/message"
	if err := c.get(ctx, path, &messages); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	return messages, nil
}

// Prompt submits the next user turn. The server answers asynchronously
// through the event stream; only submission errors surface here.
func (c *Client) Prompt(ctx context.Context, sessionID string, req PromptRequest) error {
	path := "/session/" + url.PathEscape(sessionID) + "/message"
	if err := c.post(ctx, path, req, nil); err != nil {
		return fmt.Errorf("send prompt: %w", err)
	}
	return nil
}

// --- permissions ---

func (c *Client) ListPermissions(ctx context.Context) ([]PermissionInfo, error) {
	var perms []PermissionInfo
	if err := c.get(ctx, "/permission", &perms); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}

func (c *Client) ReplyPermission(ctx context.Context, id string, response PermissionResponse) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("permission id is empty")
	}
	in := map[string]string{"response": string(response)}
	if err := c.post(ctx, "/permission/"+url.PathEscape(id), in, nil); err != nil {
		return fmt.Errorf("reply permission: %w", err)
	}
	return nil
}

// --- todos ---

func (c *Client) Todos(ctx context.Context, sessionID string) ([]TodoInfo, error) {
	var todos []TodoInfo
	path := "/session/" + url.PathEscape(sessionID) + "/todo"
	if err := c.get(ctx, path, &todos); err != nil {
		return nil, fmt.Errorf("fetch todos: %w", err)
	}
	return todos, nil
}

// --- files (skill discovery) ---

func (c *Client) ListFiles(ctx context.Context, path string) ([]FileEntry, error) {
	var entries []FileEntry
	q := "/file?path=" + url.QueryEscape(path)
	if err := c.get(ctx, q, &entries); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return entries, nil
}

func (c *Client) ReadFile(ctx context.Context, path string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	q := "/file/content?path=" + url.QueryEscape(path)
	if err := c.get(ctx, q, &out); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return out.Content, nil
}

// --- health / events ---

func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	if err := c.get(ctx, "/global/health", &status); err != nil {
		return HealthStatus{}, fmt.Errorf("health check: %w", err)
	}
	return status, nil
}

// Subscribe opens the SSE event stream and hands back its body. The
// caller owns the body; closing it (or canceling ctx) ends the stream.
func (c *Client) Subscribe(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/event", nil)
	if err != nil {
		return nil, fmt.Errorf("create subscribe request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("subscribe failed: status=%d body=%s",
			resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return resp.Body, nil
}
