package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"openwork/internal/state"
)

func TestClientSessionsAndMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /session":
			json.NewEncoder(w).Encode([]SessionInfo{
				{ID: "s1", Title: "First", Status: "busy"},
				{ID: "s2", Title: "Second", Status: "idle"},
			})
		case "POST /session":
			var in map[string]string
			json.NewDecoder(r.Body).Decode(&in)
			json.NewEncoder(w).Encode(SessionInfo{ID: "s3", Title: in["title"]})
		case "GET /session/s1/message":
			json.NewEncoder(w).Encode([]MessageRecord{
				{
					Info: MessageInfo{ID: "m1", SessionID: "s1", Role: "user"},
					Parts: []PartInfo{
						{ID: "p1", MessageID: "m1", Type: "text", Text: "hi"},
						{ID: "p2", MessageID: "m1", Type: "tool", Tool: "bash",
							State: json.RawMessage(`{"status":"completed","output":"ok"}`)},
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Options{})
	ctx := context.Background()

	sessions, err := c.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("unexpected session count: %d", len(sessions))
	}
	if sessions[0].ToState().Status != state.StatusRunning {
		t.Fatalf("busy must map to running: %+v", sessions[0])
	}

	created, err := c.CreateSession(ctx, "New task")
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != "s3" || created.Title != "New task" {
		t.Fatalf("unexpected created session: %+v", created)
	}

	records, err := c.Messages(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	messages := MessagesToState(records)
	if len(messages) != 1 || len(messages[0].Parts) != 2 {
		t.Fatalf("unexpected transcript: %+v", messages)
	}
	tool := messages[0].Parts[1].Tool
	if tool == nil || tool.Name != "bash" || tool.Status != "completed" || tool.Output != "ok" {
		t.Fatalf("tool state not decoded: %+v", tool)
	}
}

func TestClientPromptAndPermissionReply(t *testing.T) {
	var gotPrompt PromptRequest
	var gotReply map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /session/s1/message":
			json.NewDecoder(r.Body).Decode(&gotPrompt)
			w.WriteHeader(http.StatusCreated)
		case "POST /permission/perm1":
			json.NewDecoder(r.Body).Decode(&gotReply)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Options{})
	ctx := context.Background()

	req := PromptRequest{
		MessageID: "m9",
		Model:     &state.ModelRef{ProviderID: "openai", ModelID: "gpt-5"},
		Parts:     []PromptPart{{ID: "p9", Type: "text", Text: "do it"}},
	}
	if err := c.Prompt(ctx, "s1", req); err != nil {
		t.Fatal(err)
	}
	if gotPrompt.MessageID != "m9" || gotPrompt.Model.ModelID != "gpt-5" {
		t.Fatalf("prompt body mismatch: %+v", gotPrompt)
	}

	if err := c.ReplyPermission(ctx, "perm1", PermissionAlways); err != nil {
		t.Fatal(err)
	}
	if gotReply["response"] != "always" {
		t.Fatalf("reply body mismatch: %+v", gotReply)
	}
}

func TestClientErrorIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session busy", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Options{})
	err := c.Prompt(context.Background(), "s1", PromptRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "session busy") {
		t.Fatalf("error missing server body: %v", err)
	}
}

func TestClientSubscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/event" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"type\":\"session.updated\",\"properties\":{}}\n\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Options{TimeoutMS: 50})
	body, err := c.Subscribe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()

	buf := make([]byte, 16)
	if _, err := body.Read(buf); err != nil {
		t.Fatalf("stream read failed: %v", err)
	}
}
