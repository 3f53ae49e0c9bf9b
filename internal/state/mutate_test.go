package state

import (
	"testing"
	"time"
)

func TestUpsertSessionLastWriteWinsPerID(t *testing.T) {
	var sessions []Session
	sessions = UpsertSession(sessions, Session{ID: "s1", Title: "first"})
	sessions = UpsertSession(sessions, Session{ID: "s2", Title: "other"})
	sessions = UpsertSession(sessions, Session{ID: "s1", Title: "second"})
	sessions = UpsertSession(sessions, Session{ID: "s1", Title: "final", Status: StatusRunning})

	if len(sessions) != 2 {
		t.Fatalf("unexpected session count: %d", len(sessions))
	}
	if sessions[0].ID != "s1" || sessions[0].Title != "final" || sessions[0].Status != StatusRunning {
		t.Fatalf("s1 not last event payload: %+v", sessions[0])
	}
	if sessions[1].ID != "s2" || sessions[1].Title != "other" {
		t.Fatalf("s2 affected by s1 events: %+v", sessions[1])
	}
}

func TestUpsertSessionKeepsOrder(t *testing.T) {
	var sessions []Session
	for _, id := range []string{"a", "b", "c"} {
		sessions = UpsertSession(sessions, Session{ID: id})
	}
	sessions = UpsertSession(sessions, Session{ID: "b", Title: "updated"})
	got := []string{sessions[0].ID, sessions[1].ID, sessions[2].ID}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order changed: %v", got)
		}
	}
}

func TestUpsertMessagePreservesParts(t *testing.T) {
	messages := UpsertMessage(nil, MessageInfo{ID: "m1", SessionID: "s1", Role: "user"})
	messages = UpsertPart(messages, Part{ID: "p1", MessageID: "m1", Type: "text", Text: "hi"})

	messages = UpsertMessage(messages, MessageInfo{ID: "m1", SessionID: "s1", Role: "user", Model: &ModelRef{ProviderID: "openai", ModelID: "gpt-5"}})
	if len(messages) != 1 {
		t.Fatalf("unexpected message count: %d", len(messages))
	}
	if len(messages[0].Parts) != 1 || messages[0].Parts[0].ID != "p1" {
		t.Fatalf("parts lost on info replace: %+v", messages[0].Parts)
	}
	if messages[0].Info.Model == nil || messages[0].Info.Model.ModelID != "gpt-5" {
		t.Fatalf("info not replaced: %+v", messages[0].Info)
	}
}

func TestUpsertPartBeforeMessageIsNoOp(t *testing.T) {
	part := Part{ID: "p1", MessageID: "m1", Type: "text", Text: "hi"}

	messages := UpsertPart(nil, part)
	if len(messages) != 0 {
		t.Fatalf("orphan part must be dropped, got %d messages", len(messages))
	}

	messages = UpsertMessage(messages, MessageInfo{ID: "m1", SessionID: "s1", Role: "user"})
	messages = UpsertPart(messages, part)
	if len(messages) != 1 || len(messages[0].Parts) != 1 {
		t.Fatalf("expected exactly one part after message arrived: %+v", messages)
	}
	if messages[0].Parts[0].Text != "hi" {
		t.Fatalf("unexpected part payload: %+v", messages[0].Parts[0])
	}
}

func TestUpsertPartReplacesInPlace(t *testing.T) {
	messages := UpsertMessage(nil, MessageInfo{ID: "m1"})
	messages = UpsertPart(messages, Part{ID: "p1", MessageID: "m1", Type: "text", Text: "a"})
	messages = UpsertPart(messages, Part{ID: "p2", MessageID: "m1", Type: "text", Text: "b"})
	messages = UpsertPart(messages, Part{ID: "p1", MessageID: "m1", Type: "text", Text: "a2"})

	parts := messages[0].Parts
	if len(parts) != 2 {
		t.Fatalf("unexpected part count: %d", len(parts))
	}
	if parts[0].ID != "p1" || parts[0].Text != "a2" {
		t.Fatalf("replace did not keep position: %+v", parts)
	}
	if parts[1].ID != "p2" {
		t.Fatalf("append order broken: %+v", parts)
	}
}

func TestUpsertPartDoesNotMutateInput(t *testing.T) {
	original := UpsertMessage(nil, MessageInfo{ID: "m1"})
	original = UpsertPart(original, Part{ID: "p1", MessageID: "m1", Text: "a"})

	_ = UpsertPart(original, Part{ID: "p1", MessageID: "m1", Text: "changed"})
	if original[0].Parts[0].Text != "a" {
		t.Fatalf("input slice mutated: %+v", original[0].Parts)
	}
}

func TestRemovePartIdempotent(t *testing.T) {
	messages := UpsertMessage(nil, MessageInfo{ID: "m1"})
	messages = UpsertPart(messages, Part{ID: "p1", MessageID: "m1"})

	once := RemovePart(messages, "m1", "p1")
	twice := RemovePart(once, "m1", "p1")

	if len(once[0].Parts) != 0 {
		t.Fatalf("part not removed: %+v", once[0].Parts)
	}
	if len(twice[0].Parts) != len(once[0].Parts) {
		t.Fatalf("second remove changed state")
	}

	// missing message is also a no-op
	if got := RemovePart(messages, "nope", "p1"); len(got[0].Parts) != 1 {
		t.Fatalf("remove on missing message altered state: %+v", got)
	}
}

func TestMergePermissionsKeepsFirstSeen(t *testing.T) {
	prev := []PermissionRequest{
		{ID: "perm1", ReceivedAt: time.UnixMilli(1000)},
	}
	next := []PermissionRequest{
		{ID: "perm1", Permission: "bash"},
		{ID: "perm2", Permission: "edit"},
	}

	now := time.UnixMilli(5000)
	merged := MergePermissions(prev, next, now)

	if len(merged) != 2 {
		t.Fatalf("unexpected count: %d", len(merged))
	}
	if !merged[0].ReceivedAt.Equal(time.UnixMilli(1000)) {
		t.Fatalf("perm1 first-seen time lost: %v", merged[0].ReceivedAt)
	}
	if merged[0].Permission != "bash" {
		t.Fatalf("perm1 payload not refreshed: %+v", merged[0])
	}
	if !merged[1].ReceivedAt.Equal(now) {
		t.Fatalf("perm2 should be stamped now: %v", merged[1].ReceivedAt)
	}
}

func TestStatusFromWire(t *testing.T) {
	cases := map[string]SessionStatus{
		"busy":    StatusRunning,
		"retry":   StatusRetry,
		"idle":    StatusIdle,
		"":        StatusIdle,
		"unknown": StatusIdle,
	}
	for in, want := range cases {
		if got := StatusFromWire(in); got != want {
			t.Fatalf("StatusFromWire(%q) = %q, want %q", in, got, want)
		}
	}
}
