package state

import "time"

// The mutation primitives below are pure: they never modify their inputs
// and return fresh slices. The reconciliation loop is the only writer, so
// no locking is needed around them; Store serializes access for readers.

// UpsertSession replaces the entry matching next.ID or appends it.
// Existing entries keep their positions.
func UpsertSession(sessions []Session, next Session) []Session {
	out := make([]Session, 0, len(sessions)+1)
	replaced := false
	for _, s := range sessions {
		if s.ID == next.ID {
			out = append(out, next)
			replaced = true
			continue
		}
		out = append(out, s)
	}
	if !replaced {
		out = append(out, next)
	}
	return out
}

// RemoveSession drops the session with the given id; no-op if absent.
func RemoveSession(sessions []Session, id string) []Session {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s.ID == id {
			continue
		}
		out = append(out, s)
	}
	return out
}

// UpsertMessage replaces the info of an existing message, preserving its
// part list, or appends a new message with no parts.
func UpsertMessage(messages []Message, info MessageInfo) []Message {
	out := make([]Message, 0, len(messages)+1)
	replaced := false
	for _, m := range messages {
		if m.Info.ID == info.ID {
			out = append(out, Message{Info: info, Parts: m.Parts})
			replaced = true
			continue
		}
		out = append(out, m)
	}
	if !replaced {
		out = append(out, Message{Info: info})
	}
	return out
}

// UpsertPart attaches a part to the message it references: replace on a
// matching part id, append otherwise. A part whose message is not present
// leaves the collection unchanged — the part/message arrival race is
// tolerated, not an error.
func UpsertPart(messages []Message, part Part) []Message {
	idx := -1
	for i, m := range messages {
		if m.Info.ID == part.MessageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return messages
	}

	out := make([]Message, len(messages))
	copy(out, messages)

	target := messages[idx]
	parts := make([]Part, 0, len(target.Parts)+1)
	replaced := false
	for _, p := range target.Parts {
		if p.ID == part.ID {
			parts = append(parts, part)
			replaced = true
			continue
		}
		parts = append(parts, p)
	}
	if !replaced {
		parts = append(parts, part)
	}
	out[idx] = Message{Info: target.Info, Parts: parts}
	return out
}

// RemovePart removes partID from messageID. Idempotent: a missing message
// or part is a no-op.
func RemovePart(messages []Message, messageID, partID string) []Message {
	idx := -1
	for i, m := range messages {
		if m.Info.ID == messageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return messages
	}

	target := messages[idx]
	parts := make([]Part, 0, len(target.Parts))
	for _, p := range target.Parts {
		if p.ID == partID {
			continue
		}
		parts = append(parts, p)
	}

	out := make([]Message, len(messages))
	copy(out, messages)
	out[idx] = Message{Info: target.Info, Parts: parts}
	return out
}

// MergePermissions reconciles the authoritative server list against the
// previously held one. Each entry keeps the ReceivedAt of its previous
// incarnation when the id was already known, else is stamped with now.
// The server order is taken as-is; only the first-seen time is client-side.
func MergePermissions(prev, next []PermissionRequest, now time.Time) []PermissionRequest {
	seen := make(map[string]time.Time, len(prev))
	for _, p := range prev {
		seen[p.ID] = p.ReceivedAt
	}

	out := make([]PermissionRequest, 0, len(next))
	for _, p := range next {
		if at, ok := seen[p.ID]; ok {
			p.ReceivedAt = at
		} else {
			p.ReceivedAt = now
		}
		out = append(out, p)
	}
	return out
}
