package state

import (
	"sync"
	"time"
)

// Store is the synchronized local view of the remote server: sessions,
// the selected session's transcript, its todo snapshot, and pending
// permission requests. All mutations funnel through the pure primitives
// in mutate.go; the lock only serializes writers against UI readers.
type Store struct {
	mu sync.RWMutex

	sessions    []Session
	selectedID  string
	messages    []Message
	todos       []TodoItem
	permissions []PermissionRequest
	live        bool

	now func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// --- snapshots ---

func (s *Store) Sessions() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Session(nil), s.sessions...)
}

func (s *Store) Session(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return Session{}, false
}

func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.messages...)
}

func (s *Store) Todos() []TodoItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]TodoItem(nil), s.todos...)
}

func (s *Store) Permissions() []PermissionRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PermissionRequest(nil), s.permissions...)
}

func (s *Store) Live() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// --- mutations ---

func (s *Store) SetLive(live bool) {
	s.mu.Lock()
	s.live = live
	s.mu.Unlock()
}

// Select switches the active session and clears the per-session slices;
// the reconciler refills them from fresh fetches.
func (s *Store) Select(id string) {
	s.mu.Lock()
	s.selectedID = id
	s.messages = nil
	s.todos = nil
	s.mu.Unlock()
}

func (s *Store) ApplySession(next Session) {
	s.mu.Lock()
	s.sessions = UpsertSession(s.sessions, next)
	s.mu.Unlock()
}

func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	s.sessions = RemoveSession(s.sessions, id)
	if s.selectedID == id {
		s.selectedID = ""
		s.messages = nil
		s.todos = nil
	}
	s.mu.Unlock()
}

func (s *Store) ReplaceSessions(sessions []Session) {
	s.mu.Lock()
	s.sessions = append([]Session(nil), sessions...)
	s.mu.Unlock()
}

// ApplyMessage materializes a message into the transcript only when it
// belongs to the selected session. Events for background sessions update
// session metadata elsewhere; their transcripts are fetched on selection.
func (s *Store) ApplyMessage(info MessageInfo) {
	s.mu.Lock()
	if info.SessionID == s.selectedID {
		s.messages = UpsertMessage(s.messages, info)
	}
	s.mu.Unlock()
}

func (s *Store) ApplyPart(part Part) {
	s.mu.Lock()
	s.messages = UpsertPart(s.messages, part)
	s.mu.Unlock()
}

func (s *Store) DeletePart(messageID, partID string) {
	s.mu.Lock()
	s.messages = RemovePart(s.messages, messageID, partID)
	s.mu.Unlock()
}

// ReplaceMessages installs a freshly fetched transcript. The fetch is
// tagged with the session it was issued for; a result arriving after the
// user has moved on is discarded so a slow fetch cannot clobber the newly
// selected session's state.
func (s *Store) ReplaceMessages(sessionID string, messages []Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID != s.selectedID {
		return false
	}
	s.messages = append([]Message(nil), messages...)
	return true
}

// ReplaceTodos installs a todo snapshot, same tagging rule as transcripts.
func (s *Store) ReplaceTodos(sessionID string, todos []TodoItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID != s.selectedID {
		return false
	}
	s.todos = append([]TodoItem(nil), todos...)
	return true
}

// ReplacePermissions reconciles the authoritative permission list with the
// stable first-seen merge.
func (s *Store) ReplacePermissions(next []PermissionRequest) {
	s.mu.Lock()
	s.permissions = MergePermissions(s.permissions, next, s.now())
	s.mu.Unlock()
}
