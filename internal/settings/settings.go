// Package settings persists client preferences across runs: the default
// model, the last server base URL and project directory, and an audit log
// of permission decisions. Backed by SQLite in WAL mode.
package settings

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"openwork/internal/state"

	_ "modernc.org/sqlite"
)

const (
	keyDefaultProvider = "default_model_provider"
	keyDefaultModel    = "default_model_id"
	keyLastBaseURL     = "last_base_url"
	keyLastProjectDir  = "last_project_dir"
)

// Store is the on-disk preference store. Safe for concurrent use; SQLite
// serializes writers and busy_timeout absorbs contention.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the preference database at dbPath.
func Open(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("settings db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *Store) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS prefs (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS permission_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		permission TEXT NOT NULL,
		decision   TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_permission_log_session ON permission_log(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// --- Key/value preferences ---

func (s *Store) getPref(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM prefs WHERE key=?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read pref %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setPref(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write pref %s: %w", key, err)
	}
	return nil
}

// DefaultModel reports the persisted default model, or a zero ref when
// none was ever chosen. Read failures also yield the zero ref so callers
// fall through to the builtin default.
func (s *Store) DefaultModel() state.ModelRef {
	provider, err := s.getPref(keyDefaultProvider)
	if err != nil {
		return state.ModelRef{}
	}
	modelID, err := s.getPref(keyDefaultModel)
	if err != nil {
		return state.ModelRef{}
	}
	if provider == "" || modelID == "" {
		return state.ModelRef{}
	}
	return state.ModelRef{ProviderID: provider, ModelID: modelID}
}

// SetDefaultModel persists ref as the cross-session default.
func (s *Store) SetDefaultModel(ref state.ModelRef) error {
	if err := s.setPref(keyDefaultProvider, ref.ProviderID); err != nil {
		return err
	}
	return s.setPref(keyDefaultModel, ref.ModelID)
}

// LastBaseURL reports the most recently used server base URL.
func (s *Store) LastBaseURL() (string, error) {
	return s.getPref(keyLastBaseURL)
}

func (s *Store) SetLastBaseURL(url string) error {
	return s.setPref(keyLastBaseURL, strings.TrimSpace(url))
}

// LastProjectDir reports the most recently opened project directory.
func (s *Store) LastProjectDir() (string, error) {
	return s.getPref(keyLastProjectDir)
}

func (s *Store) SetLastProjectDir(dir string) error {
	return s.setPref(keyLastProjectDir, strings.TrimSpace(dir))
}

// --- Permission decision log ---

// PermissionDecision is one audited answer to a permission request.
type PermissionDecision struct {
	SessionID  string
	Permission string
	Decision   string
	CreatedAt  string
}

// LogPermissionDecision appends an entry to the audit log.
func (s *Store) LogPermissionDecision(sessionID, permission, decision string) error {
	_, err := s.db.Exec(`
		INSERT INTO permission_log (session_id, permission, decision, created_at)
		VALUES (?, ?, ?, ?)`,
		sessionID, permission, decision, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("log permission decision: %w", err)
	}
	return nil
}

// PermissionDecisions lists logged decisions for a session, oldest first.
func (s *Store) PermissionDecisions(sessionID string) ([]PermissionDecision, error) {
	rows, err := s.db.Query(`
		SELECT session_id, permission, decision, created_at
		FROM permission_log WHERE session_id=? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query permission log: %w", err)
	}
	defer rows.Close()

	var entries []PermissionDecision
	for rows.Next() {
		var entry PermissionDecision
		if err := rows.Scan(&entry.SessionID, &entry.Permission, &entry.Decision, &entry.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
