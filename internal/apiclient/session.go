package apiclient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/types"

	_ "modernc.org/sqlite"
)

// SessionData is the persisted login state.
type SessionData struct {
	Token   string    `json:"token"`
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	SavedAt time.Time `json:"saved_at"`
}

// SessionStore persists a single session. Load returns nil, nil when no
// session is stored.
type SessionStore interface {
	Load(ctx context.Context) (*SessionData, error)
	Save(ctx context.Context, data *SessionData) error
	Clear(ctx context.Context) error
}

// Session is the only reader and writer of the session store.
type Session struct {
	store SessionStore
	now   func() time.Time

	mu      sync.Mutex
	current *SessionData
	loaded  bool
}

// NewSession wraps store.
func NewSession(store SessionStore) *Session {
	return &Session{store: store, now: time.Now}
}

// Current returns the active session, loading it on first use.
func (s *Session) Current(ctx context.Context) (*SessionData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		data, err := s.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		s.current, s.loaded = data, true
	}
	if s.current == nil {
		return nil, nil
	}
	cp := *s.current
	return &cp, nil
}

// Token returns the stored bearer token or ErrNotLoggedIn.
func (s *Session) Token(ctx context.Context) (string, error) {
	data, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	if data == nil || data.Token == "" {
		return "", ErrNotLoggedIn
	}
	return data.Token, nil
}

// Set stores the session from a login response.
func (s *Session) Set(ctx context.Context, resp *types.LoginResponse) error {
	if resp == nil || resp.User == nil || resp.Token == "" {
		return errors.New("login response has no user or token")
	}
	data := &SessionData{
		Token:   resp.Token,
		UserID:  resp.User.ID,
		Email:   resp.User.Email,
		Role:    resp.User.Role,
		SavedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.current, s.loaded = data, true
	return nil
}

// Clear forgets the session.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.current, s.loaded = nil, true
	return nil
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data *SessionData
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (*SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	cp := *m.data
	return &cp, nil
}

func (m *MemoryStore) Save(_ context.Context, data *SessionData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *data
	m.data = &cp
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

// SQLiteStore keeps the session in a single-row SQLite table so it survives
// across CLI invocations.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates the session database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		token TEXT NOT NULL,
		user_id TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		saved_at DATETIME NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (*SessionData, error) {
	var (
		data    SessionData
		userID  string
		savedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, email, role, saved_at FROM session WHERE id = 1`,
	).Scan(&data.Token, &userID, &data.Email, &data.Role, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if data.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("parse session user: %w", err)
	}
	if data.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return nil, fmt.Errorf("parse session time: %w", err)
	}
	return &data, nil
}

func (s *SQLiteStore) Save(ctx context.Context, data *SessionData) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (id, token, user_id, email, role, saved_at)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   token = excluded.token, user_id = excluded.user_id, email = excluded.email,
		   role = excluded.role, saved_at = excluded.saved_at`,
		data.Token, data.UserID.String(), data.Email, data.Role, data.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
