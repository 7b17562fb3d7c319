package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"komd/internal/common/fsutil"
	"komd/internal/registry"
	"komd/pkg/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	name     TEXT PRIMARY KEY,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tickets (
	ticket    TEXT PRIMARY KEY,
	user_name TEXT NOT NULL REFERENCES users(name),
	issued_at TEXT NOT NULL
);`

// SQLiteBackend is an Authenticator module backed by a SQLite file. Users
// may be seeded from the "users" parameter; issued tickets are recorded.
type SQLiteBackend struct {
	log zerolog.Logger

	mu        sync.Mutex
	db        *sql.DB
	closeOnce sync.Once
}

func NewSQLiteBackend(log zerolog.Logger) *SQLiteBackend {
	return &SQLiteBackend{log: log}
}

// Start opens params["path"] (":memory:" for a private in-memory database),
// applies the schema and upserts params["users"].
func (b *SQLiteBackend) Start(params map[string]string) error {
	path := types.Params(params).Get("path", "")
	if path == "" {
		return fmt.Errorf("missing required parameter %q", "path")
	}
	users, err := parseUsers(params["users"])
	if err != nil {
		return err
	}
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	fresh := true
	if path != ":memory:" {
		p, err := fsutil.PrepareFile(path)
		if err != nil {
			return err
		}
		fresh = !fsutil.PathExists(p)
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", p)
		path = p
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.init(ctx, db, users); err != nil {
		_ = db.Close()
		return err
	}
	if path != ":memory:" {
		if err := os.Chmod(path, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
			_ = db.Close()
			return fmt.Errorf("chmod db path: %w", err)
		}
	}
	b.mu.Lock()
	b.db = db
	b.mu.Unlock()
	b.log.Info().Str("path", path).Bool("created", fresh).Int("seeded_users", len(users)).Msg("sqlite backend ready")
	return nil
}

func (b *SQLiteBackend) init(ctx context.Context, db *sql.DB, users map[string]string) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	for name, pw := range users {
		if err := upsertUser(ctx, db, name, pw); err != nil {
			return err
		}
	}
	return nil
}

func upsertUser(ctx context.Context, db *sql.DB, name, password string) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO users(name, password) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET password=excluded.password`, name, password)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", name, err)
	}
	return nil
}

// Stop is a no-op; the database stays usable until Join so that
// in-flight exchanges can finish.
func (b *SQLiteBackend) Stop() {}

// Join closes the database.
func (b *SQLiteBackend) Join() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		db := b.db
		b.mu.Unlock()
		if db == nil {
			return
		}
		if err := db.Close(); err != nil {
			b.log.Warn().Err(err).Msg("close sqlite")
		}
	})
}

func (b *SQLiteBackend) handle() (*sql.DB, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil, errors.New("sqlite backend not started")
	}
	return b.db, nil
}

// SetUser adds or replaces a user.
func (b *SQLiteBackend) SetUser(ctx context.Context, name, password string) error {
	db, err := b.handle()
	if err != nil {
		return err
	}
	return upsertUser(ctx, db, name, password)
}

func (b *SQLiteBackend) Authenticate(ctx context.Context, user, password string) (Ticket, error) {
	db, err := b.handle()
	if err != nil {
		return "", err
	}
	var want string
	err = db.QueryRowContext(ctx, `SELECT password FROM users WHERE name = ?`, user).Scan(&want)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrAuthenticationFailed
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if !passwordsEqual(want, password) {
		return "", ErrAuthenticationFailed
	}
	t := Ticket(uuid.NewString())
	if _, err := db.ExecContext(ctx, `INSERT INTO tickets(ticket, user_name, issued_at) VALUES (?, ?, ?)`,
		string(t), user, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return "", fmt.Errorf("record ticket: %w", err)
	}
	return t, nil
}

// Validate returns the user a ticket was issued to, or ErrAuthenticationFailed.
func (b *SQLiteBackend) Validate(ctx context.Context, t Ticket) (string, error) {
	db, err := b.handle()
	if err != nil {
		return "", err
	}
	var user string
	err = db.QueryRowContext(ctx, `SELECT user_name FROM tickets WHERE ticket = ?`, string(t)).Scan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrAuthenticationFailed
	}
	if err != nil {
		return "", fmt.Errorf("lookup ticket: %w", err)
	}
	return user, nil
}

var (
	_ registry.Module = (*SQLiteBackend)(nil)
	_ Authenticator   = (*SQLiteBackend)(nil)
)
