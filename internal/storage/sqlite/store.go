// Package sqlite is the default, file-backed user store. It needs no server
// process, which makes it the zero-configuration choice for local runs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hongminglow/auth-examples/internal/models"
	"github.com/hongminglow/auth-examples/internal/storage"
	"github.com/hongminglow/auth-examples/internal/storage/migrations"
)

var _ storage.Backend = (*Store)(nil)

const memoryPath = ":memory:"

// Store provides SQLite-backed persistence for users.
type Store struct {
	db *sql.DB
}

// NewUserStore opens the database described by a sqlite:// URL and runs
// migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	path, err := PathFromURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serialises writers and keeps an in-memory
	// database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to sqlite database: %w", err)
	}
	if err := migrations.Up(ctx, db, migrations.SQLite); err != nil {
		db.Close()
		return nil, err
	}
	return newStore(db), nil
}

func newStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// PathFromURL converts a sqlite:// database URL into a file path.
// sqlite:///users.db is relative, sqlite:////var/lib/users.db is absolute,
// and sqlite:// or sqlite:///:memory: is an in-memory database.
func PathFromURL(databaseURL string) (string, error) {
	rest, ok := strings.CutPrefix(databaseURL, "sqlite://")
	if !ok {
		return "", fmt.Errorf("not a sqlite url: %q", databaseURL)
	}
	if rest == "" {
		return memoryPath, nil
	}
	path, ok := strings.CutPrefix(rest, "/")
	if !ok || path == "" {
		return "", fmt.Errorf("sqlite url %q has no database path", databaseURL)
	}
	return path, nil
}

func dsn(path string) string {
	if path == memoryPath {
		return memoryPath
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Close releases database resources.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// CreateUser inserts a new user row; the UNIQUE columns reject duplicates
// atomically.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (username, email, password_hash, created_at)
	VALUES (?, ?, NULLIF(?, ''), ?)
	RETURNING id;
	`
	createdAt := time.Now().UTC().Truncate(time.Second)
	err := s.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash, createdAt.Unix()).Scan(&user.ID)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return models.User{}, conflict
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	user.CreatedAt = createdAt
	return user, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
	SELECT id, username, email, COALESCE(password_hash, ''), created_at
	FROM users
	WHERE email = ?;
	`
	var (
		user      models.User
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user by email: %w", err)
	}
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	return user, nil
}

// conflictError maps a UNIQUE violation to the matching storage error, or
// returns nil for any other error.
func conflictError(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return nil
	}
	if strings.Contains(sqliteErr.Error(), "users.username") {
		return storage.ErrUsernameTaken
	}
	return storage.ErrEmailTaken
}
