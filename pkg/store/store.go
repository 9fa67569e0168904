// Package store persists signed-in users.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Backend names a supported database
type Backend string

const (
	SQLite   Backend = "sqlite"
	Postgres Backend = "postgres"
	MySQL    Backend = "mysql"
)

// ParseBackend validates a backend name. Empty means SQLite.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	}
	return "", fmt.Errorf("unsupported store backend: %s. Must be sqlite, postgres, or mysql", s)
}

func (b Backend) driverName() string {
	switch b {
	case Postgres:
		return "pgx"
	case MySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

// ErrNotFound is returned when no user matches
var ErrNotFound = errors.New("user not found")

// TokenSealer encrypts access tokens before they are written
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// User is a GitHub account that signed in. AccessToken is held in plaintext
// in memory and sealed in the database.
type User struct {
	ID          int64
	GitHubID    int64
	Login       string
	Name        string
	Email       string
	ImageURL    string
	AccessToken string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store is a users table on one of the supported backends
type Store struct {
	db      *sql.DB
	backend Backend
	sealer  TokenSealer
	now     func() time.Time
}

// Open connects to the backend, verifies the connection and creates the schema
func Open(ctx context.Context, backend Backend, dsn string, sealer TokenSealer) (*Store, error) {
	if sealer == nil {
		return nil, errors.New("store requires a token sealer")
	}
	if dsn == "" {
		return nil, fmt.Errorf("missing connection string for %s store", backend)
	}

	db, err := sql.Open(backend.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", backend, err)
	}
	if backend == SQLite {
		// one connection avoids "database is locked" and keeps :memory: databases shared
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}

	if _, err := db.ExecContext(ctx, createTableQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	return &Store{db: db, backend: backend, sealer: sealer, now: time.Now}, nil
}

// Backend reports which database the store uses
func (s *Store) Backend() Backend {
	return s.backend
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertUser inserts the user, or updates profile and token when the GitHub ID exists.
// Returns the stored row.
func (s *Store) UpsertUser(ctx context.Context, u User) (*User, error) {
	if u.GitHubID == 0 {
		return nil, errors.New("user has no GitHub ID")
	}

	sealed, err := s.sealer.Seal(u.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to seal access token: %w", err)
	}

	now := s.now().Unix()
	_, err = s.db.ExecContext(ctx, s.upsertQuery(),
		u.GitHubID, u.Login, u.Name, nullable(u.Email), u.ImageURL, sealed, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save user %s: %w", u.Login, err)
	}

	return s.UserByGitHubID(ctx, u.GitHubID)
}

// UserByGitHubID looks up a user by GitHub account ID
func (s *Store) UserByGitHubID(ctx context.Context, githubID int64) (*User, error) {
	return s.queryUser(ctx, "github_id", githubID)
}

// UserByID looks up a user by store ID
func (s *Store) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.queryUser(ctx, "id", id)
}

func (s *Store) queryUser(ctx context.Context, column string, value int64) (*User, error) {
	query := fmt.Sprintf(`SELECT id, github_id, login, name, email, image_url, access_token, created_at, updated_at
		FROM users WHERE %s = %s`, column, s.placeholder(1))

	var (
		u                User
		email            sql.NullString
		sealed           string
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&u.ID, &u.GitHubID, &u.Login, &u.Name, &email, &u.ImageURL, &sealed, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	u.Email = email.String
	u.CreatedAt = time.Unix(created, 0)
	u.UpdatedAt = time.Unix(updated, 0)
	if u.AccessToken, err = s.sealer.Open(sealed); err != nil {
		return nil, fmt.Errorf("failed to unseal access token for user %d: %w", u.ID, err)
	}
	return &u, nil
}

// placeholder returns the n-th parameter placeholder for the backend
func (s *Store) placeholder(n int) string {
	if s.backend == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *Store) upsertQuery() string {
	switch s.backend {
	case MySQL:
		return `INSERT INTO users (github_id, login, name, email, image_url, access_token, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE login = new.login, name = new.name, email = new.email,
				image_url = new.image_url, access_token = new.access_token, updated_at = new.updated_at`

	case Postgres:
		return `INSERT INTO users (github_id, login, name, email, image_url, access_token, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (github_id) DO UPDATE SET login = EXCLUDED.login, name = EXCLUDED.name, email = EXCLUDED.email,
				image_url = EXCLUDED.image_url, access_token = EXCLUDED.access_token, updated_at = EXCLUDED.updated_at`

	default: // SQLite
		return `INSERT INTO users (github_id, login, name, email, image_url, access_token, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (github_id) DO UPDATE SET login = excluded.login, name = excluded.name, email = excluded.email,
				image_url = excluded.image_url, access_token = excluded.access_token, updated_at = excluded.updated_at`
	}
}

func createTableQuery(backend Backend) string {
	switch backend {
	case MySQL:
		return `
			CREATE TABLE IF NOT EXISTS users (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				github_id BIGINT NOT NULL UNIQUE,
				login VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NULL UNIQUE,
				image_url TEXT NOT NULL,
				access_token TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NOT NULL
			);`

	case Postgres:
		return `
			CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				github_id BIGINT NOT NULL UNIQUE,
				login TEXT NOT NULL,
				name TEXT NOT NULL,
				email TEXT UNIQUE,
				image_url TEXT NOT NULL,
				access_token TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NOT NULL
			);`

	default: // SQLite
		return `
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				github_id INTEGER NOT NULL UNIQUE,
				login TEXT NOT NULL,
				name TEXT NOT NULL,
				email TEXT UNIQUE,
				image_url TEXT NOT NULL,
				access_token TEXT NOT NULL,
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			);`
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
