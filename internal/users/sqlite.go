package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/golden-vcr/twitter-auth/internal/users/migrations"
)

// SQLiteStore implements user persistence over a single SQLite database
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if necessary) the SQLite database at path and applies the
// bundled migrations. Pass ":memory:" for a throwaway database.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite allows a single writer; serializing through one connection also keeps
	// in-memory databases alive for the lifetime of the store
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get loads a user and all of its parameters
func (s *SQLiteStore) Get(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT username, name, email, blocked, activation, created_at, updated_at
		FROM users
		WHERE username = ?`, username)

	var u User
	var createdAt, updatedAt int64
	if err := row.Scan(&u.Username, &u.Name, &u.Email, &u.Blocked, &u.Activation, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)

	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM user_params WHERE username = ?`, username)
	if err != nil {
		return nil, fmt.Errorf("get user params: %w", err)
	}
	defer rows.Close()
	u.Params = make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan user param: %w", err)
		}
		u.Params[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user params: %w", err)
	}
	return &u, nil
}

// Create registers a new user along with any parameters it carries, in a single
// transaction. Usernames and email addresses must both be unique.
func (s *SQLiteStore) Create(ctx context.Context, u User) error {
	if u.Username == "" || u.Email == "" {
		return fmt.Errorf("create user: username and email are required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := toMillis(s.now())
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (username, name, email, blocked, activation, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Name, u.Email, u.Blocked, u.Activation, now, now,
	); err != nil {
		switch {
		case isUniqueViolation(err, "users.username"):
			return ErrDuplicateUsername
		case isUniqueViolation(err, "users.email"):
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	if err := upsertParams(ctx, tx, u.Username, u.Params); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SetParams upserts the given parameters on an existing user, atomically
func (s *SQLiteStore) SetParams(ctx context.Context, username string, params map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := touch(ctx, tx, username, toMillis(s.now())); err != nil {
		return err
	}
	if err := upsertParams(ctx, tx, username, params); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func upsertParams(ctx context.Context, exec execContexter, username string, params map[string]string) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO user_params (username, name, value)
			VALUES (?, ?, ?)
			ON CONFLICT (username, name) DO UPDATE SET value = excluded.value`,
			username, name, params[name],
		); err != nil {
			return fmt.Errorf("set user param %s: %w", name, err)
		}
	}
	return nil
}

// SetBlocked blocks or unblocks a user
func (s *SQLiteStore) SetBlocked(ctx context.Context, username string, blocked bool) error {
	return s.update(ctx, `UPDATE users SET blocked = ?, updated_at = ? WHERE username = ?`, blocked, toMillis(s.now()), username)
}

// SetActivation sets the pending activation token for a user; an empty value marks the
// account as activated
func (s *SQLiteStore) SetActivation(ctx context.Context, username string, activation string) error {
	return s.update(ctx, `UPDATE users SET activation = ?, updated_at = ? WHERE username = ?`, activation, toMillis(s.now()), username)
}

func (s *SQLiteStore) update(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireOneRow(result)
}

type execContexter interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func touch(ctx context.Context, exec execContexter, username string, now int64) error {
	result, err := exec.ExecContext(ctx, `UPDATE users SET updated_at = ? WHERE username = ?`, now, username)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireOneRow(result)
}

func requireOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error, column string) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

// toMillis normalizes timestamps into millisecond precision for storage
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// applyMigrations executes each embedded .sql file, in name order, at most once
func applyMigrations(db *sql.DB, migrationFS fs.FS) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, file).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if count > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, file, toMillis(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}
