package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hupe1980/patternmon/kv"
)

var bucketName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// Store implements kv.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. Use ":memory:" for a
// throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func quote(name string) (string, error) {
	if !bucketName.MatchString(name) {
		return "", &kv.OtherError{Op: "open", Err: fmt.Errorf("invalid bucket name %q", name)}
	}
	return `"` + name + `"`, nil
}

// CreateBucket creates the table backing the named bucket if needed.
func (s *Store) CreateBucket(ctx context.Context, name string) error {
	table, err := quote(name)
	if err != nil {
		return err
	}
	schema := `CREATE TABLE IF NOT EXISTS ` + table + ` (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	_, err = s.db.ExecContext(ctx, schema)
	return classify("create bucket", err)
}

// Open returns the named bucket. The table must exist.
func (s *Store) Open(ctx context.Context, name string) (kv.Bucket, error) {
	table, err := quote(name)
	if err != nil {
		return nil, err
	}
	var found string
	err = s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNoSuchStore
	}
	if err != nil {
		return nil, classify("open", err)
	}
	return &bucket{db: s.db, table: table}, nil
}

type bucket struct {
	db    *sql.DB
	table string
}

func (b *bucket) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM `+b.table+` WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, classify("get", err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (b *bucket) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	query := `INSERT INTO ` + b.table + ` (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := b.db.ExecContext(ctx, query, key, value)
	return classify("set", err)
}

func (b *bucket) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM `+b.table+` WHERE key = ?`, key)
	return classify("delete", err)
}

func (b *bucket) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := b.db.QueryRowContext(ctx, `SELECT 1 FROM `+b.table+` WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify("exists", err)
	}
	return true, nil
}

func (b *bucket) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	// substr avoids LIKE wildcards in user keys.
	rows, err := b.db.QueryContext(ctx,
		`SELECT key FROM `+b.table+` WHERE substr(key, 1, length(?)) = ? ORDER BY key`, prefix, prefix)
	if err != nil {
		return nil, classify("list", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, classify("list", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list", err)
	}
	return keys, nil
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
			return fmt.Errorf("%w: %s: %w", kv.ErrAccessDenied, op, err)
		}
	}
	if strings.Contains(err.Error(), "no such table") {
		return kv.ErrNoSuchStore
	}
	return kv.Other(op, err)
}
