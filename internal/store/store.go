/*
Package store keeps gob encoded values in a single sqlite table. The CLI uses
it to cache finished games between benchmark runs.
*/
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrBadName  = errors.New("bad name for store")
	ErrNotFound = errors.New("value not found")
)

type Store[T any] struct {
	mu   sync.Mutex
	name string
	db   *sql.DB
}

// Open opens (or creates) a sqlite database file.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db %s: %w", path, err)
	}
	return db, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', c == '_':
		default:
			return false
		}
	}
	return true
}

/*
New creates the table name if needed. name is spliced into queries, so it
may only contain Latin letters and underscores.
*/
func New[T any](ctx context.Context, db *sql.DB, name string) (*Store[T], error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrBadName, name)
	}

	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+name+` (
	key		TEXT PRIMARY KEY,
	value	BLOB NOT NULL
);`)
	if err != nil {
		return nil, err
	}
	return &Store[T]{name: name, db: db}, nil
}

// Get returns [ErrNotFound] if key is not present.
func (s *Store[T]) Get(ctx context.Context, key string) (value T, err error) {
	var v []byte
	err = s.db.QueryRowContext(
		ctx, `SELECT value FROM `+s.name+` WHERE key = ?;`, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return value, ErrNotFound
	} else if err != nil {
		return value, err
	}
	err = gob.NewDecoder(bytes.NewReader(v)).Decode(&value)
	return value, err
}

// Set inserts a new key-value pair or updates an existing one.
func (s *Store[T]) Set(ctx context.Context, key string, value T) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO `+s.name+` (key, value)
VALUES (?, ?)
ON CONFLICT(key)
DO UPDATE SET value=excluded.value;`,
		key, buf.Bytes())
	return err
}

// Delete does not report whether key existed.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.name+` WHERE key = ?;`, key)
	return err
}

func (s *Store[T]) Count(ctx context.Context) (n int, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+s.name+`;`).Scan(&n)
	return
}

// Keys returns all keys in ascending order.
func (s *Store[T]) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM `+s.name+` ORDER BY key;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
