// Package sqlite provides a SQLite-backed session store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hearthglen/chronicler/internal/chronicle"
	"github.com/hearthglen/chronicler/internal/storage"
	"github.com/hearthglen/chronicler/internal/storage/sqlite/migrations"
)

// Store persists session documents in a single SQLite database.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) a session store at the provided path and
// applies embedded migrations.
func Open(path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite serializes writes; one connection avoids SQLITE_BUSY
	// under the single-writer usage pattern.
	sqlDB.SetMaxOpenConns(1)

	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database. Nil-safe so callers can defer it
// in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// SaveSession upserts the session's serialized document.
func (s *Store) SaveSession(ctx context.Context, session *chronicle.Session) error {
	raw, err := chronicle.MarshalSession(session)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO sessions (id, created_at, updated_at, document)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at, document = excluded.document`,
		session.ID, toMillis(session.CreatedAt), toMillis(time.Now()), raw)
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// LoadSession recalls a session document by id, or storage.ErrNotFound.
func (s *Store) LoadSession(ctx context.Context, id string) (*chronicle.Session, error) {
	var raw []byte
	row := s.sqlDB.QueryRowContext(ctx, "SELECT document FROM sessions WHERE id = ?", id)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return chronicle.UnmarshalSession(raw)
}

// ListSessionIDs returns stored session ids in ascending order.
func (s *Store) ListSessionIDs(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT id FROM sessions ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return ids, nil
}
