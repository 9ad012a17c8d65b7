// Package sqlite implements store.RoomStore on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	position INTEGER NOT NULL,
	name     TEXT NOT NULL PRIMARY KEY
);
`

// SQLiteStore persists room names in a single-file SQLite database.
type SQLiteStore struct {
	db       *sql.DB
	defaults []string
}

// New opens (or creates) the database at dbPath and applies the schema.
// defaults is the room set returned when no snapshot exists.
func New(dbPath string, defaults []string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db, defaults: defaults}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRoomNames replaces the snapshot with the given names, keeping order.
func (s *SQLiteStore) SaveRoomNames(ctx context.Context, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms`); err != nil {
		return fmt.Errorf("clear rooms: %w", err)
	}
	for i, name := range names {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rooms (position, name) VALUES (?, ?)`, i, name); err != nil {
			return fmt.Errorf("insert room %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRoomNames returns the saved snapshot in insertion order, or the
// defaults when the snapshot is empty or unreadable.
func (s *SQLiteStore) LoadRoomNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM rooms ORDER BY position`)
	if err != nil {
		return s.defaultNames(), fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return s.defaultNames(), fmt.Errorf("scan room: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return s.defaultNames(), fmt.Errorf("iterate rooms: %w", err)
	}
	if len(names) == 0 {
		return s.defaultNames(), nil
	}
	return names, nil
}

func (s *SQLiteStore) defaultNames() []string {
	names := make([]string, len(s.defaults))
	copy(names, s.defaults)
	return names
}
