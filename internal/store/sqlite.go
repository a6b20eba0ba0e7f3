package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using an embedded SQLite database.
// It uses modernc.org/sqlite which is pure Go (no CGO).
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes writes (SQLite is single-writer)
}

// NewSQLiteStore opens or creates the journal at dataDir/journal.db and runs
// schema migrations.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	dbPath := filepath.Join(dataDir, "journal.db")
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// Single connection for writes to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating sqlite: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conn_id TEXT NOT NULL,
			received_at DATETIME NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_received ON messages(received_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, conn_id, received_at, payload) VALUES (?, ?, ?, ?)`,
		msg.ID, msg.ConnID, msg.ReceivedAt.UTC(), msg.Payload)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conn_id, received_at, payload FROM messages
		 ORDER BY received_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConnID, &m.ReceivedAt, &m.Payload); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
