package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/ports"

	_ "modernc.org/sqlite"
)

const createProgressTable = `
CREATE TABLE IF NOT EXISTS progress (
    session_id TEXT PRIMARY KEY,
    completed  TEXT NOT NULL,
    updated_at DATETIME NOT NULL
)`

var _ ports.ProgressStore = (*Store)(nil)

// Store implements ports.ProgressStore using SQLite.
// Completed exercise names are kept as a JSON array per session row.
type Store struct {
	db *sql.DB
}

// New opens the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createProgressTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create progress table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the progress row of a session.
func (s *Store) Save(ctx context.Context, sessionID string, progress *domain.Progress) error {
	completed := progress.Completed
	if completed == nil {
		completed = []string{}
	}
	data, err := json.Marshal(completed)
	if err != nil {
		return fmt.Errorf("marshal completed: %w", err)
	}

	updatedAt := progress.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO progress (session_id, completed, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET completed = excluded.completed, updated_at = excluded.updated_at`,
		sessionID, string(data), updatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Load retrieves the progress of a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	var (
		raw       string
		updatedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT completed, updated_at FROM progress WHERE session_id = ?`, sessionID,
	).Scan(&raw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	progress := &domain.Progress{SessionID: sessionID, Completed: []string{}, UpdatedAt: updatedAt}
	if err := json.Unmarshal([]byte(raw), &progress.Completed); err != nil {
		return nil, fmt.Errorf("unmarshal completed: %w", err)
	}
	return progress, nil
}

// Delete removes the progress row of a session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

// List returns every stored session ID ordered by most recent activity.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM progress ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}
