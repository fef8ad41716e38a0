package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/keido/slouchd/internal/domain/model"
	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

const schema = `
	CREATE TABLE IF NOT EXISTS episodes (
		id          TEXT PRIMARY KEY,
		started_at  TIMESTAMP NOT NULL,
		ended_at    TIMESTAMP,
		peak_delta  DOUBLE NOT NULL DEFAULT 0,
		ticks       BIGINT NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_episodes_started_at ON episodes(started_at);
`

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the episode database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	return &SQLiteStore{db: db}, nil
}

// NewWithDB wraps an existing database handle. The schema is assumed to be in
// place; tests use this with a mock connection.
func NewWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Begin inserts a newly opened episode.
func (s *SQLiteStore) Begin(ctx context.Context, ep model.Episode) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO episodes (id, started_at) VALUES (?, ?)`,
		ep.ID, ep.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: begin episode %s: %w", ErrQuery, ep.ID, err)
	}
	return nil
}

// Finish closes an episode with its final stats.
func (s *SQLiteStore) Finish(ctx context.Context, id string, endedAt time.Time, peakDelta float64, ticks int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE episodes SET ended_at = ?, peak_delta = ?, ticks = ? WHERE id = ?`,
		endedAt, peakDelta, ticks, id,
	)
	if err != nil {
		return fmt.Errorf("%w: finish episode %s: %w", ErrQuery, id, err)
	}
	return nil
}

// Recent returns up to limit episodes, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]model.Episode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, peak_delta, ticks
		 FROM episodes ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: recent episodes: %w", ErrQuery, err)
	}
	defer rows.Close()

	var episodes []model.Episode
	for rows.Next() {
		var ep model.Episode
		var endedAt sql.NullTime
		if err := rows.Scan(&ep.ID, &ep.StartedAt, &endedAt, &ep.PeakDelta, &ep.Ticks); err != nil {
			return nil, fmt.Errorf("%w: scan episode: %w", ErrQuery, err)
		}
		if endedAt.Valid {
			ep.EndedAt = endedAt.Time
			ep.Ended = true
		}
		episodes = append(episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: recent episodes: %w", ErrQuery, err)
	}
	return episodes, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close episode store: %w", err)
	}
	return nil
}
