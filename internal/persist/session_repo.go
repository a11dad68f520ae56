package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionRow is one row of the sessions table.
type SessionRow struct {
	ID         uuid.UUID
	StartLevel uint32
	Score      uint32
	LastLevel  *uint32
	EndReason  *string
	StartedAt  time.Time
	EndedAt    *time.Time
}

// SessionRepo handles play session records.
type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Start inserts a new session row and returns a handle bound to it.
func (r *SessionRepo) Start(ctx context.Context, startLevel uint32, seed int64) (*Session, error) {
	id := uuid.New()
	if _, err := r.db.Pool.Exec(ctx,
		`INSERT INTO sessions (session_id, start_level, seed) VALUES ($1, $2, $3)`,
		id, int32(startLevel), seed,
	); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return &Session{ID: id, repo: r}, nil
}

// Best returns the highest finished score, 0 when there is none.
func (r *SessionRepo) Best(ctx context.Context) (uint32, error) {
	var best int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT score FROM sessions WHERE ended_at IS NOT NULL ORDER BY score DESC LIMIT 1`,
	).Scan(&best)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("best score: %w", err)
	}
	return uint32(best), nil
}

// Recent returns the latest sessions, newest first.
func (r *SessionRepo) Recent(ctx context.Context, limit int) ([]SessionRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT session_id, start_level, score, last_level, end_reason, started_at, ended_at
		 FROM sessions ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var (
			s          SessionRow
			startLevel int32
			score      int64
			lastLevel  *int32
		)
		if err := rows.Scan(&s.ID, &startLevel, &score, &lastLevel, &s.EndReason, &s.StartedAt, &s.EndedAt); err != nil {
			return nil, err
		}
		s.StartLevel = uint32(startLevel)
		s.Score = uint32(score)
		if lastLevel != nil {
			l := uint32(*lastLevel)
			s.LastLevel = &l
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Session records the events of one running game.
type Session struct {
	ID   uuid.UUID
	repo *SessionRepo
}

// RecordMilestone stores a reached milestone tier. Repeats are ignored.
func (s *Session) RecordMilestone(ctx context.Context, tier, score uint32) error {
	_, err := s.repo.db.Pool.Exec(ctx,
		`INSERT INTO session_milestones (session_id, tier, score) VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, tier) DO NOTHING`,
		s.ID, int32(tier), int64(score),
	)
	if err != nil {
		return fmt.Errorf("record milestone: %w", err)
	}
	return nil
}

// RecordLevel stores a completed level and the running score in one
// transaction.
func (s *Session) RecordLevel(ctx context.Context, level, score uint32) error {
	tx, err := s.repo.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("level begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO level_results (session_id, level, score) VALUES ($1, $2, $3)`,
		s.ID, int32(level), int64(score),
	); err != nil {
		return fmt.Errorf("level insert: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE sessions SET score = $2, last_level = $3 WHERE session_id = $1`,
		s.ID, int64(score), int32(level),
	); err != nil {
		return fmt.Errorf("level update: %w", err)
	}
	return tx.Commit(ctx)
}

// Finish closes the session row.
func (s *Session) Finish(ctx context.Context, score uint32, lives int, reason string) error {
	tag, err := s.repo.db.Pool.Exec(ctx,
		`UPDATE sessions SET score = $2, lives = $3, end_reason = $4, ended_at = now()
		 WHERE session_id = $1 AND ended_at IS NULL`,
		s.ID, int64(score), int32(lives), reason,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish session %s: not found or already finished", s.ID)
	}
	return nil
}
