package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

const sessionColumns = `id, rep_name, created_at, duration_seconds, rep_message_count, analysis`

// InsertSession archives a finished practice session. The analysis is stored
// exactly as the model returned it.
func (s *Store) InsertSession(ctx context.Context, sess domain.SessionSummary) error {
	analysis, err := json.Marshal(sess.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO practice_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID, sess.RepName, sess.CreatedAt, sess.DurationSeconds, sess.RepMessageCount, string(analysis),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ListSessionsByRep returns a rep's sessions newest first. The name comparison
// ignores case. A nil since means no lower bound.
func (s *Store) ListSessionsByRep(ctx context.Context, repName string, since *time.Time, limit int) ([]domain.SessionSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM practice_sessions
		WHERE lower(rep_name) = lower($1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		ORDER BY created_at DESC
		LIMIT $3`,
		repName, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions by rep: %w", err)
	}
	return collectSessions(rows)
}

// ListSessions returns every session newest first, optionally bounded below.
func (s *Store) ListSessions(ctx context.Context, since *time.Time) ([]domain.SessionSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM practice_sessions
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		ORDER BY created_at DESC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]domain.SessionSummary, error) {
	defer rows.Close()

	sessions := []domain.SessionSummary{}
	for rows.Next() {
		var (
			sess domain.SessionSummary
			raw  []byte
		)
		if err := rows.Scan(&sess.ID, &sess.RepName, &sess.CreatedAt, &sess.DurationSeconds, &sess.RepMessageCount, &raw); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if err := json.Unmarshal(raw, &sess.Analysis); err != nil {
			return nil, fmt.Errorf("decode analysis for session %s: %w", sess.ID, err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
