package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// CompletedSessions returns one page of completed sessions, newest first,
// each with its exercise counts, plus the total number of completed sessions.
func (db *DB) CompletedSessions(ctx context.Context, page, limit int) ([]models.SessionSummary, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_sessions WHERE status = 'completed'`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting completed sessions: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT ws.id, ws.program_name, ws.day_name, ws.started_at, ws.completed_at,
		        COUNT(el.id) AS exercise_count,
		        COUNT(el.id) FILTER (WHERE el.status = 'skipped') AS skipped_count
		 FROM workout_sessions ws
		 LEFT JOIN exercise_logs el ON el.session_id = ws.id
		 WHERE ws.status = 'completed'
		 GROUP BY ws.id
		 ORDER BY ws.completed_at DESC
		 LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("querying completed sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionSummary
	for rows.Next() {
		var s models.SessionSummary
		if err := rows.Scan(&s.ID, &s.ProgramName, &s.DayName, &s.StartedAt, &s.CompletedAt,
			&s.ExerciseCount, &s.SkippedCount); err != nil {
			return nil, 0, fmt.Errorf("scanning session summary: %w", err)
		}
		s.CompletedCount = s.ExerciseCount - s.SkippedCount
		result = append(result, s)
	}
	return result, total, rows.Err()
}

// CompletedDates returns the YYYY-MM-DD completion dates of all sessions
// completed since the cutoff.
func (db *DB) CompletedDates(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT completed_at FROM workout_sessions
		 WHERE status = 'completed' AND completed_at IS NOT NULL AND completed_at >= $1
		 ORDER BY completed_at ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("querying completed dates: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("scanning completed date: %w", err)
		}
		result = append(result, at.Format("2006-01-02"))
	}
	return result, rows.Err()
}
