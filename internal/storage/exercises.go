package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

const exerciseCols = `id, name, unit_preference, created_at`

func scanExercise(row interface{ Scan(dest ...any) error }) (*models.Exercise, error) {
	var e models.Exercise
	if err := row.Scan(&e.ID, &e.Name, &e.UnitPreference, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetExercise returns a library exercise by ID, or nil if absent.
func (db *DB) GetExercise(ctx context.Context, id int64) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseCols+` FROM exercises WHERE id = $1`, id)
	e, err := scanExercise(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return e, nil
}

// EnsureExercise looks up an exercise by exact name, creating it with the
// default unit preference if it does not exist.
func (db *DB) EnsureExercise(ctx context.Context, name string) (*models.Exercise, error) {
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return nil, fmt.Errorf("inserting exercise: %w", err)
	}

	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseCols+` FROM exercises WHERE name = $1`, name)
	e, err := scanExercise(row)
	if err != nil {
		return nil, fmt.Errorf("querying exercise by name: %w", err)
	}
	return e, nil
}

// UpdateExerciseUnit sets an exercise's library-wide unit preference, so
// future sessions pre-fill sets with that unit.
func (db *DB) UpdateExerciseUnit(ctx context.Context, id int64, unit models.Unit) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE exercises SET unit_preference = $2 WHERE id = $1`, id, unit); err != nil {
		return fmt.Errorf("updating unit preference: %w", err)
	}
	return nil
}

// RenameExercise changes an exercise's library name. Historical logs keep
// their denormalized names.
func (db *DB) RenameExercise(ctx context.Context, id int64, name string) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE exercises SET name = $2 WHERE id = $1 RETURNING `+exerciseCols, id, name)
	e, err := scanExercise(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("renaming exercise: %w", err)
	}
	return e, nil
}

// DeleteExercise removes an exercise from the library and from any program
// days. Exercise logs keep their denormalized names with a nulled reference.
// Returns whether the exercise had logged history.
func (db *DB) DeleteExercise(ctx context.Context, id int64) (bool, error) {
	var hadHistory bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exercise_logs WHERE exercise_id = $1)`, id).
		Scan(&hadHistory)
	if err != nil {
		return false, fmt.Errorf("checking exercise history: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, `DELETE FROM day_exercises WHERE exercise_id = $1`, id); err != nil {
		return false, fmt.Errorf("removing day exercises: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, id); err != nil {
		return false, fmt.Errorf("deleting exercise: %w", err)
	}
	return hadHistory, nil
}

// ExerciseWithStats is a library exercise with its history stats.
type ExerciseWithStats struct {
	models.Exercise
	models.ExerciseStats
}

// AllExercises returns the library ordered by name, each with stats.
func (db *DB) AllExercises(ctx context.Context) ([]ExerciseWithStats, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseCols+` FROM exercises ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var exs []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		exs = append(exs, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]ExerciseWithStats, 0, len(exs))
	for _, e := range exs {
		stats, err := db.GetExerciseStats(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, ExerciseWithStats{Exercise: e, ExerciseStats: *stats})
	}
	return result, nil
}

// GetExerciseStats returns the heaviest lift and most recent completed
// session date for an exercise.
func (db *DB) GetExerciseStats(ctx context.Context, exerciseID int64) (*models.ExerciseStats, error) {
	stats := &models.ExerciseStats{}

	maxPerf, err := db.MaxPerformance(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	stats.MaxWeight = maxPerf

	row := db.Pool.QueryRow(ctx,
		`SELECT ws.completed_at
		 FROM exercise_logs el
		 JOIN workout_sessions ws ON el.session_id = ws.id
		 WHERE el.exercise_id = $1 AND el.status = 'logged' AND ws.status = 'completed'
		 ORDER BY ws.completed_at DESC
		 LIMIT 1`, exerciseID)
	var lastPerformed *time.Time
	if err := row.Scan(&lastPerformed); err != nil && !noRows(err) {
		return nil, fmt.Errorf("querying last performed: %w", err)
	}
	stats.LastPerformed = lastPerformed

	return stats, nil
}

// MaxPerformance returns the heaviest weighted set for an exercise across
// completed sessions, or nil when no weighted set exists.
func (db *DB) MaxPerformance(ctx context.Context, exerciseID int64) (*models.Performance, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT s.weight, s.reps, s.unit, ws.completed_at
		 FROM set_logs s
		 JOIN exercise_logs el ON s.exercise_log_id = el.id
		 JOIN workout_sessions ws ON el.session_id = ws.id
		 WHERE el.exercise_id = $1
		   AND el.status = 'logged'
		   AND ws.status = 'completed'
		   AND s.weight IS NOT NULL
		 ORDER BY s.weight DESC
		 LIMIT 1`, exerciseID)

	var weight float64
	var reps *int
	var unit models.Unit
	var date *time.Time
	if err := row.Scan(&weight, &reps, &unit, &date); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying max performance: %w", err)
	}

	p := &models.Performance{Weight: weight, Unit: unit}
	if reps != nil {
		p.Reps = *reps
	}
	if date != nil {
		p.Date = *date
	}
	return p, nil
}

// PreviousPerformance returns the weighted sets from the most recent
// completed session where the exercise was logged, or nil when none exists.
func (db *DB) PreviousPerformance(ctx context.Context, exerciseID int64) ([]models.Performance, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT el.id, ws.completed_at
		 FROM exercise_logs el
		 JOIN workout_sessions ws ON el.session_id = ws.id
		 WHERE el.exercise_id = $1
		   AND el.status = 'logged'
		   AND ws.status = 'completed'
		   AND ws.completed_at IS NOT NULL
		 ORDER BY ws.completed_at DESC, ws.id DESC
		 LIMIT 1`, exerciseID)

	var logID int64
	var date time.Time
	if err := row.Scan(&logID, &date); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying previous performance: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT weight, reps, unit FROM set_logs
		 WHERE exercise_log_id = $1 AND weight IS NOT NULL
		 ORDER BY set_number ASC`, logID)
	if err != nil {
		return nil, fmt.Errorf("querying previous sets: %w", err)
	}
	defer rows.Close()

	var result []models.Performance
	for rows.Next() {
		var weight float64
		var reps *int
		var unit models.Unit
		if err := rows.Scan(&weight, &reps, &unit); err != nil {
			return nil, fmt.Errorf("scanning previous set: %w", err)
		}
		p := models.Performance{Weight: weight, Unit: unit, Date: date}
		if reps != nil {
			p.Reps = *reps
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
