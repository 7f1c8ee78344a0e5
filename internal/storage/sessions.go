package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
)

const sessionCols = `id, program_id, workout_day_id, program_name, day_name, status, started_at, completed_at`

func scanSession(row interface{ Scan(dest ...any) error }) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	err := row.Scan(&s.ID, &s.ProgramID, &s.WorkoutDayID, &s.ProgramName, &s.DayName,
		&s.Status, &s.StartedAt, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InProgressSession returns the single in-progress session, or nil if none.
func (db *DB) InProgressSession(ctx context.Context) (*models.WorkoutSession, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionCols+` FROM workout_sessions WHERE status = 'in_progress'`)
	s, err := scanSession(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying in-progress session: %w", err)
	}
	return s, nil
}

// GetSession returns a session by ID, or nil if absent.
func (db *DB) GetSession(ctx context.Context, id int64) (*models.WorkoutSession, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionCols+` FROM workout_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return s, nil
}

// CreateSession inserts a session and fills in its generated ID.
func (db *DB) CreateSession(ctx context.Context, s *models.WorkoutSession) error {
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO workout_sessions (program_id, workout_day_id, program_name, day_name, status, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		s.ProgramID, s.WorkoutDayID, s.ProgramName, s.DayName, s.Status, s.StartedAt).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// CompleteSession marks a session completed at the given time.
func (db *DB) CompleteSession(ctx context.Context, id int64, at time.Time) (*models.WorkoutSession, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE workout_sessions SET status = 'completed', completed_at = $2
		 WHERE id = $1
		 RETURNING `+sessionCols, id, at)
	s, err := scanSession(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("completing session: %w", err)
	}
	return s, nil
}

// DeleteSessionCascade deletes a session with all its exercise logs and set
// logs (the schema cascades the children).
func (db *DB) DeleteSessionCascade(ctx context.Context, id int64) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM workout_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// StaleInProgressSessions returns in-progress sessions started before the cutoff.
func (db *DB) StaleInProgressSessions(ctx context.Context, cutoff time.Time) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionCols+` FROM workout_sessions
		 WHERE status = 'in_progress' AND started_at < $1`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying stale sessions: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stale session: %w", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

const exerciseLogCols = `id, exercise_id, session_id, exercise_name, status, is_adhoc, sort_order, created_at`

func scanExerciseLog(row interface{ Scan(dest ...any) error }) (*models.ExerciseLog, error) {
	var l models.ExerciseLog
	err := row.Scan(&l.ID, &l.ExerciseID, &l.SessionID, &l.ExerciseName,
		&l.Status, &l.IsAdhoc, &l.SortOrder, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetExerciseLog returns an exercise log by ID, or nil if absent.
func (db *DB) GetExerciseLog(ctx context.Context, id int64) (*models.ExerciseLog, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseLogCols+` FROM exercise_logs WHERE id = $1`, id)
	l, err := scanExerciseLog(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise log: %w", err)
	}
	return l, nil
}

// SessionExerciseLogs returns a session's exercise logs in sort order.
func (db *DB) SessionExerciseLogs(ctx context.Context, sessionID int64) ([]models.ExerciseLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseLogCols+` FROM exercise_logs
		 WHERE session_id = $1
		 ORDER BY sort_order ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise logs: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseLog
	for rows.Next() {
		l, err := scanExerciseLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise log: %w", err)
		}
		result = append(result, *l)
	}
	return result, rows.Err()
}

// CreateExerciseLog inserts an exercise log and fills in its generated ID.
func (db *DB) CreateExerciseLog(ctx context.Context, l *models.ExerciseLog) error {
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercise_logs (exercise_id, session_id, exercise_name, status, is_adhoc, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		l.ExerciseID, l.SessionID, l.ExerciseName, l.Status, l.IsAdhoc, l.SortOrder).
		Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting exercise log: %w", err)
	}
	return nil
}

// SetExerciseLogStatus updates one log's status. Returns nil if the log is absent.
func (db *DB) SetExerciseLogStatus(ctx context.Context, id int64, status models.LogStatus) (*models.ExerciseLog, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE exercise_logs SET status = $2 WHERE id = $1
		 RETURNING `+exerciseLogCols, id, status)
	l, err := scanExerciseLog(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating exercise log status: %w", err)
	}
	return l, nil
}

// DeleteExerciseLog removes one exercise log and its sets.
func (db *DB) DeleteExerciseLog(ctx context.Context, id int64) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM exercise_logs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting exercise log: %w", err)
	}
	return nil
}

// MaxSortOrder returns the highest sort order among a session's exercise
// logs. ok is false when the session has no logs.
func (db *DB) MaxSortOrder(ctx context.Context, sessionID int64) (int, bool, error) {
	var maxOrder *int
	err := db.Pool.QueryRow(ctx,
		`SELECT MAX(sort_order) FROM exercise_logs WHERE session_id = $1`, sessionID).
		Scan(&maxOrder)
	if err != nil {
		return 0, false, fmt.Errorf("querying max sort order: %w", err)
	}
	if maxOrder == nil {
		return 0, false, nil
	}
	return *maxOrder, true, nil
}

const setLogCols = `id, exercise_log_id, set_number, weight, reps, unit, created_at`

func scanSetLog(row interface{ Scan(dest ...any) error }) (*models.SetLog, error) {
	var s models.SetLog
	err := row.Scan(&s.ID, &s.ExerciseLogID, &s.SetNumber, &s.Weight, &s.Reps, &s.Unit, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ExerciseSetLogs returns an exercise log's sets ordered by set number.
func (db *DB) ExerciseSetLogs(ctx context.Context, exerciseLogID int64) ([]models.SetLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setLogCols+` FROM set_logs
		 WHERE exercise_log_id = $1
		 ORDER BY set_number ASC, id ASC`, exerciseLogID)
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	defer rows.Close()

	var result []models.SetLog
	for rows.Next() {
		s, err := scanSetLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// CreateSetLog inserts a set log and fills in its generated ID.
func (db *DB) CreateSetLog(ctx context.Context, s *models.SetLog) error {
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO set_logs (exercise_log_id, set_number, weight, reps, unit)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.ExerciseLogID, s.SetNumber, s.Weight, s.Reps, s.Unit).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting set log: %w", err)
	}
	return nil
}

// UpdateSetLog applies a partial update. Unset fields keep their current
// values; set-but-null fields are cleared. Returns nil if the set is absent.
func (db *DB) UpdateSetLog(ctx context.Context, id int64, upd models.SetUpdate) (*models.SetLog, error) {
	var assigns []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Weight.Set {
		if upd.Weight.Valid {
			assigns = append(assigns, "weight = "+arg(upd.Weight.Value))
		} else {
			assigns = append(assigns, "weight = NULL")
		}
	}
	if upd.Reps.Set {
		if upd.Reps.Valid {
			assigns = append(assigns, "reps = "+arg(upd.Reps.Value))
		} else {
			assigns = append(assigns, "reps = NULL")
		}
	}
	if upd.Unit != "" {
		assigns = append(assigns, "unit = "+arg(upd.Unit))
	}

	var row interface{ Scan(dest ...any) error }
	if len(assigns) == 0 {
		row = db.Pool.QueryRow(ctx, `SELECT `+setLogCols+` FROM set_logs WHERE id = $1`, id)
	} else {
		query := `UPDATE set_logs SET ` + strings.Join(assigns, ", ") +
			` WHERE id = ` + arg(id) + ` RETURNING ` + setLogCols
		row = db.Pool.QueryRow(ctx, query, args...)
	}

	s, err := scanSetLog(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating set log: %w", err)
	}
	return s, nil
}

// DeleteSetLog removes one set log. Remaining sets keep their numbers.
func (db *DB) DeleteSetLog(ctx context.Context, id int64) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM set_logs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting set log: %w", err)
	}
	return nil
}

// MaxSetNumber returns the highest set number on an exercise log. ok is
// false when the log has no sets.
func (db *DB) MaxSetNumber(ctx context.Context, exerciseLogID int64) (int, bool, error) {
	var maxSet *int
	err := db.Pool.QueryRow(ctx,
		`SELECT MAX(set_number) FROM set_logs WHERE exercise_log_id = $1`, exerciseLogID).
		Scan(&maxSet)
	if err != nil {
		return 0, false, fmt.Errorf("querying max set number: %w", err)
	}
	if maxSet == nil {
		return 0, false, nil
	}
	return *maxSet, true, nil
}

// PriorMaxWeight returns the heaviest weighted set recorded for an exercise
// across completed sessions other than excludeSessionID, considering only
// non-skipped logs. Returns nil when the exercise has no prior history.
func (db *DB) PriorMaxWeight(ctx context.Context, exerciseID, excludeSessionID int64) (*models.SetLog, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT s.id, s.exercise_log_id, s.set_number, s.weight, s.reps, s.unit, s.created_at
		 FROM set_logs s
		 JOIN exercise_logs el ON s.exercise_log_id = el.id
		 JOIN workout_sessions ws ON el.session_id = ws.id
		 WHERE el.exercise_id = $1
		   AND el.status = 'logged'
		   AND ws.status = 'completed'
		   AND ws.id != $2
		   AND s.weight IS NOT NULL
		 ORDER BY s.weight DESC
		 LIMIT 1`, exerciseID, excludeSessionID)
	s, err := scanSetLog(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying prior max weight: %w", err)
	}
	return s, nil
}
