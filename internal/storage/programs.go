package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

const programCols = `id, name, is_active, created_at, updated_at`

func scanProgram(row interface{ Scan(dest ...any) error }) (*models.Program, error) {
	var p models.Program
	if err := row.Scan(&p.ID, &p.Name, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProgram returns a program by ID, or nil if absent.
func (db *DB) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+programCols+` FROM programs WHERE id = $1`, id)
	p, err := scanProgram(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying program: %w", err)
	}
	return p, nil
}

// AllPrograms returns all programs ordered by name.
func (db *DB) AllPrograms(ctx context.Context) ([]models.Program, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+programCols+` FROM programs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// ActiveProgram returns the program marked active, or nil if none.
func (db *DB) ActiveProgram(ctx context.Context) (*models.Program, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+programCols+` FROM programs WHERE is_active LIMIT 1`)
	p, err := scanProgram(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active program: %w", err)
	}
	return p, nil
}

// CreateProgram inserts a program and fills in its generated fields.
func (db *DB) CreateProgram(ctx context.Context, name string) (*models.Program, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO programs (name) VALUES ($1) RETURNING `+programCols, name)
	p, err := scanProgram(row)
	if err != nil {
		return nil, fmt.Errorf("inserting program: %w", err)
	}
	return p, nil
}

// RenameProgram updates a program's name.
func (db *DB) RenameProgram(ctx context.Context, id int64, name string) (*models.Program, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE programs SET name = $2, updated_at = $3 WHERE id = $1 RETURNING `+programCols,
		id, name, time.Now())
	p, err := scanProgram(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("renaming program: %w", err)
	}
	return p, nil
}

// DeleteProgram removes a program; its days and day exercises cascade.
// Past sessions keep their snapshotted names with a nulled reference.
func (db *DB) DeleteProgram(ctx context.Context, id int64) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting program: %w", err)
	}
	return nil
}

// SetActiveProgram marks one program active and all others inactive.
func (db *DB) SetActiveProgram(ctx context.Context, id int64) (*models.Program, error) {
	if _, err := db.Pool.Exec(ctx, `UPDATE programs SET is_active = FALSE`); err != nil {
		return nil, fmt.Errorf("clearing active program: %w", err)
	}
	row := db.Pool.QueryRow(ctx,
		`UPDATE programs SET is_active = TRUE WHERE id = $1 RETURNING `+programCols, id)
	p, err := scanProgram(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("setting active program: %w", err)
	}
	return p, nil
}

const dayCols = `id, program_id, name, sort_order, created_at`

func scanDay(row interface{ Scan(dest ...any) error }) (*models.WorkoutDay, error) {
	var d models.WorkoutDay
	if err := row.Scan(&d.ID, &d.ProgramID, &d.Name, &d.SortOrder, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetWorkoutDay returns a workout day by ID, or nil if absent.
func (db *DB) GetWorkoutDay(ctx context.Context, id int64) (*models.WorkoutDay, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+dayCols+` FROM workout_days WHERE id = $1`, id)
	d, err := scanDay(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout day: %w", err)
	}
	return d, nil
}

// ProgramDays returns a program's days in sort order.
func (db *DB) ProgramDays(ctx context.Context, programID int64) ([]models.WorkoutDay, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+dayCols+` FROM workout_days WHERE program_id = $1 ORDER BY sort_order ASC`,
		programID)
	if err != nil {
		return nil, fmt.Errorf("querying workout days: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutDay
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout day: %w", err)
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

// AddWorkoutDay appends a day after the program's current maximum sort order.
func (db *DB) AddWorkoutDay(ctx context.Context, programID int64, name string) (*models.WorkoutDay, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO workout_days (program_id, name, sort_order)
		 VALUES ($1, $2, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM workout_days WHERE program_id = $1))
		 RETURNING `+dayCols, programID, name)
	d, err := scanDay(row)
	if err != nil {
		return nil, fmt.Errorf("inserting workout day: %w", err)
	}
	return d, nil
}

// RenameWorkoutDay updates a day's name.
func (db *DB) RenameWorkoutDay(ctx context.Context, id int64, name string) (*models.WorkoutDay, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE workout_days SET name = $2 WHERE id = $1 RETURNING `+dayCols, id, name)
	d, err := scanDay(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("renaming workout day: %w", err)
	}
	return d, nil
}

// DeleteWorkoutDay removes a day and its day exercises.
func (db *DB) DeleteWorkoutDay(ctx context.Context, id int64) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM workout_days WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting workout day: %w", err)
	}
	return nil
}

// ReorderWorkoutDays rewrites day sort orders to match the given ID order.
func (db *DB) ReorderWorkoutDays(ctx context.Context, programID int64, dayIDs []int64) error {
	for i, dayID := range dayIDs {
		_, err := db.Pool.Exec(ctx,
			`UPDATE workout_days SET sort_order = $3 WHERE id = $1 AND program_id = $2`,
			dayID, programID, i)
		if err != nil {
			return fmt.Errorf("reordering workout days: %w", err)
		}
	}
	return nil
}

// DayPrescriptions returns the exercises prescribed on a day, joined with
// the library, in sort order.
func (db *DB) DayPrescriptions(ctx context.Context, dayID int64) ([]models.Prescription, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT de.exercise_id, e.name, de.sets_count, de.sort_order, e.unit_preference
		 FROM day_exercises de
		 JOIN exercises e ON de.exercise_id = e.id
		 WHERE de.workout_day_id = $1
		 ORDER BY de.sort_order ASC`, dayID)
	if err != nil {
		return nil, fmt.Errorf("querying day prescriptions: %w", err)
	}
	defer rows.Close()

	var result []models.Prescription
	for rows.Next() {
		var p models.Prescription
		if err := rows.Scan(&p.ExerciseID, &p.ExerciseName, &p.SetsCount, &p.SortOrder, &p.Unit); err != nil {
			return nil, fmt.Errorf("scanning day prescription: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// AddDayExercise prescribes an exercise on a day, creating the library
// exercise by name if needed, positioned after the day's current maximum.
func (db *DB) AddDayExercise(ctx context.Context, dayID int64, exerciseName string, setsCount int) (*models.DayExercise, error) {
	ex, err := db.EnsureExercise(ctx, exerciseName)
	if err != nil {
		return nil, err
	}

	var de models.DayExercise
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO day_exercises (workout_day_id, exercise_id, sets_count, sort_order)
		 VALUES ($1, $2, $3, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM day_exercises WHERE workout_day_id = $1))
		 RETURNING id, workout_day_id, exercise_id, sets_count, sort_order, created_at`,
		dayID, ex.ID, setsCount).
		Scan(&de.ID, &de.WorkoutDayID, &de.ExerciseID, &de.SetsCount, &de.SortOrder, &de.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting day exercise: %w", err)
	}
	return &de, nil
}

// RemoveDayExercise deletes one prescription from a day.
func (db *DB) RemoveDayExercise(ctx context.Context, id int64) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM day_exercises WHERE id = $1`, id); err != nil {
		return fmt.Errorf("removing day exercise: %w", err)
	}
	return nil
}

// UpdateDayExerciseSets changes a prescription's set count.
func (db *DB) UpdateDayExerciseSets(ctx context.Context, id int64, setsCount int) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE day_exercises SET sets_count = $2 WHERE id = $1`, id, setsCount); err != nil {
		return fmt.Errorf("updating day exercise sets: %w", err)
	}
	return nil
}

// ReorderDayExercises rewrites prescription sort orders to match the given ID order.
func (db *DB) ReorderDayExercises(ctx context.Context, dayID int64, dayExerciseIDs []int64) error {
	for i, deID := range dayExerciseIDs {
		_, err := db.Pool.Exec(ctx,
			`UPDATE day_exercises SET sort_order = $3 WHERE id = $1 AND workout_day_id = $2`,
			deID, dayID, i)
		if err != nil {
			return fmt.Errorf("reordering day exercises: %w", err)
		}
	}
	return nil
}

// ProgramDetail is a program with its days and prescriptions nested.
type ProgramDetail struct {
	models.Program
	Days []ProgramDayDetail `json:"days"`
}

// ProgramDayDetail is a day with its prescriptions.
type ProgramDayDetail struct {
	models.WorkoutDay
	Exercises []DayExerciseDetail `json:"exercises"`
}

// DayExerciseDetail is a prescription joined with its library exercise.
type DayExerciseDetail struct {
	ID           int64       `json:"id"`
	ExerciseID   int64       `json:"exerciseId"`
	ExerciseName string      `json:"exerciseName"`
	SetsCount    int         `json:"setsCount"`
	SortOrder    int         `json:"sortOrder"`
	Unit         models.Unit `json:"unitPreference"`
}

// ProgramWithDays returns a program with days and prescriptions nested, or
// nil if the program is absent.
func (db *DB) ProgramWithDays(ctx context.Context, id int64) (*ProgramDetail, error) {
	p, err := db.GetProgram(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}

	days, err := db.ProgramDays(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProgramDetail{Program: *p, Days: make([]ProgramDayDetail, 0, len(days))}
	for _, day := range days {
		rows, err := db.Pool.Query(ctx,
			`SELECT de.id, de.exercise_id, e.name, de.sets_count, de.sort_order, e.unit_preference
			 FROM day_exercises de
			 JOIN exercises e ON de.exercise_id = e.id
			 WHERE de.workout_day_id = $1
			 ORDER BY de.sort_order ASC`, day.ID)
		if err != nil {
			return nil, fmt.Errorf("querying day exercises: %w", err)
		}

		dd := ProgramDayDetail{WorkoutDay: day}
		for rows.Next() {
			var e DayExerciseDetail
			if err := rows.Scan(&e.ID, &e.ExerciseID, &e.ExerciseName, &e.SetsCount, &e.SortOrder, &e.Unit); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning day exercise: %w", err)
			}
			dd.Exercises = append(dd.Exercises, e)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		detail.Days = append(detail.Days, dd)
	}
	return detail, nil
}

// DuplicateProgram copies a program with all its days and prescriptions
// under a new name. Returns nil if the source is absent.
func (db *DB) DuplicateProgram(ctx context.Context, id int64, newName string) (*ProgramDetail, error) {
	source, err := db.ProgramWithDays(ctx, id)
	if err != nil || source == nil {
		return nil, err
	}

	p, err := db.CreateProgram(ctx, newName)
	if err != nil {
		return nil, err
	}

	for _, day := range source.Days {
		var newDayID int64
		err := db.Pool.QueryRow(ctx,
			`INSERT INTO workout_days (program_id, name, sort_order) VALUES ($1, $2, $3) RETURNING id`,
			p.ID, day.Name, day.SortOrder).Scan(&newDayID)
		if err != nil {
			return nil, fmt.Errorf("copying workout day: %w", err)
		}
		for _, ex := range day.Exercises {
			_, err := db.Pool.Exec(ctx,
				`INSERT INTO day_exercises (workout_day_id, exercise_id, sets_count, sort_order)
				 VALUES ($1, $2, $3, $4)`,
				newDayID, ex.ExerciseID, ex.SetsCount, ex.SortOrder)
			if err != nil {
				return nil, fmt.Errorf("copying day exercise: %w", err)
			}
		}
	}
	return db.ProgramWithDays(ctx, p.ID)
}
