package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// ExportJSON is the full-library export document.
type ExportJSON struct {
	ExportedAt string            `json:"exportedAt"`
	Version    string            `json:"version"`
	Programs   []ExportProgram   `json:"programs"`
	Exercises  []models.Exercise `json:"exercises"`
}

// ExportProgram is one program in the export, with per-exercise stats.
type ExportProgram struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	IsActive bool        `json:"isActive"`
	Days     []ExportDay `json:"days"`
}

// ExportDay is one workout day in the export.
type ExportDay struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	SortOrder int              `json:"sortOrder"`
	Exercises []ExportExercise `json:"exercises"`
}

// ExportExercise is one prescription with its history stats.
type ExportExercise struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	SetsCount     int                 `json:"setsCount"`
	SortOrder     int                 `json:"sortOrder"`
	LastPerformed *models.Performance `json:"lastPerformed"`
	MaxWeight     *models.Performance `json:"maxWeight"`
}

// ExportAsJSON builds the JSON export document: every program with its days,
// prescriptions and per-exercise stats, plus the exercise library.
func (db *DB) ExportAsJSON(ctx context.Context) (*ExportJSON, error) {
	programs, err := db.AllPrograms(ctx)
	if err != nil {
		return nil, err
	}

	out := &ExportJSON{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    "1.0",
		Programs:   make([]ExportProgram, 0, len(programs)),
	}

	for _, p := range programs {
		detail, err := db.ProgramWithDays(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		ep := ExportProgram{ID: p.ID, Name: p.Name, IsActive: p.IsActive}
		for _, day := range detail.Days {
			ed := ExportDay{ID: day.ID, Name: day.Name, SortOrder: day.SortOrder}
			for _, ex := range day.Exercises {
				last, err := db.lastWeightedSet(ctx, ex.ExerciseID)
				if err != nil {
					return nil, err
				}
				maxPerf, err := db.MaxPerformance(ctx, ex.ExerciseID)
				if err != nil {
					return nil, err
				}
				ed.Exercises = append(ed.Exercises, ExportExercise{
					ID:            ex.ID,
					Name:          ex.ExerciseName,
					SetsCount:     ex.SetsCount,
					SortOrder:     ex.SortOrder,
					LastPerformed: last,
					MaxWeight:     maxPerf,
				})
			}
			ep.Days = append(ep.Days, ed)
		}
		out.Programs = append(out.Programs, ep)
	}

	exercises, err := db.AllExercises(ctx)
	if err != nil {
		return nil, err
	}
	for _, ex := range exercises {
		out.Exercises = append(out.Exercises, ex.Exercise)
	}
	return out, nil
}

// lastWeightedSet returns the heaviest set from the exercise's most recent
// completed session, or nil when it has never been lifted with weight.
func (db *DB) lastWeightedSet(ctx context.Context, exerciseID int64) (*models.Performance, error) {
	sets, err := db.PreviousPerformance(ctx, exerciseID)
	if err != nil || len(sets) == 0 {
		return nil, err
	}
	best := sets[0]
	for _, s := range sets[1:] {
		if s.Weight > best.Weight {
			best = s
		}
	}
	return &best, nil
}

// ExportAsCSV renders completed sessions as CSV, one row per filled set.
// Skipped exercises and exercises without weighted sets appear as a single
// row with empty set columns.
func (db *DB) ExportAsCSV(ctx context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("session_date,session_id,program_name,day_name,exercise_name,exercise_status,set_number,weight,reps,unit\n")

	rows, err := db.Pool.Query(ctx,
		`SELECT id, program_name, day_name, started_at, completed_at
		 FROM workout_sessions
		 WHERE status = 'completed'
		 ORDER BY completed_at DESC`)
	if err != nil {
		return "", fmt.Errorf("querying sessions for export: %w", err)
	}
	defer rows.Close()

	type sessionRow struct {
		id                   int64
		programName, dayName string
		startedAt            time.Time
		completedAt          *time.Time
	}
	var sessions []sessionRow
	for rows.Next() {
		var s sessionRow
		if err := rows.Scan(&s.id, &s.programName, &s.dayName, &s.startedAt, &s.completedAt); err != nil {
			return "", fmt.Errorf("scanning session for export: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	for _, s := range sessions {
		date := s.startedAt
		if s.completedAt != nil {
			date = *s.completedAt
		}
		sessionDate := date.Format("2006-01-02")

		logs, err := db.SessionExerciseLogs(ctx, s.id)
		if err != nil {
			return "", err
		}

		for _, log := range logs {
			sets, err := db.ExerciseSetLogs(ctx, log.ID)
			if err != nil {
				return "", err
			}

			var filled []models.SetLog
			for _, set := range sets {
				if set.Weight != nil {
					filled = append(filled, set)
				}
			}

			if log.Status == models.LogSkipped || len(filled) == 0 {
				writeCSVRow(&b, sessionDate, s.id, s.programName, s.dayName, log.ExerciseName,
					"skipped", "", "", "", "")
				continue
			}
			for _, set := range filled {
				reps := ""
				if set.Reps != nil {
					reps = strconv.Itoa(*set.Reps)
				}
				writeCSVRow(&b, sessionDate, s.id, s.programName, s.dayName, log.ExerciseName,
					"logged", strconv.Itoa(set.SetNumber),
					strconv.FormatFloat(*set.Weight, 'f', -1, 64), reps, string(set.Unit))
			}
		}
	}
	return b.String(), nil
}

func writeCSVRow(b *strings.Builder, date string, sessionID int64, cols ...string) {
	b.WriteString(date)
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(sessionID, 10))
	for _, c := range cols {
		b.WriteByte(',')
		b.WriteString(escapeCSVField(c))
	}
	b.WriteByte('\n')
}

// escapeCSVField quotes a field containing commas, quotes or newlines.
func escapeCSVField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
