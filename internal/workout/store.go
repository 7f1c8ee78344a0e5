package workout

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Store is the session store the state machine composes. Lookup methods
// return nil (not an error) when the row is absent. *storage.DB satisfies
// this interface; tests use an in-memory implementation.
type Store interface {
	InProgressSession(ctx context.Context) (*models.WorkoutSession, error)
	GetSession(ctx context.Context, id int64) (*models.WorkoutSession, error)
	CreateSession(ctx context.Context, s *models.WorkoutSession) error
	CompleteSession(ctx context.Context, id int64, at time.Time) (*models.WorkoutSession, error)
	DeleteSessionCascade(ctx context.Context, id int64) error
	StaleInProgressSessions(ctx context.Context, cutoff time.Time) ([]models.WorkoutSession, error)

	GetWorkoutDay(ctx context.Context, id int64) (*models.WorkoutDay, error)
	GetProgram(ctx context.Context, id int64) (*models.Program, error)
	DayPrescriptions(ctx context.Context, dayID int64) ([]models.Prescription, error)

	GetExercise(ctx context.Context, id int64) (*models.Exercise, error)
	EnsureExercise(ctx context.Context, name string) (*models.Exercise, error)
	UpdateExerciseUnit(ctx context.Context, id int64, unit models.Unit) error

	GetExerciseLog(ctx context.Context, id int64) (*models.ExerciseLog, error)
	SessionExerciseLogs(ctx context.Context, sessionID int64) ([]models.ExerciseLog, error)
	CreateExerciseLog(ctx context.Context, l *models.ExerciseLog) error
	SetExerciseLogStatus(ctx context.Context, id int64, status models.LogStatus) (*models.ExerciseLog, error)
	MaxSortOrder(ctx context.Context, sessionID int64) (int, bool, error)

	ExerciseSetLogs(ctx context.Context, exerciseLogID int64) ([]models.SetLog, error)
	CreateSetLog(ctx context.Context, s *models.SetLog) error
	UpdateSetLog(ctx context.Context, id int64, upd models.SetUpdate) (*models.SetLog, error)
	DeleteSetLog(ctx context.Context, id int64) error
	MaxSetNumber(ctx context.Context, exerciseLogID int64) (int, bool, error)

	PriorMaxWeight(ctx context.Context, exerciseID, excludeSessionID int64) (*models.SetLog, error)
}

// Compile-time check: the pgx-backed store satisfies Store.
var _ Store = (*storage.DB)(nil)
