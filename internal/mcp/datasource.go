package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

// DataSource abstracts the data layer for MCP tools. LocalSource (direct
// database access) and HTTPClient (remote via REST API) both satisfy this
// interface.
type DataSource interface {
	CurrentWorkout(ctx context.Context) (*workout.SessionDetail, error)
	WorkoutSummary(ctx context.Context, sessionID int64) (*models.WorkoutSummary, error)
	WorkoutHistory(ctx context.Context, page, limit int) ([]models.SessionSummary, int, error)
	ExerciseStats(ctx context.Context, exerciseID int64) (*models.ExerciseStats, error)
	ListExercises(ctx context.Context) ([]storage.ExerciseWithStats, error)
	ListPrograms(ctx context.Context) ([]models.Program, error)
	ExerciseProgression(ctx context.Context, exerciseID int64) ([]models.Performance, error)
}

// LocalSource serves MCP tools straight from the database.
type LocalSource struct {
	db       *storage.DB
	workouts *workout.Service
}

// NewLocalSource creates a DataSource backed by the database.
func NewLocalSource(db *storage.DB, workouts *workout.Service) *LocalSource {
	return &LocalSource{db: db, workouts: workouts}
}

func (s *LocalSource) CurrentWorkout(ctx context.Context) (*workout.SessionDetail, error) {
	return s.workouts.Current(ctx)
}

func (s *LocalSource) WorkoutSummary(ctx context.Context, sessionID int64) (*models.WorkoutSummary, error) {
	return s.workouts.Summary(ctx, sessionID)
}

func (s *LocalSource) WorkoutHistory(ctx context.Context, page, limit int) ([]models.SessionSummary, int, error) {
	return s.db.CompletedSessions(ctx, page, limit)
}

func (s *LocalSource) ExerciseStats(ctx context.Context, exerciseID int64) (*models.ExerciseStats, error) {
	return s.db.GetExerciseStats(ctx, exerciseID)
}

func (s *LocalSource) ListExercises(ctx context.Context) ([]storage.ExerciseWithStats, error) {
	return s.db.AllExercises(ctx)
}

func (s *LocalSource) ListPrograms(ctx context.Context) ([]models.Program, error) {
	return s.db.AllPrograms(ctx)
}

func (s *LocalSource) ExerciseProgression(ctx context.Context, exerciseID int64) ([]models.Performance, error) {
	return s.db.PreviousPerformance(ctx, exerciseID)
}

var _ DataSource = (*LocalSource)(nil)
