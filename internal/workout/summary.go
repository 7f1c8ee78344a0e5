package workout

import (
	"context"
	"fmt"
	"math"

	"github.com/claude/liftlog/internal/models"
)

// Summary aggregates a session for the post-workout screen. The exercise
// count triad covers prescribed exercises only — ad-hoc additions don't
// change the planned-workout completion ratio — while set and volume totals
// include every logged set with a weight. Volume is reported in kilograms.
func (s *Service) Summary(ctx context.Context, sessionID int64) (*models.WorkoutSummary, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}

	logs, err := s.store.SessionExerciseLogs(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	summary := &models.WorkoutSummary{
		SessionID:   session.ID,
		ProgramName: session.ProgramName,
		DayName:     session.DayName,
		StartedAt:   session.StartedAt,
		CompletedAt: session.CompletedAt,
		PRs:         []models.PR{},
	}

	for _, log := range logs {
		if !log.IsAdhoc {
			summary.TotalExercises++
			if log.Status == models.LogSkipped {
				summary.SkippedExercises++
			}
		}
	}
	summary.CompletedExercises = summary.TotalExercises - summary.SkippedExercises

	if session.CompletedAt != nil {
		minutes := int(math.Round(session.CompletedAt.Sub(session.StartedAt).Minutes()))
		summary.DurationMinutes = &minutes
	}

	for _, log := range logs {
		if log.Status != models.LogLogged {
			continue
		}
		sets, err := s.store.ExerciseSetLogs(ctx, log.ID)
		if err != nil {
			return nil, err
		}

		var heaviest *models.SetLog
		for i := range sets {
			set := sets[i]
			if set.Weight == nil {
				continue
			}

			summary.TotalSets++
			reps := 0
			if set.Reps != nil {
				reps = *set.Reps
			}
			weightKg := *set.Weight
			if set.Unit == models.UnitLbs {
				weightKg *= models.LbsToKg
			}
			summary.TotalVolume += weightKg * float64(reps)

			if heaviest == nil || *set.Weight > *heaviest.Weight {
				heaviest = &sets[i]
			}
		}

		pr, err := s.detectPR(ctx, log, heaviest, sessionID)
		if err != nil {
			return nil, err
		}
		if pr != nil {
			summary.PRs = append(summary.PRs, *pr)
		}
	}

	return summary, nil
}

// detectPR compares a log's heaviest weighted set against the heaviest set
// from any other completed session for the same exercise. Strictly heavier
// is a PR; a tie is not; an exercise with no prior history always is.
func (s *Service) detectPR(ctx context.Context, log models.ExerciseLog, heaviest *models.SetLog, sessionID int64) (*models.PR, error) {
	if heaviest == nil || log.ExerciseID == nil {
		return nil, nil
	}

	prior, err := s.store.PriorMaxWeight(ctx, *log.ExerciseID, sessionID)
	if err != nil {
		return nil, err
	}
	if prior != nil && prior.Weight != nil && *heaviest.Weight <= *prior.Weight {
		return nil, nil
	}

	reps := 0
	if heaviest.Reps != nil {
		reps = *heaviest.Reps
	}
	return &models.PR{
		ExerciseName: log.ExerciseName,
		Weight:       *heaviest.Weight,
		Reps:         reps,
		Unit:         heaviest.Unit,
	}, nil
}
