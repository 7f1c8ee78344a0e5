package workout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// StaleThreshold is how long a session may stay in progress before the
// sweep closes it.
const StaleThreshold = 4 * time.Hour

// adhocSetCount is the number of empty sets an ad-hoc exercise starts with.
const adhocSetCount = 3

// Service owns the lifecycle of workout sessions: at most one session is in
// progress, every mutation flows through it, and completion decides whether
// the session counts as performed or is discarded.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// New creates a Service backed by the given store.
func New(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Start begins a session for a workout day. It fails with
// ErrWorkoutInProgress if a session is already active, and with
// ErrDayNotFound / ErrProgramNotFound when the day or its program is absent.
// The new session snapshots the program and day names and pre-populates one
// exercise log per prescription, each with the prescribed number of empty
// sets in the exercise's preferred unit.
func (s *Service) Start(ctx context.Context, dayID int64) (*models.WorkoutSession, error) {
	existing, err := s.store.InProgressSession(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrWorkoutInProgress
	}

	day, err := s.store.GetWorkoutDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, ErrDayNotFound
	}

	program, err := s.store.GetProgram(ctx, day.ProgramID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, ErrProgramNotFound
	}

	session := &models.WorkoutSession{
		ProgramID:    &program.ID,
		WorkoutDayID: &day.ID,
		ProgramName:  program.Name,
		DayName:      day.Name,
		Status:       models.SessionInProgress,
		StartedAt:    s.now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	prescriptions, err := s.store.DayPrescriptions(ctx, dayID)
	if err != nil {
		return nil, err
	}
	for _, p := range prescriptions {
		exerciseID := p.ExerciseID
		log := &models.ExerciseLog{
			ExerciseID:   &exerciseID,
			SessionID:    session.ID,
			ExerciseName: p.ExerciseName,
			Status:       models.LogLogged,
			SortOrder:    p.SortOrder,
		}
		if err := s.store.CreateExerciseLog(ctx, log); err != nil {
			return nil, err
		}
		if err := s.createEmptySets(ctx, log.ID, p.SetsCount, p.Unit); err != nil {
			return nil, err
		}
	}

	s.log.Info("workout started", "session_id", session.ID, "program", program.Name, "day", day.Name)
	return session, nil
}

func (s *Service) createEmptySets(ctx context.Context, exerciseLogID int64, count int, unit models.Unit) error {
	for i := 0; i < count; i++ {
		set := &models.SetLog{
			ExerciseLogID: exerciseLogID,
			SetNumber:     i + 1,
			Unit:          unit,
		}
		if err := s.store.CreateSetLog(ctx, set); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSet applies a partial update to one set log. Unset fields are left
// unchanged; set-but-null fields are cleared. When a unit is supplied along
// with a library exercise identity, the exercise's unit preference is
// updated as a best-effort side channel so future sessions pre-fill with it.
func (s *Service) UpdateSet(ctx context.Context, setLogID int64, upd models.SetUpdate, exerciseID int64) (*models.SetLog, error) {
	set, err := s.store.UpdateSetLog(ctx, setLogID, upd)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("set log %d: %w", setLogID, ErrNotFound)
	}

	if upd.Unit != "" && exerciseID > 0 {
		if err := s.store.UpdateExerciseUnit(ctx, exerciseID, upd.Unit); err != nil {
			s.log.Warn("unit preference update failed", "exercise_id", exerciseID, "error", err)
		}
	}
	return set, nil
}

// Skip marks an exercise log skipped.
func (s *Service) Skip(ctx context.Context, exerciseLogID int64) (*models.ExerciseLog, error) {
	return s.setStatus(ctx, exerciseLogID, models.LogSkipped)
}

// Unskip marks an exercise log logged again.
func (s *Service) Unskip(ctx context.Context, exerciseLogID int64) (*models.ExerciseLog, error) {
	return s.setStatus(ctx, exerciseLogID, models.LogLogged)
}

func (s *Service) setStatus(ctx context.Context, exerciseLogID int64, status models.LogStatus) (*models.ExerciseLog, error) {
	log, err := s.store.SetExerciseLogStatus(ctx, exerciseLogID, status)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, fmt.Errorf("exercise log %d: %w", exerciseLogID, ErrNotFound)
	}
	return log, nil
}

// AddAdhocExercise appends an exercise that was not prescribed by the
// program day, creating the library exercise by name if needed. The log is
// positioned after the session's current maximum and starts with three
// empty sets in the exercise's preferred unit.
func (s *Service) AddAdhocExercise(ctx context.Context, sessionID int64, name string) (*models.ExerciseLog, error) {
	exercise, err := s.store.EnsureExercise(ctx, name)
	if err != nil {
		return nil, err
	}

	maxOrder, ok, err := s.store.MaxSortOrder(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sortOrder := 0
	if ok {
		sortOrder = maxOrder + 1
	}

	log := &models.ExerciseLog{
		ExerciseID:   &exercise.ID,
		SessionID:    sessionID,
		ExerciseName: exercise.Name,
		Status:       models.LogLogged,
		IsAdhoc:      true,
		SortOrder:    sortOrder,
	}
	if err := s.store.CreateExerciseLog(ctx, log); err != nil {
		return nil, err
	}
	if err := s.createEmptySets(ctx, log.ID, adhocSetCount, exercise.UnitPreference); err != nil {
		return nil, err
	}
	return log, nil
}

// AddSet appends an empty set numbered one past the log's current maximum,
// in the exercise's preferred unit.
func (s *Service) AddSet(ctx context.Context, exerciseLogID int64) (*models.SetLog, error) {
	maxSet, ok, err := s.store.MaxSetNumber(ctx, exerciseLogID)
	if err != nil {
		return nil, err
	}
	setNumber := 1
	if ok {
		setNumber = maxSet + 1
	}

	unit := models.UnitKg
	log, err := s.store.GetExerciseLog(ctx, exerciseLogID)
	if err != nil {
		return nil, err
	}
	if log != nil && log.ExerciseID != nil {
		exercise, err := s.store.GetExercise(ctx, *log.ExerciseID)
		if err != nil {
			return nil, err
		}
		if exercise != nil {
			unit = exercise.UnitPreference
		}
	}

	set := &models.SetLog{
		ExerciseLogID: exerciseLogID,
		SetNumber:     setNumber,
		Unit:          unit,
	}
	if err := s.store.CreateSetLog(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// RemoveSet deletes one set log. Remaining sets are not renumbered.
func (s *Service) RemoveSet(ctx context.Context, setLogID int64) error {
	return s.store.DeleteSetLog(ctx, setLogID)
}

// CompleteResult reports how a session ended: completed with a session row,
// or cancelled with all data deleted.
type CompleteResult struct {
	Cancelled bool                   `json:"cancelled"`
	Session   *models.WorkoutSession `json:"session,omitempty"`
}

// Complete finishes a session. Any exercise still logged but without a
// single set carrying a rep count is auto-skipped first: a weight without
// reps does not count as performed, reps without weight (bodyweight work)
// does. If nothing remains logged after that pass, the session never
// happened — it is deleted along with its logs and sets, and the result is
// tagged cancelled. Otherwise the session is marked completed.
func (s *Service) Complete(ctx context.Context, sessionID int64) (CompleteResult, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return CompleteResult{}, err
	}
	if session == nil {
		return CompleteResult{}, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}

	logs, err := s.store.SessionExerciseLogs(ctx, sessionID)
	if err != nil {
		return CompleteResult{}, err
	}

	remaining := 0
	for _, log := range logs {
		if log.Status != models.LogLogged {
			continue
		}
		sets, err := s.store.ExerciseSetLogs(ctx, log.ID)
		if err != nil {
			return CompleteResult{}, err
		}
		if hasRepSet(sets) {
			remaining++
			continue
		}
		if _, err := s.store.SetExerciseLogStatus(ctx, log.ID, models.LogSkipped); err != nil {
			return CompleteResult{}, err
		}
	}

	if remaining == 0 {
		if err := s.store.DeleteSessionCascade(ctx, sessionID); err != nil {
			return CompleteResult{}, err
		}
		s.log.Info("workout cancelled", "session_id", sessionID)
		return CompleteResult{Cancelled: true}, nil
	}

	completed, err := s.store.CompleteSession(ctx, sessionID, s.now())
	if err != nil {
		return CompleteResult{}, err
	}
	s.log.Info("workout completed", "session_id", sessionID)
	return CompleteResult{Session: completed}, nil
}

func hasRepSet(sets []models.SetLog) bool {
	for _, set := range sets {
		if set.Reps != nil {
			return true
		}
	}
	return false
}

// CloseStale completes every in-progress session older than StaleThreshold,
// applying the same cancellation-or-completion rule as a manual Complete.
// Returns the number of sessions closed.
func (s *Service) CloseStale(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-StaleThreshold)
	stale, err := s.store.StaleInProgressSessions(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, session := range stale {
		result, err := s.Complete(ctx, session.ID)
		if err != nil {
			return 0, fmt.Errorf("closing stale session %d: %w", session.ID, err)
		}
		s.log.Info("stale workout closed",
			"session_id", session.ID,
			"started_at", session.StartedAt,
			"cancelled", result.Cancelled,
		)
	}
	return len(stale), nil
}

// SessionDetail is a session with its exercise logs and sets nested.
type SessionDetail struct {
	models.WorkoutSession
	ExerciseLogs []ExerciseLogDetail `json:"exerciseLogs"`
}

// ExerciseLogDetail is an exercise log with its sets.
type ExerciseLogDetail struct {
	models.ExerciseLog
	Sets []models.SetLog `json:"sets"`
}

// Session returns a session with nested logs and sets, or ErrNotFound.
func (s *Service) Session(ctx context.Context, sessionID int64) (*SessionDetail, error) {
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

	detail := &SessionDetail{WorkoutSession: *session}
	for _, log := range logs {
		sets, err := s.store.ExerciseSetLogs(ctx, log.ID)
		if err != nil {
			return nil, err
		}
		detail.ExerciseLogs = append(detail.ExerciseLogs, ExerciseLogDetail{ExerciseLog: log, Sets: sets})
	}
	return detail, nil
}

// Current returns the in-progress session with detail, or nil if none.
func (s *Service) Current(ctx context.Context) (*SessionDetail, error) {
	session, err := s.store.InProgressSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	return s.Session(ctx, session.ID)
}

// PrescribedSetCounts maps each exercise log of a session to the set count
// its program day prescribes. Ad-hoc logs and logs whose exercise is no
// longer prescribed are omitted.
func (s *Service) PrescribedSetCounts(ctx context.Context, sessionID int64) (map[int64]int, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.WorkoutDayID == nil {
		return map[int64]int{}, nil
	}

	prescriptions, err := s.store.DayPrescriptions(ctx, *session.WorkoutDayID)
	if err != nil {
		return nil, err
	}
	byExercise := make(map[int64]int, len(prescriptions))
	for _, p := range prescriptions {
		byExercise[p.ExerciseID] = p.SetsCount
	}

	logs, err := s.store.SessionExerciseLogs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result := make(map[int64]int)
	for _, log := range logs {
		if log.ExerciseID == nil {
			continue
		}
		if count, ok := byExercise[*log.ExerciseID]; ok {
			result[log.ID] = count
		}
	}
	return result, nil
}
