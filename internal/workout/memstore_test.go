package workout

import (
	"context"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// memStore is an in-memory Store for exercising the state machine without a
// database.
type memStore struct {
	nextID        int64
	programs      map[int64]*models.Program
	days          map[int64]*models.WorkoutDay
	prescriptions map[int64][]models.Prescription
	exercises     map[int64]*models.Exercise
	sessions      map[int64]*models.WorkoutSession
	logs          map[int64]*models.ExerciseLog
	sets          map[int64]*models.SetLog
}

func newMemStore() *memStore {
	return &memStore{
		programs:      map[int64]*models.Program{},
		days:          map[int64]*models.WorkoutDay{},
		prescriptions: map[int64][]models.Prescription{},
		exercises:     map[int64]*models.Exercise{},
		sessions:      map[int64]*models.WorkoutSession{},
		logs:          map[int64]*models.ExerciseLog{},
		sets:          map[int64]*models.SetLog{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addProgram(name string) *models.Program {
	p := &models.Program{ID: m.id(), Name: name}
	m.programs[p.ID] = p
	return p
}

func (m *memStore) addDay(programID int64, name string) *models.WorkoutDay {
	d := &models.WorkoutDay{ID: m.id(), ProgramID: programID, Name: name}
	m.days[d.ID] = d
	return d
}

func (m *memStore) addExercise(name string, unit models.Unit) *models.Exercise {
	e := &models.Exercise{ID: m.id(), Name: name, UnitPreference: unit}
	m.exercises[e.ID] = e
	return e
}

func (m *memStore) prescribe(dayID int64, e *models.Exercise, sets int) {
	order := len(m.prescriptions[dayID])
	m.prescriptions[dayID] = append(m.prescriptions[dayID], models.Prescription{
		ExerciseID:   e.ID,
		ExerciseName: e.Name,
		SetsCount:    sets,
		SortOrder:    order,
		Unit:         e.UnitPreference,
	})
}

func (m *memStore) InProgressSession(ctx context.Context) (*models.WorkoutSession, error) {
	for _, s := range m.sessions {
		if s.Status == models.SessionInProgress {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetSession(ctx context.Context, id int64) (*models.WorkoutSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *memStore) CreateSession(ctx context.Context, s *models.WorkoutSession) error {
	s.ID = m.id()
	c := *s
	m.sessions[s.ID] = &c
	return nil
}

func (m *memStore) CompleteSession(ctx context.Context, id int64, at time.Time) (*models.WorkoutSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	s.Status = models.SessionCompleted
	s.CompletedAt = &at
	c := *s
	return &c, nil
}

func (m *memStore) DeleteSessionCascade(ctx context.Context, id int64) error {
	for logID, log := range m.logs {
		if log.SessionID != id {
			continue
		}
		for setID, set := range m.sets {
			if set.ExerciseLogID == logID {
				delete(m.sets, setID)
			}
		}
		delete(m.logs, logID)
	}
	delete(m.sessions, id)
	return nil
}

func (m *memStore) StaleInProgressSessions(ctx context.Context, cutoff time.Time) ([]models.WorkoutSession, error) {
	var result []models.WorkoutSession
	for _, s := range m.sessions {
		if s.Status == models.SessionInProgress && s.StartedAt.Before(cutoff) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *memStore) GetWorkoutDay(ctx context.Context, id int64) (*models.WorkoutDay, error) {
	d, ok := m.days[id]
	if !ok {
		return nil, nil
	}
	c := *d
	return &c, nil
}

func (m *memStore) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	p, ok := m.programs[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *memStore) DayPrescriptions(ctx context.Context, dayID int64) ([]models.Prescription, error) {
	return m.prescriptions[dayID], nil
}

func (m *memStore) GetExercise(ctx context.Context, id int64) (*models.Exercise, error) {
	e, ok := m.exercises[id]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

func (m *memStore) EnsureExercise(ctx context.Context, name string) (*models.Exercise, error) {
	for _, e := range m.exercises {
		if e.Name == name {
			c := *e
			return &c, nil
		}
	}
	e := m.addExercise(name, models.UnitKg)
	c := *e
	return &c, nil
}

func (m *memStore) UpdateExerciseUnit(ctx context.Context, id int64, unit models.Unit) error {
	if e, ok := m.exercises[id]; ok {
		e.UnitPreference = unit
	}
	return nil
}

func (m *memStore) GetExerciseLog(ctx context.Context, id int64) (*models.ExerciseLog, error) {
	l, ok := m.logs[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

func (m *memStore) SessionExerciseLogs(ctx context.Context, sessionID int64) ([]models.ExerciseLog, error) {
	var result []models.ExerciseLog
	for _, l := range m.logs {
		if l.SessionID == sessionID {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *memStore) CreateExerciseLog(ctx context.Context, l *models.ExerciseLog) error {
	l.ID = m.id()
	c := *l
	m.logs[l.ID] = &c
	return nil
}

func (m *memStore) SetExerciseLogStatus(ctx context.Context, id int64, status models.LogStatus) (*models.ExerciseLog, error) {
	l, ok := m.logs[id]
	if !ok {
		return nil, nil
	}
	l.Status = status
	c := *l
	return &c, nil
}

func (m *memStore) MaxSortOrder(ctx context.Context, sessionID int64) (int, bool, error) {
	maxOrder, found := 0, false
	for _, l := range m.logs {
		if l.SessionID == sessionID && (!found || l.SortOrder > maxOrder) {
			maxOrder, found = l.SortOrder, true
		}
	}
	return maxOrder, found, nil
}

func (m *memStore) ExerciseSetLogs(ctx context.Context, exerciseLogID int64) ([]models.SetLog, error) {
	var result []models.SetLog
	for _, s := range m.sets {
		if s.ExerciseLogID == exerciseLogID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SetNumber != result[j].SetNumber {
			return result[i].SetNumber < result[j].SetNumber
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *memStore) CreateSetLog(ctx context.Context, s *models.SetLog) error {
	s.ID = m.id()
	c := *s
	m.sets[s.ID] = &c
	return nil
}

func (m *memStore) UpdateSetLog(ctx context.Context, id int64, upd models.SetUpdate) (*models.SetLog, error) {
	s, ok := m.sets[id]
	if !ok {
		return nil, nil
	}
	if upd.Weight.Set {
		if upd.Weight.Valid {
			v := upd.Weight.Value
			s.Weight = &v
		} else {
			s.Weight = nil
		}
	}
	if upd.Reps.Set {
		if upd.Reps.Valid {
			v := upd.Reps.Value
			s.Reps = &v
		} else {
			s.Reps = nil
		}
	}
	if upd.Unit != "" {
		s.Unit = upd.Unit
	}
	c := *s
	return &c, nil
}

func (m *memStore) DeleteSetLog(ctx context.Context, id int64) error {
	delete(m.sets, id)
	return nil
}

func (m *memStore) MaxSetNumber(ctx context.Context, exerciseLogID int64) (int, bool, error) {
	maxSet, found := 0, false
	for _, s := range m.sets {
		if s.ExerciseLogID == exerciseLogID && (!found || s.SetNumber > maxSet) {
			maxSet, found = s.SetNumber, true
		}
	}
	return maxSet, found, nil
}

func (m *memStore) PriorMaxWeight(ctx context.Context, exerciseID, excludeSessionID int64) (*models.SetLog, error) {
	var best *models.SetLog
	for _, set := range m.sets {
		if set.Weight == nil {
			continue
		}
		log, ok := m.logs[set.ExerciseLogID]
		if !ok || log.ExerciseID == nil || *log.ExerciseID != exerciseID || log.Status != models.LogLogged {
			continue
		}
		session, ok := m.sessions[log.SessionID]
		if !ok || session.ID == excludeSessionID || session.Status != models.SessionCompleted {
			continue
		}
		if best == nil || *set.Weight > *best.Weight {
			c := *set
			best = &c
		}
	}
	return best, nil
}

var _ Store = (*memStore)(nil)
