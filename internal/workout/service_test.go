package workout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

func testService(store Store) *Service {
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// seedDay creates a program with one day prescribing squat (3 sets) and
// bench (2 sets), and returns the day ID.
func seedDay(m *memStore) int64 {
	p := m.addProgram("Strength")
	d := m.addDay(p.ID, "Day A")
	squat := m.addExercise("Squat", models.UnitKg)
	bench := m.addExercise("Bench Press", models.UnitLbs)
	m.prescribe(d.ID, squat, 3)
	m.prescribe(d.ID, bench, 2)
	return d.ID
}

func fillSet(t *testing.T, svc *Service, setID int64, weight float64, reps int) {
	t.Helper()
	upd := models.SetUpdate{Weight: models.Float(weight), Reps: models.Int(reps)}
	if _, err := svc.UpdateSet(context.Background(), setID, upd, 0); err != nil {
		t.Fatalf("UpdateSet(%d) error: %v", setID, err)
	}
}

func TestStartPrePopulatesPrescriptions(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	session, err := svc.Start(ctx, dayID)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if session.Status != models.SessionInProgress {
		t.Errorf("session status = %q, want %q", session.Status, models.SessionInProgress)
	}
	if session.ProgramName != "Strength" || session.DayName != "Day A" {
		t.Errorf("snapshot names = %q/%q, want Strength/Day A", session.ProgramName, session.DayName)
	}

	detail, err := svc.Session(ctx, session.ID)
	if err != nil {
		t.Fatalf("Session() error: %v", err)
	}
	if len(detail.ExerciseLogs) != 2 {
		t.Fatalf("exercise logs = %d, want 2", len(detail.ExerciseLogs))
	}
	if got := detail.ExerciseLogs[0].ExerciseName; got != "Squat" {
		t.Errorf("first log = %q, want Squat", got)
	}
	if got := len(detail.ExerciseLogs[0].Sets); got != 3 {
		t.Errorf("squat sets = %d, want 3", got)
	}
	if got := len(detail.ExerciseLogs[1].Sets); got != 2 {
		t.Errorf("bench sets = %d, want 2", got)
	}
	if got := detail.ExerciseLogs[1].Sets[0].Unit; got != models.UnitLbs {
		t.Errorf("bench set unit = %q, want %q", got, models.UnitLbs)
	}
	for i, set := range detail.ExerciseLogs[0].Sets {
		if set.Weight != nil || set.Reps != nil {
			t.Errorf("set %d not empty: weight=%v reps=%v", i, set.Weight, set.Reps)
		}
		if set.SetNumber != i+1 {
			t.Errorf("set number = %d, want %d", set.SetNumber, i+1)
		}
	}
}

func TestStartRejectsSecondSession(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	if _, err := svc.Start(ctx, dayID); err != nil {
		t.Fatalf("first Start() error: %v", err)
	}
	if _, err := svc.Start(ctx, dayID); !errors.Is(err, ErrWorkoutInProgress) {
		t.Errorf("second Start() error = %v, want ErrWorkoutInProgress", err)
	}
}

func TestStartUnknownDay(t *testing.T) {
	store := newMemStore()
	seedDay(store)
	svc := testService(store)

	if _, err := svc.Start(context.Background(), 9999); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("Start(9999) error = %v, want ErrDayNotFound", err)
	}
}

func TestCompleteEmptySessionCancels(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	session, err := svc.Start(ctx, dayID)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	result, err := svc.Complete(ctx, session.ID)
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if !result.Cancelled {
		t.Error("result.Cancelled = false, want true")
	}
	if got, _ := store.GetSession(ctx, session.ID); got != nil {
		t.Error("session row still present after cancellation")
	}
	if len(store.logs) != 0 || len(store.sets) != 0 {
		t.Errorf("leftover rows after cancel: %d logs, %d sets", len(store.logs), len(store.sets))
	}
}

func TestCompleteRepsWithoutWeightCounts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	session, _ := svc.Start(ctx, dayID)
	detail, _ := svc.Session(ctx, session.ID)

	// Bodyweight reps on squat only; bench stays untouched.
	upd := models.SetUpdate{Reps: models.Int(10)}
	if _, err := svc.UpdateSet(ctx, detail.ExerciseLogs[0].Sets[0].ID, upd, 0); err != nil {
		t.Fatalf("UpdateSet() error: %v", err)
	}

	result, err := svc.Complete(ctx, session.ID)
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if result.Cancelled {
		t.Fatal("result.Cancelled = true, want false")
	}
	if result.Session.Status != models.SessionCompleted {
		t.Errorf("status = %q, want %q", result.Session.Status, models.SessionCompleted)
	}

	after, _ := svc.Session(ctx, session.ID)
	if got := after.ExerciseLogs[0].Status; got != models.LogLogged {
		t.Errorf("squat status = %q, want %q", got, models.LogLogged)
	}
	if got := after.ExerciseLogs[1].Status; got != models.LogSkipped {
		t.Errorf("untouched bench status = %q, want auto-skipped", got)
	}
}

func TestCompleteWeightWithoutRepsCancels(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	session, _ := svc.Start(ctx, dayID)
	detail, _ := svc.Session(ctx, session.ID)

	// A weight with no rep count is not a performed set.
	upd := models.SetUpdate{Weight: models.Float(100)}
	if _, err := svc.UpdateSet(ctx, detail.ExerciseLogs[0].Sets[0].ID, upd, 0); err != nil {
		t.Fatalf("UpdateSet() error: %v", err)
	}

	result, err := svc.Complete(ctx, session.ID)
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if !result.Cancelled {
		t.Error("result.Cancelled = false, want true")
	}
}

func TestCompleteUnknownSession(t *testing.T) {
	store := newMemStore()
	svc := testService(store)

	if _, err := svc.Complete(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Complete(42) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateSetNullClears(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	session, _ := svc.Start(ctx, dayID)
	detail, _ := svc.Session(ctx, session.ID)
	setID := detail.ExerciseLogs[0].Sets[0].ID

	fillSet(t, svc, setID, 80, 5)

	// Clearing the weight leaves the reps untouched.
	set, err := svc.UpdateSet(ctx, setID, models.SetUpdate{Weight: models.NullFloat()}, 0)
	if err != nil {
		t.Fatalf("UpdateSet() error: %v", err)
	}
	if set.Weight != nil {
		t.Errorf("weight = %v, want nil", *set.Weight)
	}
	if set.Reps == nil || *set.Reps != 5 {
		t.Errorf("reps = %v, want 5", set.Reps)
	}
}

func TestUpdateSetUnitUpdatesPreference(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	session, _ := svc.Start(ctx, dayID)
	detail, _ := svc.Session(ctx, session.ID)
	squat := detail.ExerciseLogs[0]

	upd := models.SetUpdate{Weight: models.Float(185), Unit: models.UnitLbs}
	if _, err := svc.UpdateSet(ctx, squat.Sets[0].ID, upd, *squat.ExerciseID); err != nil {
		t.Fatalf("UpdateSet() error: %v", err)
	}

	exercise, _ := store.GetExercise(ctx, *squat.ExerciseID)
	if exercise.UnitPreference != models.UnitLbs {
		t.Errorf("unit preference = %q, want %q", exercise.UnitPreference, models.UnitLbs)
	}
}

func TestSkipUnskip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	session, _ := svc.Start(ctx, dayID)
	detail, _ := svc.Session(ctx, session.ID)
	logID := detail.ExerciseLogs[0].ID

	log, err := svc.Skip(ctx, logID)
	if err != nil {
		t.Fatalf("Skip() error: %v", err)
	}
	if log.Status != models.LogSkipped {
		t.Errorf("status after Skip = %q, want %q", log.Status, models.LogSkipped)
	}

	log, err = svc.Unskip(ctx, logID)
	if err != nil {
		t.Fatalf("Unskip() error: %v", err)
	}
	if log.Status != models.LogLogged {
		t.Errorf("status after Unskip = %q, want %q", log.Status, models.LogLogged)
	}
}

func TestAddAdhocExercise(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	session, _ := svc.Start(ctx, dayID)

	log, err := svc.AddAdhocExercise(ctx, session.ID, "Face Pull")
	if err != nil {
		t.Fatalf("AddAdhocExercise() error: %v", err)
	}
	if !log.IsAdhoc {
		t.Error("IsAdhoc = false, want true")
	}
	if log.SortOrder != 2 {
		t.Errorf("sort order = %d, want 2 (after the two prescribed logs)", log.SortOrder)
	}

	sets, _ := store.ExerciseSetLogs(ctx, log.ID)
	if len(sets) != adhocSetCount {
		t.Errorf("sets = %d, want %d", len(sets), adhocSetCount)
	}
	if _, err := store.EnsureExercise(ctx, "Face Pull"); err != nil {
		t.Fatalf("EnsureExercise() error: %v", err)
	}
}

func TestAddSetNumbersPastMax(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	session, _ := svc.Start(ctx, dayID)
	detail, _ := svc.Session(ctx, session.ID)
	logID := detail.ExerciseLogs[0].ID // 3 prescribed sets

	set, err := svc.AddSet(ctx, logID)
	if err != nil {
		t.Fatalf("AddSet() error: %v", err)
	}
	if set.SetNumber != 4 {
		t.Errorf("new set number = %d, want 4", set.SetNumber)
	}

	// Removing set 2 leaves a gap; the next add still goes past the max.
	sets, _ := store.ExerciseSetLogs(ctx, logID)
	if err := svc.RemoveSet(ctx, sets[1].ID); err != nil {
		t.Fatalf("RemoveSet() error: %v", err)
	}
	sets, _ = store.ExerciseSetLogs(ctx, logID)
	numbers := make([]int, len(sets))
	for i, s := range sets {
		numbers[i] = s.SetNumber
	}
	want := []int{1, 3, 4}
	for i := range want {
		if numbers[i] != want[i] {
			t.Fatalf("set numbers = %v, want %v", numbers, want)
		}
	}

	set, err = svc.AddSet(ctx, logID)
	if err != nil {
		t.Fatalf("AddSet() error: %v", err)
	}
	if set.SetNumber != 5 {
		t.Errorf("set number after gap = %d, want 5", set.SetNumber)
	}
}

func TestCloseStale(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	session, err := svc.Start(ctx, dayID)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	detail, _ := svc.Session(ctx, session.ID)
	fillSet(t, svc, detail.ExerciseLogs[0].Sets[0].ID, 60, 8)

	// Not yet past the threshold.
	svc.now = func() time.Time { return start.Add(StaleThreshold - time.Minute) }
	closed, err := svc.CloseStale(ctx)
	if err != nil {
		t.Fatalf("CloseStale() error: %v", err)
	}
	if closed != 0 {
		t.Errorf("closed = %d, want 0", closed)
	}

	svc.now = func() time.Time { return start.Add(StaleThreshold + time.Minute) }
	closed, err = svc.CloseStale(ctx)
	if err != nil {
		t.Fatalf("CloseStale() error: %v", err)
	}
	if closed != 1 {
		t.Errorf("closed = %d, want 1", closed)
	}

	got, _ := store.GetSession(ctx, session.ID)
	if got == nil || got.Status != models.SessionCompleted {
		t.Errorf("stale session not completed: %+v", got)
	}
}

func TestPrescribedSetCounts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dayID := seedDay(store)
	svc := testService(store)

	session, _ := svc.Start(ctx, dayID)
	adhoc, _ := svc.AddAdhocExercise(ctx, session.ID, "Curl")

	counts, err := svc.PrescribedSetCounts(ctx, session.ID)
	if err != nil {
		t.Fatalf("PrescribedSetCounts() error: %v", err)
	}
	if len(counts) != 2 {
		t.Errorf("entries = %d, want 2", len(counts))
	}
	if _, ok := counts[adhoc.ID]; ok {
		t.Error("ad-hoc log has a prescribed count")
	}
	detail, _ := svc.Session(ctx, session.ID)
	if got := counts[detail.ExerciseLogs[0].ID]; got != 3 {
		t.Errorf("squat prescribed count = %d, want 3", got)
	}
}
