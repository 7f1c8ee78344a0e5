package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/queue"
)

type fakeSender struct {
	calls  []models.ActionType
	reject map[models.ActionType]bool
	onSend func(ctx context.Context)
}

func (f *fakeSender) Send(ctx context.Context, action models.ActionType, payload json.RawMessage) error {
	f.calls = append(f.calls, action)
	if f.onSend != nil {
		f.onSend(ctx)
	}
	if f.reject[action] {
		return fmt.Errorf("server rejected %s", action)
	}
	return nil
}

func testEngine(t *testing.T, sender Sender, onPending func(int)) (*Engine, *queue.Queue) {
	t.Helper()
	q, err := queue.Open(t.TempDir())
	if err != nil {
		t.Fatalf("queue.Open() error: %v", err)
	}
	t.Cleanup(func() { q.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(q, sender, log, onPending), q
}

func TestSyncDrainsOldestFirst(t *testing.T) {
	sender := &fakeSender{}
	engine, q := testEngine(t, sender, nil)

	q.Enqueue(models.ActionUpdateSet, []byte(`{}`))
	q.Enqueue(models.ActionAddSet, []byte(`{}`))
	q.Enqueue(models.ActionCompleteWorkout, []byte(`{}`))

	engine.Sync(context.Background())

	want := []models.ActionType{models.ActionUpdateSet, models.ActionAddSet, models.ActionCompleteWorkout}
	if len(sender.calls) != len(want) {
		t.Fatalf("sends = %d, want %d", len(sender.calls), len(want))
	}
	for i := range want {
		if sender.calls[i] != want[i] {
			t.Errorf("send %d = %q, want %q", i, sender.calls[i], want[i])
		}
	}
	count, _ := q.Count()
	if count != 0 {
		t.Errorf("queue depth after drain = %d, want 0", count)
	}
}

func TestFailedActionDoesNotBlockBatch(t *testing.T) {
	sender := &fakeSender{reject: map[models.ActionType]bool{models.ActionSkipExercise: true}}
	engine, q := testEngine(t, sender, nil)

	q.Enqueue(models.ActionUpdateSet, []byte(`{}`))
	q.Enqueue(models.ActionSkipExercise, []byte(`{}`))
	q.Enqueue(models.ActionAddSet, []byte(`{}`))

	engine.Sync(context.Background())

	if len(sender.calls) != 3 {
		t.Fatalf("sends = %d, want 3 (rejection must not stop the batch)", len(sender.calls))
	}
	actions, _ := q.List()
	if len(actions) != 1 {
		t.Fatalf("queued after drain = %d, want 1", len(actions))
	}
	if actions[0].Action != models.ActionSkipExercise {
		t.Errorf("surviving action = %q, want %q", actions[0].Action, models.ActionSkipExercise)
	}
	if actions[0].RetryCount != 1 {
		t.Errorf("retry count = %d, want 1", actions[0].RetryCount)
	}
}

func TestRetryCeiling(t *testing.T) {
	sender := &fakeSender{reject: map[models.ActionType]bool{models.ActionUpdateSet: true}}
	engine, q := testEngine(t, sender, nil)

	q.Enqueue(models.ActionUpdateSet, []byte(`{}`))

	ctx := context.Background()
	for i := 0; i < MaxRetryCount; i++ {
		engine.Sync(ctx)
	}
	actions, _ := q.List()
	if len(actions) != 1 {
		t.Fatalf("queued after %d failures = %d, want 1 (ceiling not yet exceeded)", MaxRetryCount, len(actions))
	}
	if actions[0].RetryCount != MaxRetryCount {
		t.Errorf("retry count = %d, want %d", actions[0].RetryCount, MaxRetryCount)
	}

	engine.Sync(ctx)
	count, _ := q.Count()
	if count != 0 {
		t.Errorf("queued after exceeding ceiling = %d, want 0", count)
	}
}

func TestSyncReentrancyGuard(t *testing.T) {
	sender := &fakeSender{}
	engine, q := testEngine(t, sender, nil)
	// A drain triggered from inside a drain must be a no-op.
	sender.onSend = func(ctx context.Context) { engine.Sync(ctx) }

	q.Enqueue(models.ActionUpdateSet, []byte(`{}`))
	q.Enqueue(models.ActionAddSet, []byte(`{}`))

	engine.Sync(context.Background())

	if len(sender.calls) != 2 {
		t.Errorf("sends = %d, want 2 (each action exactly once)", len(sender.calls))
	}
	if engine.Syncing() {
		t.Error("Syncing() = true after drain finished")
	}
}

func TestOfflineAccumulates(t *testing.T) {
	sender := &fakeSender{}
	engine, q := testEngine(t, sender, nil)
	ctx := context.Background()

	engine.SetOnline(ctx, false)
	if _, err := engine.Enqueue(ctx, models.ActionUpdateSet, []byte(`{}`)); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if _, err := engine.Enqueue(ctx, models.ActionAddSet, []byte(`{}`)); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if len(sender.calls) != 0 {
		t.Fatalf("sends while offline = %d, want 0", len(sender.calls))
	}
	count, _ := q.Count()
	if count != 2 {
		t.Fatalf("queued while offline = %d, want 2", count)
	}

	engine.SetOnline(ctx, true)
	if len(sender.calls) != 2 {
		t.Errorf("sends after reconnect = %d, want 2", len(sender.calls))
	}
	count, _ = q.Count()
	if count != 0 {
		t.Errorf("queued after reconnect = %d, want 0", count)
	}
}

func TestEnqueueTriggersEagerDrain(t *testing.T) {
	sender := &fakeSender{}
	engine, q := testEngine(t, sender, nil)

	if _, err := engine.Enqueue(context.Background(), models.ActionCompleteWorkout, []byte(`{"sessionId":3}`)); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if len(sender.calls) != 1 {
		t.Errorf("sends = %d, want 1", len(sender.calls))
	}
	count, _ := q.Count()
	if count != 0 {
		t.Errorf("queue depth = %d, want 0", count)
	}
}

func TestPendingNotifications(t *testing.T) {
	var counts []int
	sender := &fakeSender{reject: map[models.ActionType]bool{models.ActionSkipExercise: true}}
	engine, q := testEngine(t, sender, func(n int) { counts = append(counts, n) })

	q.Enqueue(models.ActionUpdateSet, []byte(`{}`))
	q.Enqueue(models.ActionSkipExercise, []byte(`{}`))

	engine.Sync(context.Background())

	if len(counts) == 0 {
		t.Fatal("no pending notifications published")
	}
	if counts[0] != 2 {
		t.Errorf("first notification = %d, want 2 (depth at drain start)", counts[0])
	}
	if last := counts[len(counts)-1]; last != 1 {
		t.Errorf("final notification = %d, want 1 (rejected action still queued)", last)
	}
}

func TestQueueRoundTripPreservesTriState(t *testing.T) {
	// A partial update with weight set and reps absent must come back from
	// the queue with reps still absent, not null.
	payload, err := json.Marshal(models.UpdateSetPayload{
		SetLogID: 12,
		Weight:   models.Float(92.5),
		Unit:     models.UnitKg,
	})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	q, err := queue.Open(t.TempDir())
	if err != nil {
		t.Fatalf("queue.Open() error: %v", err)
	}
	defer q.Close()
	if _, err := q.Enqueue(models.ActionUpdateSet, payload); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	actions, err := q.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	var got models.UpdateSetPayload
	if err := json.Unmarshal(actions[0].Payload, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !got.Weight.Set || !got.Weight.Valid || got.Weight.Value != 92.5 {
		t.Errorf("weight = %+v, want set 92.5", got.Weight)
	}
	if got.Reps.Set {
		t.Error("reps came back set, want absent")
	}
}
