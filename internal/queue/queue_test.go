package queue

import (
	"testing"

	"github.com/claude/liftlog/internal/models"
)

func TestEnqueueListOrder(t *testing.T) {
	q, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer q.Close()

	first, err := q.Enqueue(models.ActionUpdateSet, []byte(`{"setLogId":1}`))
	if err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	second, err := q.Enqueue(models.ActionSkipExercise, []byte(`{"exerciseLogId":2}`))
	if err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	actions, err := q.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("len(actions) = %d, want 2", len(actions))
	}
	if actions[0].ID != first || actions[1].ID != second {
		t.Errorf("order = [%s, %s], want [%s, %s]", actions[0].ID, actions[1].ID, first, second)
	}
	if actions[0].Action != models.ActionUpdateSet {
		t.Errorf("action = %q, want %q", actions[0].Action, models.ActionUpdateSet)
	}
	if string(actions[0].Payload) != `{"setLogId":1}` {
		t.Errorf("payload = %s, want {\"setLogId\":1}", actions[0].Payload)
	}
	if actions[0].RetryCount != 0 {
		t.Errorf("retry count = %d, want 0", actions[0].RetryCount)
	}
}

func TestQueueSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	q, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	id, err := q.Enqueue(models.ActionCompleteWorkout, []byte(`{"sessionId":7}`))
	if err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	q, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer q.Close()

	actions, err := q.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(actions) != 1 || actions[0].ID != id {
		t.Fatalf("actions after reopen = %+v, want the one enqueued before close", actions)
	}
}

func TestRemove(t *testing.T) {
	q, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer q.Close()

	id, _ := q.Enqueue(models.ActionAddSet, []byte(`{}`))
	if err := q.Remove(id); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	count, err := q.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	// Removing an ID that is already gone is fine.
	if err := q.Remove(id); err != nil {
		t.Errorf("Remove() of absent id error: %v", err)
	}
}

func TestIncrementRetry(t *testing.T) {
	q, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer q.Close()

	id, _ := q.Enqueue(models.ActionRemoveSet, []byte(`{}`))
	for want := 1; want <= 3; want++ {
		got, err := q.IncrementRetry(id)
		if err != nil {
			t.Fatalf("IncrementRetry() error: %v", err)
		}
		if got != want {
			t.Errorf("retry count = %d, want %d", got, want)
		}
	}
}

func TestClear(t *testing.T) {
	q, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer q.Close()

	q.Enqueue(models.ActionAddAdhoc, []byte(`{}`))
	q.Enqueue(models.ActionUpdateUnit, []byte(`{}`))
	if err := q.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	count, _ := q.Count()
	if count != 0 {
		t.Errorf("count after Clear = %d, want 0", count)
	}
}
