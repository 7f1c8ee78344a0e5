package queue

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/claude/liftlog/internal/models"
)

// Queue is a durable FIFO of workout actions awaiting delivery to the
// server. Actions survive process restarts; they are removed only after a
// successful send or once they exceed the retry ceiling.
type Queue struct {
	db *sql.DB
}

// Open opens (or creates) the queue database at dir/queue.db.
func Open(dir string) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating queue dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "queue.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening queue db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sync_queue (
		id            TEXT PRIMARY KEY,
		created_at_ms INTEGER NOT NULL,
		action        TEXT NOT NULL,
		payload       TEXT NOT NULL,
		retry_count   INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating queue table: %w", err)
	}

	return &Queue{db: db}, nil
}

// Enqueue appends an action with its JSON payload and returns the new
// entry's ID.
func (q *Queue) Enqueue(action models.ActionType, payload []byte) (string, error) {
	id := uuid.NewString()
	_, err := q.db.Exec(
		`INSERT INTO sync_queue (id, created_at_ms, action, payload) VALUES (?, ?, ?, ?)`,
		id, time.Now().UnixMilli(), string(action), string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("enqueueing %s: %w", action, err)
	}
	return id, nil
}

// List returns every queued action, oldest first.
func (q *Queue) List() ([]models.QueuedAction, error) {
	rows, err := q.db.Query(
		`SELECT id, created_at_ms, action, payload, retry_count
		 FROM sync_queue ORDER BY created_at_ms, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing queue: %w", err)
	}
	defer rows.Close()

	var actions []models.QueuedAction
	for rows.Next() {
		var a models.QueuedAction
		var payload string
		if err := rows.Scan(&a.ID, &a.Timestamp, &a.Action, &payload, &a.RetryCount); err != nil {
			return nil, fmt.Errorf("scanning queue row: %w", err)
		}
		a.Payload = []byte(payload)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Remove deletes one entry by ID. Removing an absent ID is not an error.
func (q *Queue) Remove(id string) error {
	_, err := q.db.Exec(`DELETE FROM sync_queue WHERE id = ?`, id)
	return err
}

// IncrementRetry bumps an entry's retry count and returns the new value.
func (q *Queue) IncrementRetry(id string) (int, error) {
	_, err := q.db.Exec(`UPDATE sync_queue SET retry_count = retry_count + 1 WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("incrementing retry for %s: %w", id, err)
	}
	var count int
	err = q.db.QueryRow(`SELECT retry_count FROM sync_queue WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("reading retry count for %s: %w", id, err)
	}
	return count, nil
}

// Count returns the number of queued actions.
func (q *Queue) Count() (int, error) {
	var count int
	err := q.db.QueryRow(`SELECT COUNT(*) FROM sync_queue`).Scan(&count)
	return count, err
}

// Clear removes every queued action.
func (q *Queue) Clear() error {
	_, err := q.db.Exec(`DELETE FROM sync_queue`)
	return err
}

// Close closes the queue database.
func (q *Queue) Close() error {
	return q.db.Close()
}
