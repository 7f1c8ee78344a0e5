package sync

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/queue"
)

// MaxRetryCount is how many failed delivery attempts an action survives
// before it is dropped from the queue.
const MaxRetryCount = 10

// DefaultInterval is how often the background loop drains the queue.
const DefaultInterval = 30 * time.Second

// Sender delivers one action to the server. *Client satisfies it.
type Sender interface {
	Send(ctx context.Context, action models.ActionType, payload json.RawMessage) error
}

// Engine drains the durable queue toward the server. Drains run one at a
// time: a drain already in flight makes concurrent triggers no-ops. While
// offline the queue only accumulates.
type Engine struct {
	queue  *queue.Queue
	sender Sender
	log    *slog.Logger

	interval  time.Duration
	onPending func(count int)

	mu      sync.Mutex
	syncing bool
	online  bool
}

// NewEngine creates an engine over a queue and a sender. onPending, if not
// nil, is called with the current queue depth whenever it may have changed.
func NewEngine(q *queue.Queue, sender Sender, log *slog.Logger, onPending func(int)) *Engine {
	return &Engine{
		queue:     q,
		sender:    sender,
		log:       log,
		interval:  DefaultInterval,
		onPending: onPending,
		online:    true,
	}
}

// SetInterval overrides the background drain interval. Call before Run.
func (e *Engine) SetInterval(d time.Duration) {
	if d > 0 {
		e.interval = d
	}
}

// SetOnline flips the connectivity flag. Coming back online triggers an
// immediate drain.
func (e *Engine) SetOnline(ctx context.Context, online bool) {
	e.mu.Lock()
	wasOnline := e.online
	e.online = online
	e.mu.Unlock()

	if online && !wasOnline {
		e.log.Info("connectivity restored, draining queue")
		e.Sync(ctx)
	}
}

// Syncing reports whether a drain is in flight.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncing
}

// Enqueue stores an action durably and immediately attempts a drain.
func (e *Engine) Enqueue(ctx context.Context, action models.ActionType, payload json.RawMessage) (string, error) {
	id, err := e.queue.Enqueue(action, payload)
	if err != nil {
		return "", err
	}
	e.notifyPending()
	e.Sync(ctx)
	return id, nil
}

// Run drains the queue on a fixed interval until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.Sync(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sync(ctx)
		}
	}
}

// Sync performs one drain pass: every queued action is sent oldest first.
// An action that fails stays queued with its retry count bumped (dropped
// past MaxRetryCount) and never blocks the rest of the batch. Returns
// immediately when offline or when a drain is already running.
func (e *Engine) Sync(ctx context.Context) {
	e.mu.Lock()
	if e.syncing || !e.online {
		e.mu.Unlock()
		return
	}
	e.syncing = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
		e.notifyPending()
	}()

	e.notifyPending()

	actions, err := e.queue.List()
	if err != nil {
		e.log.Error("listing queue failed", "error", err)
		return
	}

	for _, action := range actions {
		if ctx.Err() != nil {
			return
		}

		if err := e.sender.Send(ctx, action.Action, action.Payload); err != nil {
			count, retryErr := e.queue.IncrementRetry(action.ID)
			if retryErr != nil {
				e.log.Error("bumping retry failed", "id", action.ID, "error", retryErr)
				continue
			}
			if count > MaxRetryCount {
				e.log.Warn("dropping action after too many retries",
					"id", action.ID, "action", action.Action, "retries", count)
				if err := e.queue.Remove(action.ID); err != nil {
					e.log.Error("removing exhausted action failed", "id", action.ID, "error", err)
				}
			} else {
				e.log.Warn("action delivery failed, will retry",
					"id", action.ID, "action", action.Action, "retries", count, "error", err)
			}
		} else if err := e.queue.Remove(action.ID); err != nil {
			e.log.Error("removing delivered action failed", "id", action.ID, "error", err)
		}
		e.notifyPending()
	}
}

func (e *Engine) notifyPending() {
	if e.onPending == nil {
		return
	}
	count, err := e.queue.Count()
	if err != nil {
		e.log.Error("counting queue failed", "error", err)
		return
	}
	e.onPending(count)
}
