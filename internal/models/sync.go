package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActionType enumerates the mutations a client may queue while offline.
type ActionType string

const (
	ActionUpdateSet       ActionType = "UPDATE_SET"
	ActionSkipExercise    ActionType = "SKIP_EXERCISE"
	ActionUnskipExercise  ActionType = "UNSKIP_EXERCISE"
	ActionCompleteWorkout ActionType = "COMPLETE_WORKOUT"
	ActionAddAdhoc        ActionType = "ADD_ADHOC"
	ActionAddSet          ActionType = "ADD_SET"
	ActionRemoveSet       ActionType = "REMOVE_SET"
	ActionUpdateUnit      ActionType = "UPDATE_UNIT"
)

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	switch t {
	case ActionUpdateSet, ActionSkipExercise, ActionUnskipExercise,
		ActionCompleteWorkout, ActionAddAdhoc, ActionAddSet,
		ActionRemoveSet, ActionUpdateUnit:
		return true
	}
	return false
}

// QueuedAction is a durable client-local record of a mutation not yet
// confirmed by the server.
type QueuedAction struct {
	ID         string          `json:"id"`
	Timestamp  int64           `json:"timestamp"` // unix milliseconds, ordering key
	Action     ActionType      `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	RetryCount int             `json:"retryCount"`
}

// SyncRequest is the body of POST /api/v1/sync.
type SyncRequest struct {
	Action  ActionType      `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// SyncResponse is the result of a sync mutation.
type SyncResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

var jsonNull = []byte("null")

// OptFloat is a tri-state JSON number: absent, null, or a value.
// Absent fields survive a marshal/unmarshal round trip through the queue,
// so a partial update stays partial after replay.
type OptFloat struct {
	Set   bool // field was present in the JSON object
	Valid bool // field was present and non-null
	Value float64
}

// Float returns a value for the Set-and-Valid state, used when building
// store updates.
func Float(v float64) OptFloat { return OptFloat{Set: true, Valid: true, Value: v} }

// NullFloat returns the Set-but-null state.
func NullFloat() OptFloat { return OptFloat{Set: true} }

func (o *OptFloat) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, jsonNull) {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return fmt.Errorf("parsing number: %w", err)
	}
	o.Valid = true
	return nil
}

// OptInt is a tri-state JSON integer, see OptFloat.
type OptInt struct {
	Set   bool
	Valid bool
	Value int
}

// Int returns a value for the Set-and-Valid state.
func Int(v int) OptInt { return OptInt{Set: true, Valid: true, Value: v} }

// NullInt returns the Set-but-null state.
func NullInt() OptInt { return OptInt{Set: true} }

func (o *OptInt) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, jsonNull) {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return fmt.Errorf("parsing integer: %w", err)
	}
	o.Valid = true
	return nil
}

// UpdateSetPayload carries an UPDATE_SET action. Weight and reps are
// tri-state; unit, when present, also updates the exercise's library-wide
// unit preference if exerciseId is supplied.
type UpdateSetPayload struct {
	SetLogID   int64    `json:"setLogId"`
	Weight     OptFloat `json:"weight"`
	Reps       OptInt   `json:"reps"`
	Unit       Unit     `json:"unit,omitempty"`
	ExerciseID int64    `json:"exerciseId,omitempty"`
}

// MarshalJSON omits the weight and reps keys entirely when they are unset,
// preserving the absent/null distinction on the wire.
func (p UpdateSetPayload) MarshalJSON() ([]byte, error) {
	m := map[string]any{"setLogId": p.SetLogID}
	if p.Weight.Set {
		if p.Weight.Valid {
			m["weight"] = p.Weight.Value
		} else {
			m["weight"] = nil
		}
	}
	if p.Reps.Set {
		if p.Reps.Valid {
			m["reps"] = p.Reps.Value
		} else {
			m["reps"] = nil
		}
	}
	if p.Unit != "" {
		m["unit"] = p.Unit
	}
	if p.ExerciseID != 0 {
		m["exerciseId"] = p.ExerciseID
	}
	return json.Marshal(m)
}

// ExerciseLogPayload carries SKIP_EXERCISE, UNSKIP_EXERCISE and ADD_SET.
type ExerciseLogPayload struct {
	ExerciseLogID int64 `json:"exerciseLogId"`
}

// SessionPayload carries COMPLETE_WORKOUT.
type SessionPayload struct {
	SessionID int64 `json:"sessionId"`
}

// AdhocPayload carries ADD_ADHOC.
type AdhocPayload struct {
	SessionID    int64  `json:"sessionId"`
	ExerciseName string `json:"exerciseName"`
}

// SetLogPayload carries REMOVE_SET.
type SetLogPayload struct {
	SetLogID int64 `json:"setLogId"`
}

// UnitPayload carries UPDATE_UNIT.
type UnitPayload struct {
	ExerciseID int64 `json:"exerciseId"`
	Unit       Unit  `json:"unit"`
}
