package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// errBadRequest marks validation failures that should come back as 400.
var errBadRequest = errors.New("bad request")

// errPlaceholderID marks actions referencing a negative, client-generated
// placeholder ID. The server row does not exist yet; the action is dropped
// and reported as success so the client dequeues it.
var errPlaceholderID = errors.New("placeholder id")

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req models.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.SyncResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	if !req.Action.Valid() {
		writeJSON(w, http.StatusBadRequest, models.SyncResponse{Error: fmt.Sprintf("unknown action %q", req.Action)})
		return
	}

	err := s.applySync(r.Context(), req.Action, req.Payload)
	switch {
	case errors.Is(err, errPlaceholderID):
		s.log.Warn("discarding action with placeholder id", "action", req.Action)
		writeJSON(w, http.StatusOK, models.SyncResponse{Success: true})
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, models.SyncResponse{Error: err.Error()})
	case err != nil:
		s.log.Error("sync action failed", "action", req.Action, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.SyncResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, models.SyncResponse{Success: true})
	}
}

func (s *Server) applySync(ctx context.Context, action models.ActionType, payload json.RawMessage) error {
	switch action {
	case models.ActionUpdateSet:
		var p models.UpdateSetPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}
		if err := requireID("setLogId", p.SetLogID); err != nil {
			return err
		}
		if err := validateMeasurements(p.Weight, p.Reps); err != nil {
			return err
		}
		if p.Unit != "" && !p.Unit.Valid() {
			return fmt.Errorf("%w: unit must be kg or lbs", errBadRequest)
		}
		upd := models.SetUpdate{Weight: p.Weight, Reps: p.Reps, Unit: p.Unit}
		_, err := s.workouts.UpdateSet(ctx, p.SetLogID, upd, p.ExerciseID)
		return err

	case models.ActionSkipExercise, models.ActionUnskipExercise:
		var p models.ExerciseLogPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}
		if err := requireID("exerciseLogId", p.ExerciseLogID); err != nil {
			return err
		}
		if action == models.ActionSkipExercise {
			_, err := s.workouts.Skip(ctx, p.ExerciseLogID)
			return err
		}
		_, err := s.workouts.Unskip(ctx, p.ExerciseLogID)
		return err

	case models.ActionCompleteWorkout:
		var p models.SessionPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}
		if err := requireID("sessionId", p.SessionID); err != nil {
			return err
		}
		_, err := s.workouts.Complete(ctx, p.SessionID)
		return err

	case models.ActionAddAdhoc:
		var p models.AdhocPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}
		if err := requireID("sessionId", p.SessionID); err != nil {
			return err
		}
		name := strings.TrimSpace(p.ExerciseName)
		if name == "" {
			return fmt.Errorf("%w: exerciseName required", errBadRequest)
		}
		_, err := s.workouts.AddAdhocExercise(ctx, p.SessionID, name)
		return err

	case models.ActionAddSet:
		var p models.ExerciseLogPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}
		if err := requireID("exerciseLogId", p.ExerciseLogID); err != nil {
			return err
		}
		_, err := s.workouts.AddSet(ctx, p.ExerciseLogID)
		return err

	case models.ActionRemoveSet:
		var p models.SetLogPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}
		if err := requireID("setLogId", p.SetLogID); err != nil {
			return err
		}
		return s.workouts.RemoveSet(ctx, p.SetLogID)

	case models.ActionUpdateUnit:
		var p models.UnitPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}
		if err := requireID("exerciseId", p.ExerciseID); err != nil {
			return err
		}
		if !p.Unit.Valid() {
			return fmt.Errorf("%w: unit must be kg or lbs", errBadRequest)
		}
		return s.db.UpdateExerciseUnit(ctx, p.ExerciseID, p.Unit)
	}
	return fmt.Errorf("%w: unknown action %q", errBadRequest, action)
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: payload required", errBadRequest)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", errBadRequest, err)
	}
	return nil
}

// requireID validates an entity reference. Zero is missing, negative is a
// client-generated placeholder for a row the server never saw.
func requireID(field string, id int64) error {
	if id < 0 {
		return fmt.Errorf("%w: %s=%d", errPlaceholderID, field, id)
	}
	if id == 0 {
		return fmt.Errorf("%w: %s must be a positive integer", errBadRequest, field)
	}
	return nil
}

func validateMeasurements(weight models.OptFloat, reps models.OptInt) error {
	if weight.Set && weight.Valid {
		if math.IsNaN(weight.Value) || math.IsInf(weight.Value, 0) || weight.Value < 0 {
			return fmt.Errorf("%w: weight must be a non-negative finite number", errBadRequest)
		}
	}
	if reps.Set && reps.Valid && reps.Value < 0 {
		return fmt.Errorf("%w: reps must be non-negative", errBadRequest)
	}
	return nil
}
