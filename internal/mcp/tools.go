package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/workout"
)

// --- Tool definitions ---

var toolGetCurrentWorkout = mcp.NewTool("get_current_workout",
	mcp.WithDescription("Get the in-progress workout session with its exercises and per-set weights and reps. Returns null when no session is active."),
)

var toolGetSessionSummary = mcp.NewTool("get_session_summary",
	mcp.WithDescription("Get the summary of a workout session: exercise completion counts, total sets, total volume in kg, duration, and any personal records."),
	mcp.WithNumber("session_id", mcp.Required(), mcp.Description("Workout session ID")),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("List completed workout sessions, most recent first. Paginated."),
	mcp.WithNumber("page", mcp.Description("Page number, starting at 1. Defaults to 1.")),
	mcp.WithNumber("limit", mcp.Description("Sessions per page (max 100). Defaults to 20.")),
)

var toolGetExerciseStats = mcp.NewTool("get_exercise_stats",
	mcp.WithDescription("Get an exercise's all-time heaviest set and the date it was last performed."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise library with each exercise's unit preference and usage counts."),
)

var toolListPrograms = mcp.NewTool("list_programs",
	mcp.WithDescription("List workout programs. The active program is the one new sessions default to."),
)

var toolGetExerciseProgression = mcp.NewTool("get_exercise_progression",
	mcp.WithDescription("Get the per-set weights and reps from the most recent completed session that included an exercise."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
)

// --- Tool handlers ---

func (h *handlers) getCurrentWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	detail, err := h.ds.CurrentWorkout(ctx)
	if err != nil {
		h.log.Error("mcp get_current_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if detail == nil {
		return mcp.NewToolResultText("null"), nil
	}
	result, err := mcp.NewToolResultJSON(detail)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireInt("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}

	summary, err := h.ds.WorkoutSummary(ctx, int64(sessionID))
	if errors.Is(err, workout.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("session %d not found", sessionID)), nil
	}
	if err != nil {
		h.log.Error("mcp get_session_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := req.GetInt("page", 1)
	limit := req.GetInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	sessions, total, err := h.ds.WorkoutHistory(ctx, page, limit)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"sessions": sessions,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	stats, err := h.ds.ExerciseStats(ctx, int64(exerciseID))
	if err != nil {
		h.log.Error("mcp get_exercise_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if stats == nil {
		return mcp.NewToolResultError(fmt.Sprintf("exercise %d not found", exerciseID)), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listPrograms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programs, err := h.ds.ListPrograms(ctx)
	if err != nil {
		h.log.Error("mcp list_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(programs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	sets, err := h.ds.ExerciseProgression(ctx, int64(exerciseID))
	if err != nil {
		h.log.Error("mcp get_exercise_progression", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sets)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
