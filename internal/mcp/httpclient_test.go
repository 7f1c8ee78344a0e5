package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientCurrentWorkoutNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workouts/current" {
			t.Errorf("path = %q, want /api/v1/workouts/current", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null\n"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	detail, err := c.CurrentWorkout(context.Background())
	if err != nil {
		t.Fatalf("CurrentWorkout() error: %v", err)
	}
	if detail != nil {
		t.Errorf("detail = %+v, want nil", detail)
	}
}

func TestHTTPClientCurrentWorkout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":3,"programName":"Strength","dayName":"Day A","status":"in_progress","exerciseLogs":[{"id":9,"exerciseName":"Squat","status":"logged","sets":[{"id":21,"setNumber":1,"unit":"kg"}]}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	detail, err := c.CurrentWorkout(context.Background())
	if err != nil {
		t.Fatalf("CurrentWorkout() error: %v", err)
	}
	if detail.ID != 3 {
		t.Errorf("session id = %d, want 3", detail.ID)
	}
	if len(detail.ExerciseLogs) != 1 || detail.ExerciseLogs[0].ExerciseName != "Squat" {
		t.Errorf("exercise logs = %+v, want one Squat log", detail.ExerciseLogs)
	}
	if len(detail.ExerciseLogs[0].Sets) != 1 {
		t.Errorf("sets = %d, want 1", len(detail.ExerciseLogs[0].Sets))
	}
}

func TestHTTPClientWorkoutHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %q, want 2", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sessions":[{"id":5,"programName":"Strength","dayName":"Day B"}],"total":41}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	sessions, total, err := c.WorkoutHistory(context.Background(), 2, 20)
	if err != nil {
		t.Fatalf("WorkoutHistory() error: %v", err)
	}
	if total != 41 {
		t.Errorf("total = %d, want 41", total)
	}
	if len(sessions) != 1 || sessions[0].ID != 5 {
		t.Errorf("sessions = %+v, want one with id 5", sessions)
	}
}

func TestHTTPClientExerciseStatsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"exercise not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	stats, err := c.ExerciseStats(context.Background(), 99)
	if err != nil {
		t.Fatalf("ExerciseStats() error: %v", err)
	}
	if stats != nil {
		t.Errorf("stats = %+v, want nil", stats)
	}
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if _, err := c.ListPrograms(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}
