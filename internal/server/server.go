package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	workouts *workout.Service
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a Server with all routes configured. When apiKey is non-empty
// the sync endpoint requires it; read endpoints are open (the Tailscale
// listener handles access).
func New(db *storage.DB, workouts *workout.Service, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		workouts: workouts,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)

	// Mutation endpoint: every workout edit flows through here.
	s.router.Route("/api/v1/sync", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Post("/", s.handleSync)
	})

	// Session lifecycle and reads
	s.router.Post("/api/v1/workouts/start", s.handleStartWorkout)
	s.router.Get("/api/v1/workouts/current", s.handleCurrentWorkout)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/workouts/{id}/summary", s.handleWorkoutSummary)

	// History
	s.router.Get("/api/v1/history", s.handleHistory)
	s.router.Get("/api/v1/history/dates", s.handleHistoryDates)

	// Exercise library
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{id}/stats", s.handleExerciseStats)
	s.router.Get("/api/v1/exercises/{id}/progression", s.handleExerciseProgression)
	s.router.Put("/api/v1/exercises/{id}", s.handleRenameExercise)
	s.router.Delete("/api/v1/exercises/{id}", s.handleDeleteExercise)

	// Programs and workout days
	s.router.Get("/api/v1/programs", s.handleListPrograms)
	s.router.Post("/api/v1/programs", s.handleCreateProgram)
	s.router.Get("/api/v1/programs/active", s.handleActiveProgram)
	s.router.Get("/api/v1/programs/{id}", s.handleGetProgram)
	s.router.Put("/api/v1/programs/{id}", s.handleRenameProgram)
	s.router.Delete("/api/v1/programs/{id}", s.handleDeleteProgram)
	s.router.Post("/api/v1/programs/{id}/activate", s.handleActivateProgram)
	s.router.Post("/api/v1/programs/{id}/duplicate", s.handleDuplicateProgram)
	s.router.Post("/api/v1/programs/{id}/days", s.handleAddDay)
	s.router.Put("/api/v1/programs/{id}/days/order", s.handleReorderDays)
	s.router.Put("/api/v1/days/{id}", s.handleRenameDay)
	s.router.Delete("/api/v1/days/{id}", s.handleDeleteDay)
	s.router.Post("/api/v1/days/{id}/exercises", s.handleAddDayExercise)
	s.router.Put("/api/v1/days/{id}/exercises/order", s.handleReorderDayExercises)
	s.router.Put("/api/v1/day-exercises/{id}", s.handleUpdateDayExerciseSets)
	s.router.Delete("/api/v1/day-exercises/{id}", s.handleRemoveDayExercise)

	// Export
	s.router.Get("/api/v1/export/json", s.handleExportJSON)
	s.router.Get("/api/v1/export/csv", s.handleExportCSV)
}
