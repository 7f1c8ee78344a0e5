package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout tracker. Query the in-progress workout, session summaries with PRs and volume, training history, exercise statistics, and programs."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetCurrentWorkout, Handler: h.getCurrentWorkout},
		server.ServerTool{Tool: toolGetSessionSummary, Handler: h.getSessionSummary},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetExerciseStats, Handler: h.getExerciseStats},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolListPrograms, Handler: h.listPrograms},
		server.ServerTool{Tool: toolGetExerciseProgression, Handler: h.getExerciseProgression},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentSession, Handler: h.currentSession},
		server.ServerResource{Resource: resRecentHistory, Handler: h.recentHistory},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCurrentSession = mcp.NewResource(
	"liftlog://current_session",
	"Current Session",
	mcp.WithResourceDescription("The in-progress workout session with its exercises and sets, or null when none is active"),
	mcp.WithMIMEType("application/json"),
)

var resRecentHistory = mcp.NewResource(
	"liftlog://recent_history",
	"Recent History",
	mcp.WithResourceDescription("The twenty most recently completed workout sessions"),
	mcp.WithMIMEType("application/json"),
)
