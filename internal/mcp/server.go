package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/repcoach/internal/nutrition"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Backends are the services the MCP tools call.
type Backends struct {
	Data      DataSource
	Exercises ExerciseSearcher
	Planner   Planner
	Foods     nutrition.Lookuper
}

// New creates an MCP server with all tools and resources registered.
func New(b Backends, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepCoach workout and nutrition server. Search the exercise catalog, generate workout routines, read workout and food logs, and look up nutrition facts. Log data is scoped to the authenticated user."),
	)

	h := &handlers{
		ds:        b.Data,
		exercises: b.Exercises,
		planner:   b.Planner,
		foods:     b.Foods,
		log:       log,
	}

	s.AddTools(
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
		server.ServerTool{Tool: toolListMuscleGroups, Handler: h.listMuscleGroups},
		server.ServerTool{Tool: toolGenerateRoutine, Handler: h.generateRoutine},
		server.ServerTool{Tool: toolGetWorkoutLog, Handler: h.getWorkoutLog},
		server.ServerTool{Tool: toolGetFoodLog, Handler: h.getFoodLog},
		server.ServerTool{Tool: toolGetNutritionData, Handler: h.getNutritionData},
	)

	s.AddResources(
		server.ServerResource{Resource: resMuscleGroups, Handler: h.muscleGroups},
		server.ServerResource{Resource: resLogDates, Handler: h.logDates},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds        DataSource
	exercises ExerciseSearcher
	planner   Planner
	foods     nutrition.Lookuper
	log       *slog.Logger
}

// --- Resource definitions ---

var resMuscleGroups = mcp.NewResource(
	"repcoach://muscle_groups",
	"Muscle Groups",
	mcp.WithResourceDescription("Muscle-group terms and equipment values accepted by the exercise catalog"),
	mcp.WithMIMEType("application/json"),
)

var resLogDates = mcp.NewResource(
	"repcoach://log_dates",
	"Log Dates",
	mcp.WithResourceDescription("Dates that have a workout log or a food log"),
	mcp.WithMIMEType("application/json"),
)
