package mcp

import (
	"context"
	"time"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/routine"
	"github.com/claude/repcoach/internal/storage"
)

// DataSource abstracts the log store for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryWorkoutSets(ctx context.Context, userID int, date time.Time) ([]models.WorkoutSetRow, error)
	QueryFoodEntries(ctx context.Context, userID int, date time.Time) ([]models.FoodEntryRow, error)
	GetLogDates(ctx context.Context, userID int) (*models.LogDates, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

// ExerciseSearcher finds catalog exercises by name.
type ExerciseSearcher interface {
	SearchExercises(ctx context.Context, query string, limit int) ([]catalog.Exercise, error)
}

// Planner generates routines. *routine.Orchestrator and HTTPClient satisfy it.
type Planner interface {
	Generate(ctx context.Context, prefs routine.Preferences) (*routine.Result, error)
}

var _ Planner = (*routine.Orchestrator)(nil)

// CatalogSearcher adapts an in-process catalog to ExerciseSearcher.
type CatalogSearcher struct {
	Catalog *catalog.Catalog
}

func (c CatalogSearcher) SearchExercises(_ context.Context, query string, limit int) ([]catalog.Exercise, error) {
	return c.Catalog.Search(query, limit), nil
}
