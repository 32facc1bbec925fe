package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/nutrition"
	"github.com/claude/repcoach/internal/routine"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/workoutimport"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Store is the persistence the handlers need. *storage.DB implements it.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	SyncUser(ctx context.Context, login, email, name string) (int, error)

	CreateLogDay(ctx context.Context, userID int, kind models.LogKind, date time.Time) error
	DeleteLogDay(ctx context.Context, userID int, kind models.LogKind, date time.Time) error
	QueryLogDates(ctx context.Context, userID int, kind models.LogKind) ([]string, error)
	GetLogDates(ctx context.Context, userID int) (*models.LogDates, error)

	InsertWorkoutSet(ctx context.Context, userID int, date time.Time, exercise string, weight float64, reps int) (int64, error)
	InsertWorkoutSets(ctx context.Context, userID int, date time.Time, rows []models.WorkoutSetRow) ([]int64, error)
	UpdateWorkoutSet(ctx context.Context, userID int, id int64, weight float64, reps int) error
	DeleteWorkoutSet(ctx context.Context, userID int, id int64) error
	QueryWorkoutSets(ctx context.Context, userID int, date time.Time) ([]models.WorkoutSetRow, error)

	InsertFoodEntry(ctx context.Context, userID int, date time.Time, meal, name string, m models.Macros) (int64, error)
	UpdateFoodEntry(ctx context.Context, userID int, id int64, m models.Macros) error
	DeleteFoodEntry(ctx context.Context, userID int, id int64) error
	QueryFoodEntries(ctx context.Context, userID int, date time.Time) ([]models.FoodEntryRow, error)
	AddSavedFood(ctx context.Context, userID int, name string, m models.Macros) (int64, error)
	QuerySavedFoods(ctx context.Context, userID int) ([]models.SavedFoodRow, error)

	InsertRoutineLog(ctx context.Context, log storage.RoutineLog) (uuid.UUID, error)
	QueryRoutineLogs(ctx context.Context, userID, limit int) ([]storage.RoutineLog, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	GetTrainingSummary(ctx context.Context, userID int, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error)
}

var _ Store = (*storage.DB)(nil)

// Planner generates routines.
type Planner interface {
	Generate(ctx context.Context, prefs routine.Preferences) (*routine.Result, error)
}

// Sketcher produces quick set-by-set routines.
type Sketcher interface {
	Sketch(ctx context.Context, message string) (*routine.Sketch, error)
}

// ExerciseIndex is the catalog view the exercise endpoints use.
type ExerciseIndex interface {
	Search(query string, limit int) []catalog.Exercise
}

// FoodAnalyzer answers food questions with macros.
type FoodAnalyzer interface {
	Analyze(ctx context.Context, req nutrition.AnalyzeRequest) (*nutrition.Analysis, error)
}

// MealPlanner drafts meal plans.
type MealPlanner interface {
	Plan(ctx context.Context, message string) (*nutrition.MealPlan, error)
}

// WorkoutImporter loads exported workout history into the log.
type WorkoutImporter interface {
	Import(ctx context.Context, userID int, r io.Reader, opts workoutimport.Options) (*workoutimport.Summary, error)
}

// Deps bundles the components behind the HTTP API.
type Deps struct {
	Store     Store
	Catalog   ExerciseIndex
	Planner   Planner
	Sketcher  Sketcher
	Foods     nutrition.Lookuper
	Assistant FoodAnalyzer
	Meals     MealPlanner
	Importer  WorkoutImporter
	// MCP, when set, is mounted at /mcp behind the API key.
	MCP http.Handler
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        Store
	catalog   ExerciseIndex
	planner   Planner
	sketcher  Sketcher
	foods     nutrition.Lookuper
	assistant FoodAnalyzer
	meals     MealPlanner
	importer  WorkoutImporter
	mcp       http.Handler
	log       *slog.Logger
	apiKey    string
	router    chi.Router

	mu    sync.RWMutex
	whois whoIser
	users sync.Map // tailscale login -> user ID

	// bg tracks detached writes such as routine logs.
	bg sync.WaitGroup
}

// New creates a new Server with all routes configured.
func New(deps Deps, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:        deps.Store,
		catalog:   deps.Catalog,
		planner:   deps.Planner,
		sketcher:  deps.Sketcher,
		foods:     deps.Foods,
		assistant: deps.Assistant,
		meals:     deps.Meals,
		importer:  deps.Importer,
		mcp:       deps.MCP,
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches request identity from the dev user to Tailscale WhoIs.
func (s *Server) SetTailscale(wc whoIser) {
	s.mu.Lock()
	s.whois = wc
	s.mu.Unlock()
}

// Wait blocks until detached background writes have finished.
func (s *Server) Wait() {
	s.bg.Wait()
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)

	if s.mcp != nil {
		s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", s.mcp)
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identify)

		r.Get("/me", s.handleMe)
		r.Post("/users/sync", s.handleSyncUser)

		r.Get("/exercises", s.handleSearchExercises)
		r.Get("/exercises/muscle-groups", s.handleMuscleGroups)

		r.Post("/routines", s.handleGenerateRoutine)
		r.Post("/routines/sketch", s.handleSketchRoutine)
		r.Post("/routines/save", s.handleSaveRoutine)
		r.Get("/routines/history", s.handleRoutineHistory)

		r.Get("/workouts/days", s.handleListDays(models.KindWorkout))
		r.Post("/workouts/days", s.handleCreateDay(models.KindWorkout))
		r.Delete("/workouts/days", s.handleDeleteDay(models.KindWorkout))
		r.Get("/workouts", s.handleQueryWorkoutSets)
		r.Post("/workouts/sets", s.handleAddWorkoutSet)
		r.Put("/workouts/sets/{id}", s.handleUpdateWorkoutSet)
		r.Delete("/workouts/sets/{id}", s.handleDeleteWorkoutSet)
		r.Post("/workouts/import", s.handleImportWorkouts)
		r.Get("/workouts/imports", s.handleImportLogs)

		r.Get("/food/days", s.handleListDays(models.KindFood))
		r.Post("/food/days", s.handleCreateDay(models.KindFood))
		r.Delete("/food/days", s.handleDeleteDay(models.KindFood))
		r.Get("/food", s.handleQueryFood)
		r.Post("/food", s.handleAddFood)
		r.Get("/food/saved", s.handleListSavedFoods)
		r.Post("/food/saved", s.handleAddSavedFood)
		r.Put("/food/{id}", s.handleUpdateFood)
		r.Delete("/food/{id}", s.handleDeleteFood)

		r.Get("/nutrition/lookup", s.handleNutritionLookup)
		r.Post("/nutrition/analyze", s.handleNutritionAnalyze)
		r.Post("/nutrition/meal-plan", s.handleMealPlan)

		r.Get("/logs", s.handleLogDates)
		r.Get("/stats", s.handleStats)
		r.Get("/summary", s.handleTrainingSummary)
	})
}
