package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/routine"
	"github.com/mark3labs/mcp-go/mcp"
)

// logDate parses an optional YYYY-MM-DD date, defaulting to today (UTC).
func logDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return models.ParseDate(s)
}

// --- Tool definitions ---

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog by name. Returns name, primary muscles, equipment, mechanic and fatigue score (1 = most fatiguing)."),
	mcp.WithString("query", mcp.Description("Case-insensitive substring of the exercise name. Empty returns the first entries.")),
	mcp.WithNumber("limit", mcp.Description("Maximum results. Defaults to 20.")),
)

var toolListMuscleGroups = mcp.NewTool("list_muscle_groups",
	mcp.WithDescription("List the muscle-group terms and equipment values the catalog understands."),
)

var toolGenerateRoutine = mcp.NewTool("generate_routine",
	mcp.WithDescription("Generate a workout routine. The planner searches the catalog, picks exercises and distributes exactly target_sets sets across them. Compound, high-fatigue lifts come first with long rest."),
	mcp.WithNumber("target_sets", mcp.Required(), mcp.Description("Total number of sets in the routine (at least 1)")),
	mcp.WithString("rep_range", mcp.Description("Rep range label. Defaults to '8-12'."), mcp.Enum(routine.RepRanges...)),
	mcp.WithArray("equipment", mcp.WithStringItems(), mcp.Description("Available equipment, e.g. ['dumbbell', 'barbell']")),
	mcp.WithString("injuries", mcp.Description("Injuries or limitations to work around")),
	mcp.WithString("query", mcp.Description("Free-text request, e.g. 'push day' or 'legs and glutes'")),
)

var toolGetWorkoutLog = mcp.NewTool("get_workout_log",
	mcp.WithDescription("Return the logged workout sets (exercise, weight, reps) for a date."),
	mcp.WithString("date", mcp.Description("Date (YYYY-MM-DD). Defaults to today.")),
)

var toolGetFoodLog = mcp.NewTool("get_food_log",
	mcp.WithDescription("Return the logged foods for a date grouped by meal, with macro totals."),
	mcp.WithString("date", mcp.Description("Date (YYYY-MM-DD). Defaults to today.")),
)

var toolGetNutritionData = mcp.NewTool("get_nutrition_data",
	mcp.WithDescription("Look up nutrition facts (calories, protein, carbs, fat per label serving) in USDA FoodData Central."),
	mcp.WithString("foodName", mcp.Required(), mcp.Description("The name of the food")),
	mcp.WithNumber("count", mcp.Description("Number of matches to return (1-10). Defaults to 1.")),
)

// --- Tool handlers ---

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	exercises, err := h.exercises.SearchExercises(ctx, req.GetString("query", ""), limit)
	if err != nil {
		h.log.Error("mcp search_exercises", "error", err)
		return mcp.NewToolResultError("search failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"exercises": exercises})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listMuscleGroups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(map[string][]string{
		"muscle_groups": catalog.MuscleGroups,
		"equipment":     catalog.Equipment,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) generateRoutine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefs := routine.Preferences{
		TargetTotalSets: req.GetInt("target_sets", 0),
		RepRange:        req.GetString("rep_range", "8-12"),
		Equipment:       req.GetStringSlice("equipment", nil),
		Injuries:        req.GetString("injuries", ""),
		Query:           req.GetString("query", ""),
	}

	res, err := h.planner.Generate(ctx, prefs)
	if err != nil {
		reason := routine.Reason(err)
		h.log.Warn("mcp generate_routine", "reason", reason, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("routine generation failed (%s): %v", reason, err)), nil
	}

	exercises := make([]map[string]any, 0, len(res.Exercises))
	for _, ex := range res.Exercises {
		exercises = append(exercises, map[string]any{
			"name":   ex.Name,
			"sets":   ex.Sets,
			"reps":   ex.Reps,
			"rest":   ex.Rest.Label(),
			"weight": ex.Weight,
		})
	}
	result, err := mcp.NewToolResultJSON(map[string]any{
		"reply":      res.Narrative,
		"exercises":  exercises,
		"total_sets": res.TotalSets(),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := logDate(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	sets, err := h.ds.QueryWorkoutSets(ctx, uid, date)
	if err != nil {
		h.log.Error("mcp get_workout_log", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	volume := 0.0
	for _, s := range sets {
		volume += s.Weight * float64(s.Reps)
	}
	result, err := mcp.NewToolResultJSON(map[string]any{
		"date":   date.Format(models.DateLayout),
		"sets":   sets,
		"volume": volume,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getFoodLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := logDate(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	entries, err := h.ds.QueryFoodEntries(ctx, uid, date)
	if err != nil {
		h.log.Error("mcp get_food_log", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	meals := map[string][]models.FoodEntryRow{}
	var totals models.Macros
	for _, e := range entries {
		meals[e.Meal] = append(meals[e.Meal], e)
		totals.Protein += e.Protein
		totals.Fats += e.Fats
		totals.Carbs += e.Carbs
		totals.Calories += e.Calories
	}
	result, err := mcp.NewToolResultJSON(map[string]any{
		"date":   date.Format(models.DateLayout),
		"meals":  meals,
		"totals": totals,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getNutritionData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	food, err := req.RequireString("foodName")
	if err != nil || strings.TrimSpace(food) == "" {
		return mcp.NewToolResultError("foodName parameter is required"), nil
	}

	facts, err := h.foods.Lookup(ctx, food, req.GetInt("count", 1))
	if err != nil {
		h.log.Error("mcp get_nutrition_data", "food", food, "error", err)
		return mcp.NewToolResultError("lookup failed: " + err.Error()), nil
	}
	if len(facts) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No data found for %q.", food)), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"results": facts})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
