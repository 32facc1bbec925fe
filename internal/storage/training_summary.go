package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// StrengthVolumeSummary holds aggregated strength training stats for a period.
type StrengthVolumeSummary struct {
	Sets              int     `json:"sets"`
	TotalReps         int     `json:"total_reps"`
	Tonnage           float64 `json:"tonnage"`
	Sessions          int     `json:"sessions"`
	AvgSetsPerSession float64 `json:"avg_sets_per_session"`
}

// NutritionSummary holds per-day macro averages over the logged days of a period.
type NutritionSummary struct {
	Days        int     `json:"days"`
	AvgCalories float64 `json:"avg_calories"`
	AvgProtein  float64 `json:"avg_protein"`
	AvgCarbs    float64 `json:"avg_carbs"`
	AvgFats     float64 `json:"avg_fats"`
}

// TrainingSummaryPeriod combines strength volume and nutrition for one period.
type TrainingSummaryPeriod struct {
	Period    string                 `json:"period"`
	Strength  *StrengthVolumeSummary `json:"strength,omitempty"`
	Nutrition *NutritionSummary      `json:"nutrition,omitempty"`
}

// GetTrainingSummary returns strength volume and nutrition averages per
// period in [start, end), newest period first.
func (db *DB) GetTrainingSummary(ctx context.Context, userID int, start, end time.Time, bucket string) ([]TrainingSummaryPeriod, error) {
	interval := truncInterval(bucket)
	periods := make(map[string]*TrainingSummaryPeriod)
	period := func(t time.Time) *TrainingSummaryPeriod {
		key := t.Format("2006-01-02")
		p, ok := periods[key]
		if !ok {
			p = &TrainingSummaryPeriod{Period: key}
			periods[key] = p
		}
		return p
	}

	strengthRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, date)::date AS period,
		        COUNT(*)::int,
		        COALESCE(SUM(reps), 0)::int,
		        COALESCE(SUM(weight * reps), 0)::float8,
		        COUNT(DISTINCT date)::int
		 FROM workout_sets
		 WHERE date >= $2 AND date < $3 AND user_id = $4
		 GROUP BY period`,
		interval, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying strength summary: %w", err)
	}
	defer strengthRows.Close()

	for strengthRows.Next() {
		var periodTime time.Time
		var sv StrengthVolumeSummary
		if err := strengthRows.Scan(&periodTime, &sv.Sets, &sv.TotalReps, &sv.Tonnage, &sv.Sessions); err != nil {
			return nil, fmt.Errorf("scanning strength summary: %w", err)
		}
		if sv.Sessions > 0 {
			sv.AvgSetsPerSession = float64(sv.Sets) / float64(sv.Sessions)
		}
		period(periodTime).Strength = &sv
	}
	if err := strengthRows.Err(); err != nil {
		return nil, err
	}

	// Macros are summed per day first so averages are per logged day.
	foodRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, date)::date AS period,
		        COUNT(*)::int,
		        AVG(calories)::float8, AVG(protein)::float8, AVG(carbs)::float8, AVG(fats)::float8
		 FROM (
		   SELECT date, SUM(calories) AS calories, SUM(protein) AS protein,
		          SUM(carbs) AS carbs, SUM(fats) AS fats
		   FROM food_entries
		   WHERE date >= $2 AND date < $3 AND user_id = $4
		   GROUP BY date
		 ) daily
		 GROUP BY period`,
		interval, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying nutrition summary: %w", err)
	}
	defer foodRows.Close()

	for foodRows.Next() {
		var periodTime time.Time
		var ns NutritionSummary
		if err := foodRows.Scan(&periodTime, &ns.Days, &ns.AvgCalories, &ns.AvgProtein, &ns.AvgCarbs, &ns.AvgFats); err != nil {
			return nil, fmt.Errorf("scanning nutrition summary: %w", err)
		}
		period(periodTime).Nutrition = &ns
	}
	if err := foodRows.Err(); err != nil {
		return nil, err
	}

	result := make([]TrainingSummaryPeriod, 0, len(periods))
	for _, p := range periods {
		result = append(result, *p)
	}
	slices.SortFunc(result, func(a, b TrainingSummaryPeriod) int {
		return strings.Compare(b.Period, a.Period)
	})
	return result, nil
}

// truncInterval maps a bucket name to the field date_trunc expects.
// Unknown buckets fall back to week.
func truncInterval(bucket string) string {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(bucket)), "1 ") {
	case "day":
		return "day"
	case "month":
		return "month"
	default:
		return "week"
	}
}
