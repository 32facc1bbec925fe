package storage

import (
	"context"
	"fmt"
)

// DataStats holds aggregate statistics about a user's logs.
type DataStats struct {
	WorkoutDays   int64          `json:"workout_days"`
	FoodDays      int64          `json:"food_days"`
	TotalSets     int64          `json:"total_sets"`
	TotalFoods    int64          `json:"total_food_entries"`
	TotalRoutines int64          `json:"total_routines"`
	EarliestLog   *string        `json:"earliest_log"`
	LatestLog     *string        `json:"latest_log"`
	TopExercises  []ExerciseStat `json:"top_exercises"`
}

// ExerciseStat holds summary stats for a single exercise.
type ExerciseStat struct {
	Name      string  `json:"name"`
	Sets      int64   `json:"sets"`
	TotalReps int64   `json:"total_reps"`
	MaxWeight float64 `json:"max_weight"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{TopExercises: []ExerciseStat{}}

	err := db.Pool.QueryRow(ctx,
		`SELECT
			COUNT(*) FILTER (WHERE kind = 'workout'),
			COUNT(*) FILTER (WHERE kind = 'food'),
			to_char(MIN(date), 'YYYY-MM-DD'),
			to_char(MAX(date), 'YYYY-MM-DD')
		 FROM log_days WHERE user_id = $1`, userID,
	).Scan(&stats.WorkoutDays, &stats.FoodDays, &stats.EarliestLog, &stats.LatestLog)
	if err != nil {
		return nil, fmt.Errorf("counting log days: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_sets WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM food_entries WHERE user_id = $1`, userID,
	).Scan(&stats.TotalFoods)
	if err != nil {
		return nil, fmt.Errorf("counting food entries: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM routine_logs WHERE user_id = $1 AND status = 'success'`, userID,
	).Scan(&stats.TotalRoutines)
	if err != nil {
		return nil, fmt.Errorf("counting routines: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise, COUNT(*), COALESCE(SUM(reps), 0), COALESCE(MAX(weight), 0)
		 FROM workout_sets
		 WHERE user_id = $1
		 GROUP BY exercise
		 ORDER BY COUNT(*) DESC, exercise
		 LIMIT 10`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying top exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Name, &s.Sets, &s.TotalReps, &s.MaxWeight); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
