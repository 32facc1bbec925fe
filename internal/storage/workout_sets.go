package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

const workoutSetColumns = `id, user_id, to_char(date, 'YYYY-MM-DD'), exercise, weight, reps, created_at`

// InsertWorkoutSet logs one set and opens the workout day if needed.
func (db *DB) InsertWorkoutSet(ctx context.Context, userID int, date time.Time, exercise string, weight float64, reps int) (int64, error) {
	ids, err := db.InsertWorkoutSets(ctx, userID, date, []models.WorkoutSetRow{
		{Exercise: exercise, Weight: weight, Reps: reps},
	})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// InsertWorkoutSets batch-inserts sets for one date. Returns the new IDs in input order.
func (db *DB) InsertWorkoutSets(ctx context.Context, userID int, date time.Time, rows []models.WorkoutSetRow) ([]int64, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	query := `INSERT INTO workout_sets (user_id, date, exercise, weight, reps) VALUES `
	args := make([]any, 0, len(rows)*5)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, userID, date, r.Exercise, r.Weight, r.Reps)
	}
	query += strings.Join(valueStrings, ",") + " RETURNING id"

	ids := make([]int64, 0, len(rows))
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if err := ensureDay(ctx, tx, userID, models.KindWorkout, date); err != nil {
			return err
		}
		result, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		ids, err = pgx.CollectRows(result, pgx.RowTo[int64])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("inserting workout sets: %w", err)
	}
	return ids, nil
}

// UpdateWorkoutSet changes the weight and reps of a set.
func (db *DB) UpdateWorkoutSet(ctx context.Context, userID int, id int64, weight float64, reps int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_sets SET weight = $3, reps = $4 WHERE id = $1 AND user_id = $2`,
		id, userID, weight, reps)
	if err != nil {
		return fmt.Errorf("updating workout set %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWorkoutSet removes a set.
func (db *DB) DeleteWorkoutSet(ctx context.Context, userID int, id int64) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting workout set %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// QueryWorkoutSets returns the sets logged on a date in insertion order.
func (db *DB) QueryWorkoutSets(ctx context.Context, userID int, date time.Time) ([]models.WorkoutSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutSetColumns+`
		 FROM workout_sets
		 WHERE user_id = $1 AND date = $2
		 ORDER BY id ASC`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	result := []models.WorkoutSetRow{}
	for rows.Next() {
		var r models.WorkoutSetRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.Exercise, &r.Weight, &r.Reps, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
