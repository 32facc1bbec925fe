package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// InsertFoodEntry logs a food and opens the food day if needed.
func (db *DB) InsertFoodEntry(ctx context.Context, userID int, date time.Time, meal, name string, m models.Macros) (int64, error) {
	var id int64
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if err := ensureDay(ctx, tx, userID, models.KindFood, date); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`INSERT INTO food_entries (user_id, date, meal, name, protein, fats, carbs, calories)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 RETURNING id`,
			userID, date, meal, name, m.Protein, m.Fats, m.Carbs, m.Calories,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("inserting food entry: %w", err)
	}
	return id, nil
}

// UpdateFoodEntry replaces the macros of a food entry.
func (db *DB) UpdateFoodEntry(ctx context.Context, userID int, id int64, m models.Macros) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE food_entries SET protein = $3, fats = $4, carbs = $5, calories = $6
		 WHERE id = $1 AND user_id = $2`,
		id, userID, m.Protein, m.Fats, m.Carbs, m.Calories)
	if err != nil {
		return fmt.Errorf("updating food entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFoodEntry removes a food entry.
func (db *DB) DeleteFoodEntry(ctx context.Context, userID int, id int64) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM food_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting food entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// QueryFoodEntries returns the foods logged on a date.
func (db *DB) QueryFoodEntries(ctx context.Context, userID int, date time.Time) ([]models.FoodEntryRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, to_char(date, 'YYYY-MM-DD'), meal, name, protein, fats, carbs, calories, created_at
		 FROM food_entries
		 WHERE user_id = $1 AND date = $2
		 ORDER BY id ASC`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("querying food entries: %w", err)
	}
	defer rows.Close()

	result := []models.FoodEntryRow{}
	for rows.Next() {
		var r models.FoodEntryRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.Meal, &r.Name,
			&r.Protein, &r.Fats, &r.Carbs, &r.Calories, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning food entry: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// AddSavedFood adds a food to the user's saved list.
func (db *DB) AddSavedFood(ctx context.Context, userID int, name string, m models.Macros) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO saved_foods (user_id, name, protein, fats, carbs, calories)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id`,
		userID, name, m.Protein, m.Fats, m.Carbs, m.Calories,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrFoodExists
	}
	if err != nil {
		return 0, fmt.Errorf("adding saved food: %w", err)
	}
	return id, nil
}

// QuerySavedFoods returns the user's saved foods by name.
func (db *DB) QuerySavedFoods(ctx context.Context, userID int) ([]models.SavedFoodRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, protein, fats, carbs, calories
		 FROM saved_foods WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying saved foods: %w", err)
	}
	defer rows.Close()

	result := []models.SavedFoodRow{}
	for rows.Next() {
		var r models.SavedFoodRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Protein, &r.Fats, &r.Carbs, &r.Calories); err != nil {
			return nil, fmt.Errorf("scanning saved food: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
