package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// CreateLogDay opens a workout or food log for a date.
func (db *DB) CreateLogDay(ctx context.Context, userID int, kind models.LogKind, date time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO log_days (user_id, kind, date) VALUES ($1, $2, $3)`,
		userID, string(kind), date)
	if isUniqueViolation(err) {
		return ErrDayExists
	}
	if err != nil {
		return fmt.Errorf("creating %s day: %w", kind, err)
	}
	return nil
}

// DeleteLogDay removes a log day together with its entries.
func (db *DB) DeleteLogDay(ctx context.Context, userID int, kind models.LogKind, date time.Time) error {
	entries := "workout_sets"
	if kind == models.KindFood {
		entries = "food_entries"
	}

	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM log_days WHERE user_id = $1 AND kind = $2 AND date = $3`,
			userID, string(kind), date)
		if err != nil {
			return fmt.Errorf("deleting %s day: %w", kind, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrDayNotFound
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM `+entries+` WHERE user_id = $1 AND date = $2`,
			userID, date); err != nil {
			return fmt.Errorf("deleting %s entries: %w", kind, err)
		}
		return nil
	})
}

// QueryLogDates returns the dates with a log of the given kind, newest first.
func (db *DB) QueryLogDates(ctx context.Context, userID int, kind models.LogKind) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT to_char(date, 'YYYY-MM-DD') FROM log_days
		 WHERE user_id = $1 AND kind = $2
		 ORDER BY date DESC`,
		userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying %s dates: %w", kind, err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// GetLogDates returns both workout and food dates for a user.
func (db *DB) GetLogDates(ctx context.Context, userID int) (*models.LogDates, error) {
	workouts, err := db.QueryLogDates(ctx, userID, models.KindWorkout)
	if err != nil {
		return nil, err
	}
	foods, err := db.QueryLogDates(ctx, userID, models.KindFood)
	if err != nil {
		return nil, err
	}
	return &models.LogDates{WorkoutDates: workouts, FoodDates: foods}, nil
}

// ensureDay opens the day if needed so entries always have a log day.
func ensureDay(ctx context.Context, tx pgx.Tx, userID int, kind models.LogKind, date time.Time) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO log_days (user_id, kind, date) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		userID, string(kind), date)
	if err != nil {
		return fmt.Errorf("ensuring %s day: %w", kind, err)
	}
	return nil
}
