package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoutineLog records the outcome of one routine generation.
type RoutineLog struct {
	ID         uuid.UUID        `json:"id"`
	UserID     int              `json:"user_id"`
	CreatedAt  time.Time        `json:"created_at"`
	Query      string           `json:"query"`
	TargetSets int              `json:"target_sets"`
	RepRange   string           `json:"rep_range"`
	Status     string           `json:"status"`
	Reason     *string          `json:"reason"`
	RoundTrips int              `json:"round_trips"`
	DurationMs *int             `json:"duration_ms"`
	Exercises  *json.RawMessage `json:"exercises"`
}

// InsertRoutineLog stores a routine log entry. A zero ID is replaced with a new one.
func (db *DB) InsertRoutineLog(ctx context.Context, log RoutineLog) (uuid.UUID, error) {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO routine_logs (id, user_id, query, target_sets, rep_range, status,
		 reason, round_trips, duration_ms, exercises)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		log.ID, log.UserID, log.Query, log.TargetSets, log.RepRange, log.Status,
		log.Reason, log.RoundTrips, log.DurationMs, log.Exercises,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting routine log: %w", err)
	}
	return log.ID, nil
}

// QueryRoutineLogs returns the most recent routine logs for a user.
func (db *DB) QueryRoutineLogs(ctx context.Context, userID, limit int) ([]RoutineLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, created_at, query, target_sets, rep_range, status,
		 reason, round_trips, duration_ms, exercises
		 FROM routine_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying routine logs: %w", err)
	}
	defer rows.Close()

	result := []RoutineLog{}
	for rows.Next() {
		var l RoutineLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.Query, &l.TargetSets, &l.RepRange,
			&l.Status, &l.Reason, &l.RoundTrips, &l.DurationMs, &l.Exercises); err != nil {
			return nil, fmt.Errorf("scanning routine log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
