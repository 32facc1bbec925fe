package workoutimport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/claude/repcoach/internal/models"
)

const poundsPerKilogram = 2.20462

// Unit is the weight unit imported sets are stored in.
type Unit string

const (
	Pounds    Unit = "lb"
	Kilograms Unit = "kg"
)

// ParseUnit accepts lb, lbs, kg or the empty string (pounds).
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "", "lb", "lbs":
		return Pounds, nil
	case "kg":
		return Kilograms, nil
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

// Options control how sessions become logged sets.
type Options struct {
	Warmups bool
	Unit    Unit
}

// Rows flattens a session into workout set rows in export order.
func (s Session) Rows(opts Options) []models.WorkoutSetRow {
	date := s.Date().Format(models.DateLayout)
	var rows []models.WorkoutSetRow
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.Warmup && !opts.Warmups {
				continue
			}
			rows = append(rows, models.WorkoutSetRow{
				Date:     date,
				Exercise: ex.Name,
				Weight:   convert(set.Kilograms, opts.Unit),
				Reps:     set.Reps,
			})
		}
	}
	return rows
}

// convert rounds pounds to the nearest quarter.
func convert(kg float64, unit Unit) float64 {
	if unit == Kilograms {
		return kg
	}
	return math.Round(kg*poundsPerKilogram*4) / 4
}

// SetStore is the persistence an import writes through.
type SetStore interface {
	QueryWorkoutSets(ctx context.Context, userID int, date time.Time) ([]models.WorkoutSetRow, error)
	InsertWorkoutSets(ctx context.Context, userID int, date time.Time, rows []models.WorkoutSetRow) ([]int64, error)
}

// Summary reports what an import did.
type Summary struct {
	Sessions int      `json:"sessions"`
	Sets     int      `json:"sets"`
	Dates    []string `json:"dates"`
	// Skipped lists dates that already had sets logged.
	Skipped []string `json:"skipped"`
}

// Importer loads exports into the workout log.
type Importer struct {
	store SetStore
	log   *slog.Logger
}

// New creates an Importer.
func New(store SetStore, log *slog.Logger) *Importer {
	return &Importer{store: store, log: log}
}

// Import parses r and logs every session on its date. Dates that already
// hold sets are left untouched so re-importing the same export is a no-op.
// Sessions sharing a date are merged.
func (im *Importer) Import(ctx context.Context, userID int, r io.Reader, opts Options) (*Summary, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}

	byDate := make(map[string][]models.WorkoutSetRow)
	var order []time.Time
	for _, s := range sessions {
		key := s.Date().Format(models.DateLayout)
		if _, seen := byDate[key]; !seen {
			order = append(order, s.Date())
			byDate[key] = nil
		}
		byDate[key] = append(byDate[key], s.Rows(opts)...)
	}

	sum := &Summary{Sessions: len(sessions), Dates: []string{}, Skipped: []string{}}
	for _, date := range order {
		key := date.Format(models.DateLayout)
		rows := byDate[key]
		if len(rows) == 0 {
			continue
		}
		existing, err := im.store.QueryWorkoutSets(ctx, userID, date)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", key, err)
		}
		if len(existing) > 0 {
			sum.Skipped = append(sum.Skipped, key)
			continue
		}
		ids, err := im.store.InsertWorkoutSets(ctx, userID, date, rows)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", key, err)
		}
		sum.Sets += len(ids)
		sum.Dates = append(sum.Dates, key)
	}

	im.log.Info("workout import finished",
		"user_id", userID,
		"sessions", sum.Sessions,
		"sets", sum.Sets,
		"skipped", len(sum.Skipped),
	)
	return sum, nil
}
