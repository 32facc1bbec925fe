package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used in URLs, JSON and storage.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// LogKind separates workout days from food days.
type LogKind string

const (
	KindWorkout LogKind = "workout"
	KindFood    LogKind = "food"
)

// WorkoutSetRow is one logged set.
type WorkoutSetRow struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"-"`
	Date      string    `json:"date"`
	Exercise  string    `json:"exercise"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	CreatedAt time.Time `json:"created_at"`
}

// Macros are the tracked nutrition values of a food.
type Macros struct {
	Protein  float64 `json:"protein"`
	Fats     float64 `json:"fats"`
	Carbs    float64 `json:"carbs"`
	Calories float64 `json:"calories"`
}

// FoodEntryRow is one logged food.
type FoodEntryRow struct {
	ID     int64  `json:"id"`
	UserID int    `json:"-"`
	Date   string `json:"date"`
	Meal   string `json:"meal"`
	Name   string `json:"name"`
	Macros
	CreatedAt time.Time `json:"created_at"`
}

// SavedFoodRow is a food in a user's saved list.
type SavedFoodRow struct {
	ID     int64  `json:"id"`
	UserID int    `json:"-"`
	Name   string `json:"name"`
	Macros
}

// LogDates lists the dates that have workout or food logs.
type LogDates struct {
	WorkoutDates []string `json:"workoutDates"`
	FoodDates    []string `json:"foodDates"`
}
