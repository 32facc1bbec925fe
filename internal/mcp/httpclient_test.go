package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/nutrition"
	"github.com/claude/repcoach/internal/routine"
	"github.com/claude/repcoach/internal/workoutimport"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQueryWorkoutSets verifies the date parameter and array decoding.
func TestQueryWorkoutSets(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("date"); got != "2026-03-02" {
				t.Errorf("date=%q, want 2026-03-02", got)
			}
			writeTestJSON(t, w, http.StatusOK, []models.WorkoutSetRow{
				{ID: 1, Date: "2026-03-02", Exercise: "Incline Press", Weight: 50, Reps: 10},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL + "/")
	sets, err := client.QueryWorkoutSets(context.Background(), 1, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 1 || sets[0].Reps != 10 {
		t.Errorf("sets = %+v", sets)
	}
}

// TestGetLogDates verifies the object response decodes.
func TestGetLogDates(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/logs": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusOK, models.LogDates{WorkoutDates: []string{"2026-03-01"}, FoodDates: []string{"2026-03-02"}})
		},
	})
	defer ts.Close()

	dates, err := NewHTTPClient(ts.URL).GetLogDates(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates.WorkoutDates) != 1 || dates.FoodDates[0] != "2026-03-02" {
		t.Errorf("dates = %+v", dates)
	}
}

// TestLookup verifies the nutrition lookup parameters.
func TestLookup(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/nutrition/lookup": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("food") != "oats" || r.URL.Query().Get("count") != "2" {
				t.Errorf("query = %s", r.URL.RawQuery)
			}
			writeTestJSON(t, w, http.StatusOK, []nutrition.Facts{{Item: "Oats", Brand: "Generic"}})
		},
	})
	defer ts.Close()

	facts, err := NewHTTPClient(ts.URL).Lookup(context.Background(), "oats", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 || facts[0].Protein != nil {
		t.Errorf("facts = %+v", facts)
	}
}

// TestGenerateRemote verifies the request body and the conversion back into
// a routine result.
func TestGenerateRemote(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/routines": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["targetSets"] != 10.0 || body["message"] != "chest day" {
				t.Errorf("body = %v", body)
			}
			writeTestJSON(t, w, http.StatusOK, map[string]any{
				"reply": "ok",
				"exercises": []map[string]any{
					{"name": "Incline Press", "sets": 5, "reps": "8-12", "rest": "3-5 mins", "rest_tier": "long"},
					{"name": "Dumbbell Press", "sets": 5, "reps": "8-12", "rest": "60-90s", "rest_tier": "short"},
				},
				"round_trips": 2,
			})
		},
	})
	defer ts.Close()

	res, err := NewHTTPClient(ts.URL).Generate(context.Background(), routine.Preferences{TargetTotalSets: 10, Query: "chest day"})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalSets() != 10 || res.Exercises[0].Rest != routine.RestLong || res.RoundTrips != 2 {
		t.Errorf("result = %+v", res)
	}
}

// TestGenerateRemoteFailure verifies a failure reason maps back to its sentinel.
func TestGenerateRemoteFailure(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/routines": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusUnprocessableEntity, map[string]string{
				"error": "no candidate exercises found", "reason": "no_candidates_found",
			})
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).Generate(context.Background(), routine.Preferences{TargetTotalSets: 3, Query: "x"})
	if !errors.Is(err, routine.ErrNoCandidatesFound) {
		t.Errorf("err = %v, want ErrNoCandidatesFound", err)
	}
}

// TestHTTPError verifies non-200 responses return an error.
func TestHTTPError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	if _, err := NewHTTPClient(ts.URL).SearchExercises(context.Background(), "press", 5); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

// TestHTTPClientImportWorkouts verifies the upload query and summary decoding.
func TestHTTPClientImportWorkouts(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/import": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("unit") != "kg" || r.URL.Query().Get("warmups") != "true" {
				t.Errorf("query = %s", r.URL.RawQuery)
			}
			if r.Header.Get("Content-Type") != "text/csv" {
				t.Errorf("content type = %q", r.Header.Get("Content-Type"))
			}
			writeTestJSON(t, w, http.StatusOK, workoutimport.Summary{Sessions: 1, Sets: 4, Dates: []string{"2026-02-17"}})
		},
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	sum, err := c.ImportWorkouts(context.Background(), strings.NewReader("csv"), workoutimport.Options{Warmups: true, Unit: workoutimport.Kilograms})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Sets != 4 || sum.Dates[0] != "2026-02-17" {
		t.Errorf("summary = %+v", sum)
	}

	bad := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/import": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusBadRequest, map[string]string{"error": "line 1: set outside an exercise"})
		},
	})
	defer bad.Close()
	if _, err := NewHTTPClient(bad.URL).ImportWorkouts(context.Background(), strings.NewReader("x"), workoutimport.Options{}); err == nil || !strings.Contains(err.Error(), "set outside") {
		t.Errorf("err = %v", err)
	}
}
