package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/routine"
	"github.com/claude/repcoach/internal/storage"
)

// routineRequest is the inbound body of POST /api/v1/routines.
type routineRequest struct {
	TargetSets int      `json:"targetSets"`
	RepRange   string   `json:"repRange"`
	Equipment  []string `json:"equipment"`
	Injuries   string   `json:"injuries"`
	Message    string   `json:"message"`
	Weight     float64  `json:"weight"`
}

func (req routineRequest) preferences() routine.Preferences {
	return routine.Preferences{
		TargetTotalSets: req.TargetSets,
		RepRange:        req.RepRange,
		Equipment:       req.Equipment,
		Injuries:        req.Injuries,
		Query:           req.Message,
		DefaultWeight:   req.Weight,
	}
}

type routineExercise struct {
	Name     string           `json:"name"`
	Exercise string           `json:"exercise"`
	Sets     int              `json:"sets"`
	Reps     string           `json:"reps"`
	Rest     string           `json:"rest"`
	RestTier routine.RestTier `json:"rest_tier"`
	Weight   float64          `json:"weight"`
}

type routineResponse struct {
	Reply      string            `json:"reply"`
	Exercises  []routineExercise `json:"exercises"`
	RoundTrips int               `json:"round_trips"`
}

func newRoutineResponse(res *routine.Result) routineResponse {
	out := routineResponse{
		Reply:      res.Narrative,
		Exercises:  make([]routineExercise, 0, len(res.Exercises)),
		RoundTrips: res.RoundTrips,
	}
	for _, ex := range res.Exercises {
		out.Exercises = append(out.Exercises, routineExercise{
			Name:     ex.Name,
			Exercise: ex.Name,
			Sets:     ex.Sets,
			Reps:     ex.Reps,
			Rest:     ex.Rest.Label(),
			RestTier: ex.Rest,
			Weight:   ex.Weight,
		})
	}
	return out
}

// routineStatus maps a planning failure reason to an HTTP status.
func routineStatus(reason string) int {
	switch reason {
	case "invalid_preferences":
		return http.StatusBadRequest
	case "oracle_unavailable":
		return http.StatusServiceUnavailable
	case "planning_timeout", "no_candidates_found":
		return http.StatusUnprocessableEntity
	case "canceled":
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeRoutineError(w http.ResponseWriter, err error) {
	reason := routine.Reason(err)
	writeJSON(w, routineStatus(reason), map[string]string{"error": err.Error(), "reason": reason})
}

func (s *Server) handleGenerateRoutine(w http.ResponseWriter, r *http.Request) {
	var req routineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	prefs := req.preferences()
	uid := userIDFromContext(r)

	start := time.Now()
	res, err := s.planner.Generate(r.Context(), prefs)
	s.recordRoutine(uid, prefs, res, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		writeRoutineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoutineResponse(res))
}

// recordRoutine writes the generation outcome to routine_logs without
// blocking the response.
func (s *Server) recordRoutine(uid int, prefs routine.Preferences, res *routine.Result, genErr error, durationMs int) {
	entry := storage.RoutineLog{
		UserID:     uid,
		Query:      prefs.Query,
		TargetSets: prefs.TargetTotalSets,
		RepRange:   prefs.RepRange,
		Status:     "success",
		DurationMs: &durationMs,
	}
	if genErr != nil {
		entry.Status = "error"
		reason := routine.Reason(genErr)
		entry.Reason = &reason
	}
	if res != nil {
		entry.RoundTrips = res.RoundTrips
		if raw, err := json.Marshal(res.Exercises); err == nil {
			msg := json.RawMessage(raw)
			entry.Exercises = &msg
		}
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := contextWithTimeout()
		defer cancel()
		if _, err := s.db.InsertRoutineLog(ctx, entry); err != nil {
			s.log.Error("failed to log routine", "user_id", uid, "error", err)
		}
	}()
}

// contextWithTimeout returns a background context with a 5-second timeout for async logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}

type sketchRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleSketchRoutine(w http.ResponseWriter, r *http.Request) {
	var req sketchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sk, err := s.sketcher.Sketch(r.Context(), req.Message)
	if err != nil {
		writeRoutineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reply": sk.Reply, "sets": sk.Sets})
}

type savedSet struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
}

type saveRoutineRequest struct {
	Date string     `json:"date"`
	Sets []savedSet `json:"sets"`
}

// handleSaveRoutine logs a generated routine as workout sets on a date.
func (s *Server) handleSaveRoutine(w http.ResponseWriter, r *http.Request) {
	var req saveRoutineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := requireDate(w, req.Date)
	if !ok {
		return
	}
	if len(req.Sets) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no sets to save"})
		return
	}

	rows := make([]models.WorkoutSetRow, 0, len(req.Sets))
	for _, set := range req.Sets {
		if set.Exercise == "" || set.Reps < 0 || set.Weight < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "each set needs an exercise and non-negative weight and reps"})
			return
		}
		rows = append(rows, models.WorkoutSetRow{Exercise: set.Exercise, Weight: set.Weight, Reps: set.Reps})
	}

	ids, err := s.db.InsertWorkoutSets(r.Context(), userIDFromContext(r), date, rows)
	if err != nil {
		s.log.Error("saving routine", "error", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"date": date.Format(models.DateLayout), "ids": ids})
}

func (s *Server) handleRoutineHistory(w http.ResponseWriter, r *http.Request) {
	logs, err := s.db.QueryRoutineLogs(r.Context(), userIDFromContext(r), queryInt(r, "limit", 50))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
