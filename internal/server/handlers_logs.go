package server

import (
	"net/http"
	"strings"

	"github.com/claude/repcoach/internal/models"
)

type dayRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleListDays(kind models.LogKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dates, err := s.db.QueryLogDates(r.Context(), userIDFromContext(r), kind)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, dates)
	}
}

func (s *Server) handleCreateDay(kind models.LogKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dayRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		date, ok := requireDate(w, req.Date)
		if !ok {
			return
		}
		if err := s.db.CreateLogDay(r.Context(), userIDFromContext(r), kind, date); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"date": date.Format(models.DateLayout), "kind": string(kind)})
	}
}

// handleDeleteDay removes a day and its entries. The date comes from ?date=.
func (s *Server) handleDeleteDay(kind models.LogKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("date")
		if raw == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date parameter required"})
			return
		}
		date, ok := requireDate(w, raw)
		if !ok {
			return
		}
		if err := s.db.DeleteLogDay(r.Context(), userIDFromContext(r), kind, date); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleQueryWorkoutSets(w http.ResponseWriter, r *http.Request) {
	date, ok := requireDate(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	sets, err := s.db.QueryWorkoutSets(r.Context(), userIDFromContext(r), date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

type workoutSetRequest struct {
	Date     string  `json:"date"`
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
}

func (s *Server) handleAddWorkoutSet(w http.ResponseWriter, r *http.Request) {
	var req workoutSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := requireDate(w, req.Date)
	if !ok {
		return
	}
	req.Exercise = strings.TrimSpace(req.Exercise)
	if req.Exercise == "" || req.Weight < 0 || req.Reps < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise is required; weight and reps must be non-negative"})
		return
	}
	id, err := s.db.InsertWorkoutSet(r.Context(), userIDFromContext(r), date, req.Exercise, req.Weight, req.Reps)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateWorkoutSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req workoutSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Weight < 0 || req.Reps < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight and reps must be non-negative"})
		return
	}
	if err := s.db.UpdateWorkoutSet(r.Context(), userIDFromContext(r), id, req.Weight, req.Reps); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteWorkoutSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteWorkoutSet(r.Context(), userIDFromContext(r), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQueryFood(w http.ResponseWriter, r *http.Request) {
	date, ok := requireDate(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	entries, err := s.db.QueryFoodEntries(r.Context(), userIDFromContext(r), date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type foodRequest struct {
	Date string `json:"date"`
	Meal string `json:"meal"`
	Name string `json:"name"`
	models.Macros
}

func (req foodRequest) validMacros() bool {
	m := req.Macros
	return m.Protein >= 0 && m.Fats >= 0 && m.Carbs >= 0 && m.Calories >= 0
}

func (s *Server) handleAddFood(w http.ResponseWriter, r *http.Request) {
	var req foodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := requireDate(w, req.Date)
	if !ok {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || !req.validMacros() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required; macros must be non-negative"})
		return
	}
	meal := strings.TrimSpace(req.Meal)
	if meal == "" {
		meal = "Snacks"
	}
	id, err := s.db.InsertFoodEntry(r.Context(), userIDFromContext(r), date, meal, req.Name, req.Macros)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateFood(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req foodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.validMacros() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "macros must be non-negative"})
		return
	}
	if err := s.db.UpdateFoodEntry(r.Context(), userIDFromContext(r), id, req.Macros); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteFood(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteFoodEntry(r.Context(), userIDFromContext(r), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSavedFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := s.db.QuerySavedFoods(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, foods)
}

func (s *Server) handleAddSavedFood(w http.ResponseWriter, r *http.Request) {
	var req foodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || !req.validMacros() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required; macros must be non-negative"})
		return
	}
	id, err := s.db.AddSavedFood(r.Context(), userIDFromContext(r), req.Name, req.Macros)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}
