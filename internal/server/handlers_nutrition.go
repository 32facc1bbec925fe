package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/repcoach/internal/nutrition"
	"github.com/claude/repcoach/internal/oracle"
)

const maxImageBytes = 10 << 20

func writeNutritionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, nutrition.ErrNoInput):
		status = http.StatusBadRequest
	case errors.Is(err, oracle.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, nutrition.ErrTooManyRoundTrips):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleNutritionLookup(w http.ResponseWriter, r *http.Request) {
	food := strings.TrimSpace(r.URL.Query().Get("food"))
	if food == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "food parameter required"})
		return
	}
	facts, err := s.foods.Lookup(r.Context(), food, queryInt(r, "count", 1))
	if err != nil {
		s.log.Error("nutrition lookup failed", "food", food, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "nutrition database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, facts)
}

// handleNutritionAnalyze accepts multipart form fields message, pageSize and
// an optional image file.
func (s *Server) handleNutritionAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+maxBodyBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form: " + err.Error()})
		return
	}

	req := nutrition.AnalyzeRequest{Message: r.FormValue("message")}
	if ps := r.FormValue("pageSize"); ps != "" {
		n, err := strconv.Atoi(ps)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pageSize must be a number"})
			return
		}
		req.PageSize = n
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading image: " + err.Error()})
		return
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading image: " + err.Error()})
			return
		}
		req.Image = data
		req.MIMEType = header.Header.Get("Content-Type")
	}

	res, err := s.assistant.Analyze(r.Context(), req)
	if err != nil {
		s.log.Warn("nutrition analysis failed", "error", err)
		writeNutritionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type mealPlanRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleMealPlan(w http.ResponseWriter, r *http.Request) {
	var req mealPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := s.meals.Plan(r.Context(), req.Message)
	if err != nil {
		s.log.Warn("meal plan failed", "error", err)
		writeNutritionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
