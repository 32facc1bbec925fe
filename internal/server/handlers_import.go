package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/workoutimport"
)

const maxImportBytes = 5 << 20

// handleImportWorkouts accepts an Alpha Progression CSV export as the raw
// body or as the "file" field of a multipart form. Query parameters:
// warmups=true keeps warmup sets, unit=kg skips the pound conversion.
func (s *Server) handleImportWorkouts(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "import not configured"})
		return
	}

	opts := workoutimport.Options{}
	q := r.URL.Query()
	if v := q.Get("warmups"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "warmups must be true or false"})
			return
		}
		opts.Warmups = b
	}
	unit, err := workoutimport.ParseUnit(q.Get("unit"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	opts.Unit = unit

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form: " + err.Error()})
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field required"})
			return
		}
		defer f.Close()
		body = f
	}

	uid := userIDFromContext(r)
	start := time.Now()
	sum, err := s.importer.Import(r.Context(), uid, body, opts)
	s.logImport(uid, sum, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		status := importStatus(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("workout import failed", "user_id", uid, "error", err)
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// importStatus maps an import error to a status. Storage failures are 500.
func importStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, workoutimport.ErrMalformed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.db.QueryImportLogs(r.Context(), userIDFromContext(r), queryInt(r, "limit", 50))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// logImport records an import outcome to import_logs in the background.
func (s *Server) logImport(uid int, sum *workoutimport.Summary, importErr error, durationMs int) {
	entry := storage.ImportLog{
		UserID:     uid,
		Source:     "alpha_progression",
		Status:     "success",
		DurationMs: &durationMs,
	}
	if importErr != nil {
		entry.Status = "error"
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}
	if sum != nil {
		entry.Sessions = sum.Sessions
		entry.SetsInserted = sum.Sets
		entry.SkippedDays = len(sum.Skipped)
		if raw, err := json.Marshal(sum.Dates); err == nil {
			msg := json.RawMessage(raw)
			entry.Dates = &msg
		}
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := contextWithTimeout()
		defer cancel()
		if _, err := s.db.InsertImportLog(ctx, entry); err != nil {
			s.log.Error("failed to log import", "user_id", uid, "error", err)
		}
	}()
}
