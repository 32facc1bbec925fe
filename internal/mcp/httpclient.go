package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/nutrition"
	"github.com/claude/repcoach/internal/routine"
)

// HTTPClient implements the MCP backends by calling the RepCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time checks: HTTPClient satisfies every backend.
var (
	_ DataSource         = (*HTTPClient)(nil)
	_ ExerciseSearcher   = (*HTTPClient)(nil)
	_ Planner            = (*HTTPClient)(nil)
	_ nutrition.Lookuper = (*HTTPClient)(nil)
)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
// The timeout covers a full multi-round-trip routine generation.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Backends returns a Backends that routes every tool through c.
func (c *HTTPClient) Backends() Backends {
	return Backends{Data: c, Exercises: c, Planner: c, Foods: c}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any) ([]byte, int, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("httpclient: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("httpclient: read body: %w", err)
	}
	return data, resp.StatusCode, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	body, status, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	return body, nil
}

func dateParams(date time.Time) url.Values {
	v := url.Values{}
	v.Set("date", date.Format(models.DateLayout))
	return v
}

func (c *HTTPClient) QueryWorkoutSets(ctx context.Context, _ int, date time.Time) ([]models.WorkoutSetRow, error) {
	body, err := c.get(ctx, "/api/v1/workouts", dateParams(date))
	if err != nil {
		return nil, err
	}
	var sets []models.WorkoutSetRow
	if err := json.Unmarshal(body, &sets); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout sets: %w", err)
	}
	return sets, nil
}

func (c *HTTPClient) QueryFoodEntries(ctx context.Context, _ int, date time.Time) ([]models.FoodEntryRow, error) {
	body, err := c.get(ctx, "/api/v1/food", dateParams(date))
	if err != nil {
		return nil, err
	}
	var entries []models.FoodEntryRow
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("httpclient: decode food entries: %w", err)
	}
	return entries, nil
}

func (c *HTTPClient) GetLogDates(ctx context.Context, _ int) (*models.LogDates, error) {
	body, err := c.get(ctx, "/api/v1/logs", nil)
	if err != nil {
		return nil, err
	}
	var dates models.LogDates
	if err := json.Unmarshal(body, &dates); err != nil {
		return nil, fmt.Errorf("httpclient: decode log dates: %w", err)
	}
	return &dates, nil
}

func (c *HTTPClient) SearchExercises(ctx context.Context, query string, limit int) ([]catalog.Exercise, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	body, err := c.get(ctx, "/api/v1/exercises", params)
	if err != nil {
		return nil, err
	}
	var exercises []catalog.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) Lookup(ctx context.Context, name string, count int) ([]nutrition.Facts, error) {
	params := url.Values{}
	params.Set("food", name)
	params.Set("count", strconv.Itoa(count))
	body, err := c.get(ctx, "/api/v1/nutrition/lookup", params)
	if err != nil {
		return nil, err
	}
	var facts []nutrition.Facts
	if err := json.Unmarshal(body, &facts); err != nil {
		return nil, fmt.Errorf("httpclient: decode nutrition facts: %w", err)
	}
	return facts, nil
}

type remoteRoutine struct {
	Reply     string `json:"reply"`
	Exercises []struct {
		Name     string           `json:"name"`
		Sets     int              `json:"sets"`
		Reps     string           `json:"reps"`
		RestTier routine.RestTier `json:"rest_tier"`
		Weight   float64          `json:"weight"`
	} `json:"exercises"`
	RoundTrips int    `json:"round_trips"`
	Error      string `json:"error"`
	Reason     string `json:"reason"`
}

// reasonErrors maps the server's failure reasons back to routine sentinels.
var reasonErrors = map[string]error{
	"invalid_preferences":             routine.ErrInvalidPreferences,
	"oracle_unavailable":              routine.ErrOracleUnavailable,
	"planning_timeout":                routine.ErrPlanningTimeout,
	"no_candidates_found":             routine.ErrNoCandidatesFound,
	"allocator_precondition_violated": routine.ErrAllocatorPrecondition,
}

// Generate asks the remote server to plan a routine.
func (c *HTTPClient) Generate(ctx context.Context, prefs routine.Preferences) (*routine.Result, error) {
	req := map[string]any{
		"targetSets": prefs.TargetTotalSets,
		"repRange":   prefs.RepRange,
		"equipment":  prefs.Equipment,
		"injuries":   prefs.Injuries,
		"message":    prefs.Query,
		"weight":     prefs.DefaultWeight,
	}
	body, status, err := c.do(ctx, http.MethodPost, "/api/v1/routines", nil, req)
	if err != nil {
		return nil, err
	}

	var rr remoteRoutine
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("httpclient: decode routine (status %d): %w", status, err)
	}
	if status != http.StatusOK {
		if sentinel, ok := reasonErrors[rr.Reason]; ok {
			return nil, fmt.Errorf("%w: %s", sentinel, rr.Error)
		}
		return nil, fmt.Errorf("httpclient: /api/v1/routines returned %d: %s", status, rr.Error)
	}

	res := &routine.Result{Narrative: rr.Reply, RoundTrips: rr.RoundTrips}
	for _, ex := range rr.Exercises {
		res.Exercises = append(res.Exercises, routine.FinalizedExercise{
			Name:   ex.Name,
			Sets:   ex.Sets,
			Reps:   ex.Reps,
			Rest:   ex.RestTier,
			Weight: ex.Weight,
		})
	}
	return res, nil
}
