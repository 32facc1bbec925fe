package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/claude/repcoach/internal/workoutimport"
)

// ImportWorkouts uploads an Alpha Progression export to the server.
func (c *HTTPClient) ImportWorkouts(ctx context.Context, r io.Reader, opts workoutimport.Options) (*workoutimport.Summary, error) {
	params := url.Values{}
	params.Set("warmups", strconv.FormatBool(opts.Warmups))
	if opts.Unit != "" {
		params.Set("unit", string(opts.Unit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/workouts/import?"+params.Encode(), r)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: import: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, fmt.Errorf("httpclient: import: HTTP %d: %s", resp.StatusCode, e.Error)
	}
	var sum workoutimport.Summary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		return nil, fmt.Errorf("httpclient: decode import summary: %w", err)
	}
	return &sum, nil
}
