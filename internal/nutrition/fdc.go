// Package nutrition looks up food facts in USDA FoodData Central and turns
// oracle replies into structured food and meal-plan entries.
package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://api.nal.usda.gov/fdc/v1"
	// MaxCount caps how many foods a single lookup may fetch.
	MaxCount = 10
)

// Facts are the label nutrients of one food. Missing values are nil.
type Facts struct {
	Item     string   `json:"item"`
	Brand    string   `json:"brand"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

// Lookuper finds nutrition facts for a food name.
type Lookuper interface {
	Lookup(ctx context.Context, name string, count int) ([]Facts, error)
}

// SearchHit is one result of a FoodData Central search.
type SearchHit struct {
	FDCID       int    `json:"fdcId"`
	Description string `json:"description"`
	BrandName   string `json:"brandName"`
	BrandOwner  string `json:"brandOwner"`
}

type nutrientValue struct {
	Value float64 `json:"value"`
}

// LabelNutrients is the per-serving nutrient panel of a branded food.
type LabelNutrients struct {
	Calories      *nutrientValue `json:"calories"`
	Protein       *nutrientValue `json:"protein"`
	Carbohydrates *nutrientValue `json:"carbohydrates"`
	Fat           *nutrientValue `json:"fat"`
}

// FDCClient talks to the FoodData Central REST API.
type FDCClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewFDCClient creates a client. An empty baseURL uses the public API.
func NewFDCClient(baseURL, apiKey string, log *slog.Logger) *FDCClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FDCClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// Search returns up to pageSize foods matching query.
func (c *FDCClient) Search(ctx context.Context, query string, pageSize int) ([]SearchHit, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(pageSize))

	var resp struct {
		Foods []SearchHit `json:"foods"`
	}
	if err := c.get(ctx, "/foods/search", params, &resp); err != nil {
		return nil, fmt.Errorf("searching foods %q: %w", query, err)
	}
	return resp.Foods, nil
}

// LabelNutrients fetches the label nutrient panel of one food.
func (c *FDCClient) LabelNutrients(ctx context.Context, fdcID int) (*LabelNutrients, error) {
	var resp struct {
		LabelNutrients *LabelNutrients `json:"labelNutrients"`
	}
	if err := c.get(ctx, "/food/"+strconv.Itoa(fdcID), url.Values{}, &resp); err != nil {
		return nil, fmt.Errorf("fetching food %d: %w", fdcID, err)
	}
	if resp.LabelNutrients == nil {
		return &LabelNutrients{}, nil
	}
	return resp.LabelNutrients, nil
}

// Lookup searches for name and fetches the nutrients of up to count matches
// concurrently. Results keep the search order.
func (c *FDCClient) Lookup(ctx context.Context, name string, count int) ([]Facts, error) {
	count = clampCount(count)
	hits, err := c.Search(ctx, name, count)
	if err != nil {
		return nil, err
	}
	if len(hits) > count {
		hits = hits[:count]
	}

	facts := make([]Facts, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, hit := range hits {
		g.Go(func() error {
			n, err := c.LabelNutrients(gctx, hit.FDCID)
			if err != nil {
				return err
			}
			facts[i] = factsFrom(hit, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Debug("fdc lookup", "food", name, "results", len(facts))
	return facts, nil
}

func (c *FDCClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func factsFrom(hit SearchHit, n *LabelNutrients) Facts {
	brand := hit.BrandName
	if brand == "" {
		brand = hit.BrandOwner
	}
	if brand == "" {
		brand = "Generic"
	}
	return Facts{
		Item:     hit.Description,
		Brand:    brand,
		Calories: valueOf(n.Calories),
		Protein:  valueOf(n.Protein),
		Carbs:    valueOf(n.Carbohydrates),
		Fat:      valueOf(n.Fat),
	}
}

func valueOf(v *nutrientValue) *float64 {
	if v == nil {
		return nil
	}
	f := v.Value
	return &f
}

func clampCount(count int) int {
	if count < 1 {
		return 1
	}
	if count > MaxCount {
		return MaxCount
	}
	return count
}
