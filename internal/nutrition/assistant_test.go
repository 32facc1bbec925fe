package nutrition

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/claude/repcoach/internal/oracle"
)

type stubOracle struct {
	mu       sync.Mutex
	replies  []*oracle.Message
	err      error
	requests []oracle.Request
}

func (s *stubOracle) Converse(ctx context.Context, req oracle.Request) (*oracle.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	i := len(s.requests) - 1
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return s.replies[i], nil
}

func toolCall(id, food string, count float64) oracle.ToolCallPart {
	return oracle.ToolCallPart{ID: id, Name: "get_nutrition_data", Args: map[string]any{"foodName": food, "count": count}}
}

// TestAnalyze verifies the tool loop, lookup arguments and final parsing.
func TestAnalyze(t *testing.T) {
	o := &stubOracle{replies: []*oracle.Message{
		{Parts: []oracle.Part{toolCall("1", "banana", 2)}},
		{Parts: []oracle.Part{oracle.TextPart{Text: "Name:Banana, Protein:1.3, Fats:0.4, Carbs:27, Calories:105"}}},
	}}
	foods := &countingLookup{facts: []Facts{{Item: "BANANA", Brand: "Generic", Calories: ptr(105)}}}
	a := NewAssistant(o, foods, 0, discardLogger())

	res, err := a.Analyze(context.Background(), AnalyzeRequest{Message: "a banana", Image: []byte{0xff, 0xd8}, PageSize: 2})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Name != "Banana" || res.Items[0].Carbs != 27 {
		t.Errorf("items = %+v", res.Items)
	}
	if res.RoundTrips != 2 || foods.calls != 1 {
		t.Errorf("round trips = %d, lookups = %d", res.RoundTrips, foods.calls)
	}

	first := o.requests[0].History[0]
	if !strings.Contains(first.Text(), "top 2 results") {
		t.Errorf("first turn = %q", first.Text())
	}
	if img, ok := first.Parts[1].(oracle.ImagePart); !ok || img.MIMEType != "image/jpeg" {
		t.Errorf("image part = %+v", first.Parts[1])
	}
	result := o.requests[1].History[2].Parts[0].(oracle.ToolResultPart)
	if !strings.Contains(result.Content, `"item":"BANANA"`) {
		t.Errorf("tool result = %q", result.Content)
	}
}

// TestAnalyzeToolFailures verifies lookup errors and empty results become
// tool text instead of failing the request.
func TestAnalyzeToolFailures(t *testing.T) {
	o := &stubOracle{replies: []*oracle.Message{
		{Parts: []oracle.Part{toolCall("1", "unobtainium", 1)}},
		{Parts: []oracle.Part{oracle.TextPart{Text: "Sorry."}}},
	}}
	a := NewAssistant(o, &countingLookup{err: errors.New("timeout")}, 0, discardLogger())
	res, err := a.Analyze(context.Background(), AnalyzeRequest{Message: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 0 {
		t.Errorf("items = %+v", res.Items)
	}
	if c := o.requests[1].History[2].Parts[0].(oracle.ToolResultPart).Content; c != "Error fetching data." {
		t.Errorf("content = %q", c)
	}

	o = &stubOracle{replies: []*oracle.Message{
		{Parts: []oracle.Part{toolCall("1", "unobtainium", 1)}},
		{Parts: []oracle.Part{oracle.TextPart{Text: "Sorry."}}},
	}}
	a = NewAssistant(o, &countingLookup{}, 0, discardLogger())
	if _, err := a.Analyze(context.Background(), AnalyzeRequest{Message: "x"}); err != nil {
		t.Fatal(err)
	}
	if c := o.requests[1].History[2].Parts[0].(oracle.ToolResultPart).Content; !strings.HasPrefix(c, "No data found") {
		t.Errorf("content = %q", c)
	}
}

// TestAnalyzeErrors covers missing input, oracle failure and the loop cap.
func TestAnalyzeErrors(t *testing.T) {
	a := NewAssistant(&stubOracle{}, &countingLookup{}, 0, discardLogger())
	if _, err := a.Analyze(context.Background(), AnalyzeRequest{}); !errors.Is(err, ErrNoInput) {
		t.Errorf("no input err = %v", err)
	}

	a = NewAssistant(&stubOracle{err: errors.New("503")}, &countingLookup{}, 0, discardLogger())
	_, err := a.Analyze(context.Background(), AnalyzeRequest{Message: "egg"})
	if !errors.Is(err, ErrOracleUnavailable) || !errors.Is(err, oracle.ErrUnavailable) {
		t.Errorf("oracle err = %v", err)
	}

	loop := &stubOracle{replies: []*oracle.Message{{Parts: []oracle.Part{toolCall("1", "egg", 1)}}}}
	a = NewAssistant(loop, &countingLookup{facts: []Facts{{Item: "Egg"}}}, 3, discardLogger())
	if _, err := a.Analyze(context.Background(), AnalyzeRequest{Message: "egg"}); !errors.Is(err, ErrTooManyRoundTrips) {
		t.Errorf("loop err = %v", err)
	}
	if len(loop.requests) != 3 {
		t.Errorf("oracle calls = %d, want 3", len(loop.requests))
	}
}
