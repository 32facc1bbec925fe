package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/claude/repcoach/internal/oracle"
)

const DefaultAssistantRoundTrips = 6

var (
	// ErrNoInput is returned when neither a message nor an image was given.
	ErrNoInput = errors.New("no input provided")
	// ErrOracleUnavailable wraps a failed oracle call.
	ErrOracleUnavailable = oracle.ErrUnavailable
	// ErrTooManyRoundTrips means the assistant never produced a final answer.
	ErrTooManyRoundTrips = errors.New("nutrition assistant round-trip limit reached")
)

const assistantInstruction = `You are a multimodal nutrition assistant.
1. Identify the food item from text or images.
2. Use the 'get_nutrition_data' tool to find nutritional information.
3. If multiple items are returned, list each one separately.

Provide information in the following strict format for each item:
Name:{}, Protein:{}, Fats:{}, Carbs:{}, Calories:{}

Don't include 'g' or units. No extra conversational text.`

var nutritionTool = oracle.ToolSpec{
	Name:        "get_nutrition_data",
	Description: "Search for nutritional info. Use 'count' to specify how many variations to return.",
	Params: []oracle.Param{
		{Name: "foodName", Type: "string", Required: true, Description: "The name of the food"},
		{Name: "count", Type: "integer", Description: "Number of results to return"},
	},
}

// AnalyzeRequest is a food question, optionally with a photo.
type AnalyzeRequest struct {
	Message  string
	Image    []byte
	MIMEType string
	// PageSize is how many database matches the assistant should ask for.
	PageSize int
}

// Analysis is the assistant's answer.
type Analysis struct {
	Reply      string     `json:"reply"`
	Items      []FoodItem `json:"items"`
	RoundTrips int        `json:"round_trips"`
}

// Assistant identifies foods and reports their macros using FoodData Central.
type Assistant struct {
	oracle        oracle.Oracle
	foods         Lookuper
	maxRoundTrips int
	log           *slog.Logger
}

// NewAssistant creates an Assistant. maxRoundTrips <= 0 uses the default.
func NewAssistant(o oracle.Oracle, foods Lookuper, maxRoundTrips int, log *slog.Logger) *Assistant {
	if maxRoundTrips <= 0 {
		maxRoundTrips = DefaultAssistantRoundTrips
	}
	return &Assistant{oracle: o, foods: foods, maxRoundTrips: maxRoundTrips, log: log}
}

// Analyze runs the tool loop until the oracle answers without tool calls.
func (a *Assistant) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" && len(req.Image) == 0 {
		return nil, ErrNoInput
	}
	if message == "" {
		message = "Analyze this image."
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 1
	}

	first := oracle.Message{Role: oracle.RoleUser, Parts: []oracle.Part{
		oracle.TextPart{Text: fmt.Sprintf(
			"Identify this food and use the get_nutrition_data tool to find the top %d results by setting the 'count' parameter to %d. User query: %s",
			pageSize, pageSize, message)},
	}}
	if len(req.Image) > 0 {
		mime := req.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		first.Parts = append(first.Parts, oracle.ImagePart{MIMEType: mime, Data: req.Image})
	}
	history := []oracle.Message{first}

	for trips := 0; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if trips >= a.maxRoundTrips {
			return nil, fmt.Errorf("%w after %d calls", ErrTooManyRoundTrips, trips)
		}

		reply, err := a.oracle.Converse(ctx, oracle.Request{
			Instruction: assistantInstruction,
			History:     history,
			Tools:       []oracle.ToolSpec{nutritionTool},
		})
		trips++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
		}
		if reply == nil {
			return nil, fmt.Errorf("%w: empty reply", ErrOracleUnavailable)
		}
		reply.Role = oracle.RoleAssistant
		history = append(history, *reply)

		calls := reply.ToolCalls()
		if len(calls) == 0 {
			text := reply.Text()
			if text == "" {
				text = "The agent processed the data but returned an empty response."
			}
			return &Analysis{Reply: text, Items: ParseFoodItems(text), RoundTrips: trips}, nil
		}

		results, err := a.runTools(ctx, calls, pageSize)
		if err != nil {
			return nil, err
		}
		history = append(history, oracle.Message{Role: oracle.RoleTool, Parts: results})
	}
}

func (a *Assistant) runTools(ctx context.Context, calls []oracle.ToolCallPart, defaultCount int) ([]oracle.Part, error) {
	parts := make([]oracle.Part, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[i] = oracle.ToolResultPart{
				CallID:  call.ID,
				Name:    call.Name,
				Content: a.callTool(gctx, call, defaultCount),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

func (a *Assistant) callTool(ctx context.Context, call oracle.ToolCallPart, defaultCount int) string {
	if call.Name != nutritionTool.Name {
		return fmt.Sprintf("error: unknown tool %q", call.Name)
	}
	food, ok := oracle.ArgString(call.Args, "foodName")
	if !ok || strings.TrimSpace(food) == "" {
		return "error: foodName is required"
	}
	count, ok := oracle.ArgInt(call.Args, "count")
	if !ok {
		count = defaultCount
	}

	a.log.Info("nutrition tool call", "food", food, "count", count)
	facts, err := a.foods.Lookup(ctx, food, count)
	if err != nil {
		a.log.Warn("nutrition lookup failed", "food", food, "error", err)
		return "Error fetching data."
	}
	if len(facts) == 0 {
		return fmt.Sprintf("No data found for %q.", food)
	}
	body, err := json.Marshal(facts)
	if err != nil {
		return "Error fetching data."
	}
	return string(body)
}
