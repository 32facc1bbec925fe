package nutrition

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/claude/repcoach/internal/oracle"
)

// PlannedFood is one bullet of a meal plan.
type PlannedFood struct {
	Food     string  `json:"food"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Meal is one section of a meal plan.
type Meal struct {
	Name  string        `json:"name"`
	Foods []PlannedFood `json:"foods"`
}

// MealPlan is the oracle's reply and the meals parsed from it.
type MealPlan struct {
	Reply string `json:"reply"`
	Meals []Meal `json:"meals"`
}

var (
	mealHeading = regexp.MustCompile(`(?i)\*\*\s*(Breakfast|Lunch|Dinner|Snacks?)\s*\*\*`)
	mealFood    = regexp.MustCompile(`(?i)\*\s+(.+?),\s*Calories:\s*(\d+(?:\.\d+)?)\s*,\s*Protein:\s*(\d+(?:\.\d+)?)\s*,\s*Carbs:\s*(\d+(?:\.\d+)?)\s*,\s*Fats?:\s*(\d+(?:\.\d+)?)`)
)

// ParseMealPlan reads **Meal** headings and the food bullets below each.
// Text before the first heading is ignored.
func ParseMealPlan(text string) []Meal {
	meals := []Meal{}
	headings := mealHeading.FindAllStringSubmatchIndex(text, -1)
	for i, h := range headings {
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		name := text[h[2]:h[3]]
		meal := Meal{Name: strings.ToUpper(name[:1]) + strings.ToLower(name[1:]), Foods: []PlannedFood{}}
		for _, m := range mealFood.FindAllStringSubmatch(text[h[1]:end], -1) {
			meal.Foods = append(meal.Foods, PlannedFood{
				Food:     strings.TrimSpace(m[1]),
				Calories: parseNumber(m[2]),
				Protein:  parseNumber(m[3]),
				Carbs:    parseNumber(m[4]),
				Fats:     parseNumber(m[5]),
			})
		}
		meals = append(meals, meal)
	}
	return meals
}

// MealPlanner asks the oracle for a one-day meal plan.
type MealPlanner struct {
	oracle oracle.Oracle
	log    *slog.Logger
}

// NewMealPlanner creates a MealPlanner.
func NewMealPlanner(o oracle.Oracle, log *slog.Logger) *MealPlanner {
	return &MealPlanner{oracle: o, log: log}
}

// Plan returns a meal plan for the user's request.
func (p *MealPlanner) Plan(ctx context.Context, message string) (*MealPlan, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrNoInput
	}

	prompt := fmt.Sprintf(`You are a meal plan expert. Create a meal plan based on %q.
Return ONLY in this format, with no extra text, no units and no explanations:

**Breakfast**
* Food name, Calories:###, Protein:###, Carbs:###, Fats:###

**Lunch**
* Food name, Calories:###, Protein:###, Carbs:###, Fats:###

**Dinner**
* Food name, Calories:###, Protein:###, Carbs:###, Fats:###`, message)

	reply, err := p.oracle.Converse(ctx, oracle.Request{
		History: []oracle.Message{oracle.UserText(prompt)},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	if reply == nil {
		return nil, fmt.Errorf("%w: empty reply", ErrOracleUnavailable)
	}

	text := reply.Text()
	meals := ParseMealPlan(text)
	p.log.Debug("meal plan", "meals", len(meals))
	return &MealPlan{Reply: text, Meals: meals}, nil
}
