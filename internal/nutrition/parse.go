package nutrition

import (
	"regexp"
	"strconv"
	"strings"
)

// FoodItem is one food the assistant reported.
type FoodItem struct {
	Name     string  `json:"name"`
	Protein  float64 `json:"protein"`
	Fats     float64 `json:"fats"`
	Carbs    float64 `json:"carbs"`
	Calories float64 `json:"calories"`
}

var (
	keyValue = regexp.MustCompile(`(?i)\b(name|protein|fats?|carbs?|carbohydrates|calories)\s*:\s*([^,\n]*)`)
	number   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// ParseFoodItems reads "Name:{}, Protein:{}, Fats:{}, Carbs:{}, Calories:{}"
// lines. Units and missing values are tolerated; lines without a name are
// skipped.
func ParseFoodItems(text string) []FoodItem {
	items := []FoodItem{}
	for _, line := range strings.Split(text, "\n") {
		matches := keyValue.FindAllStringSubmatch(line, -1)
		if len(matches) == 0 {
			continue
		}

		var item FoodItem
		for _, m := range matches {
			value := strings.TrimSpace(m[2])
			switch key := strings.ToLower(m[1]); {
			case key == "name":
				item.Name = strings.Trim(value, "*` ")
			case key == "protein":
				item.Protein = parseNumber(value)
			case strings.HasPrefix(key, "fat"):
				item.Fats = parseNumber(value)
			case strings.HasPrefix(key, "carb"):
				item.Carbs = parseNumber(value)
			case key == "calories":
				item.Calories = parseNumber(value)
			}
		}
		if item.Name != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseNumber returns the first number in s, or 0 for values like "N/A".
func parseNumber(s string) float64 {
	m := number.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}
