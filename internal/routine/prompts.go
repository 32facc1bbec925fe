package routine

import (
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/oracle"
)

const (
	searchToolName   = "search_exercises"
	defaultNarrative = "Here is your optimized workout routine:"
	emptyQueryPrompt = "Build me a workout using only my available equipment."
)

var searchTool = oracle.ToolSpec{
	Name:        searchToolName,
	Description: "Finds exercises for a specific muscle group based on what equipment is available.",
	Params: []oracle.Param{
		{Name: "muscle_group", Type: "string", Required: true,
			Description: "One muscle group term from the allowed vocabulary."},
		{Name: "equipment_available", Type: "array", Items: "string",
			Description: "Equipment the user has, e.g. dumbbell, cable."},
	},
}

func buildInstruction(p Preferences, selectionLimit int) string {
	injuries := strings.TrimSpace(p.Injuries)
	if injuries == "" {
		injuries = "None"
	}

	var b strings.Builder
	b.WriteString("You are an expert fitness coach and workout routine generator.\n\n")
	fmt.Fprintf(&b, "GOAL: Design a balanced workout with EXACTLY %d total sets in the %s rep range.\n\n", p.TargetTotalSets, p.RepRange)
	b.WriteString("DATABASE CONSTRAINTS:\n")
	fmt.Fprintf(&b, "1. You MUST use '%s' for EVERY muscle group mentioned or implied in the user's request.\n", searchToolName)
	fmt.Fprintf(&b, "2. Exact terms only: %s.\n\n", strings.Join(catalog.MuscleGroups, ", "))
	b.WriteString("PLANNING LOGIC:\n")
	b.WriteString("- If the user asks for multiple muscles, select at least 2 exercises for the primary muscle and 2 for the secondary.\n")
	fmt.Fprintf(&b, "- Select a total of EXACTLY %d unique exercises from your search results.\n", selectionLimit)
	b.WriteString("- Mix 'mechanic' types (isolation and compound) for a well-rounded session.\n")
	fmt.Fprintf(&b, "- AVOID exercises that aggravate: %s.\n", injuries)
	b.WriteString("- Only choose exercises the user's equipment allows.\n\n")
	b.WriteString("OUTPUT FORMAT:\n")
	b.WriteString("- Write a short explanation of the session.\n")
	b.WriteString("- End with the chosen exercise names exactly as returned by the search, as one bracketed comma-separated list, e.g. [Name One, Name Two].\n")
	return b.String()
}

func equipmentStatement(equipment []string) string {
	if len(equipment) == 0 {
		return "My available equipment: none specified"
	}
	return "My available equipment: " + strings.Join(equipment, ", ")
}
