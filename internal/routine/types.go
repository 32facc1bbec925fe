// Package routine plans workout routines by letting a text oracle search the
// exercise catalog and then distributing a set budget over its picks.
package routine

import (
	"slices"
	"strings"
)

// RepRanges lists the rep-range labels the client offers. Other labels are
// accepted and echoed unchanged.
var RepRanges = []string{"3-5", "8-12", "15-20"}

// Preferences is one routine-generation request.
type Preferences struct {
	TargetTotalSets int
	RepRange        string
	Equipment       []string
	Injuries        string
	Query           string
	// DefaultWeight is copied onto every finalized exercise.
	DefaultWeight float64
}

// Validate rejects requests that cannot be planned.
func (p Preferences) Validate() error {
	if p.TargetTotalSets < 1 {
		return invalidf("target sets must be at least 1, got %d", p.TargetTotalSets)
	}
	if strings.TrimSpace(p.Query) == "" && len(p.equipment()) == 0 {
		return invalidf("a query or at least one piece of equipment is required")
	}
	return nil
}

// equipment returns the trimmed, non-empty equipment entries.
func (p Preferences) equipment() []string {
	out := make([]string, 0, len(p.Equipment))
	for _, e := range p.Equipment {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func isKnownRepRange(label string) bool {
	return slices.Contains(RepRanges, label)
}

// RestTier is the two-level rest classification of an exercise.
type RestTier string

const (
	RestLong  RestTier = "long"
	RestShort RestTier = "short"
)

// Label is the display text for the tier.
func (t RestTier) Label() string {
	if t == RestLong {
		return "3-5 mins"
	}
	return "60-90s"
}

// FinalizedExercise is one row of a generated routine.
type FinalizedExercise struct {
	Name         string   `json:"name"`
	Sets         int      `json:"sets"`
	Reps         string   `json:"reps"`
	Rest         RestTier `json:"rest"`
	Weight       float64  `json:"weight"`
	FatigueScore float64  `json:"fatigue_score"`
	Mechanic     string   `json:"mechanic,omitempty"`
}

// Result is a completed routine plus the oracle's narrative.
type Result struct {
	Exercises  []FinalizedExercise
	Narrative  string
	RoundTrips int
	// Candidates is the number of distinct exercises the tool calls returned.
	Candidates int
}

// TotalSets sums the sets across the routine.
func (r *Result) TotalSets() int {
	total := 0
	for _, ex := range r.Exercises {
		total += ex.Sets
	}
	return total
}
