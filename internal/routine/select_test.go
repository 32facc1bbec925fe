package routine

import (
	"fmt"
	"testing"

	"github.com/claude/repcoach/internal/catalog"
)

func names(exs []catalog.Exercise) []string {
	out := make([]string, len(exs))
	for i, ex := range exs {
		out[i] = ex.Name
	}
	return out
}

// TestExtractNames covers bracket parsing with surrounding prose.
func TestExtractNames(t *testing.T) {
	tests := []struct {
		text string
		want []string
		ok   bool
	}{
		{"Here you go: [Bench Press, Tricep Pushdown]", []string{"bench press", "tricep pushdown"}, true},
		{`[ "Squat" ,  'Lunge' , ]`, []string{"squat", "lunge"}, true},
		{"first [A] then [B]", []string{"a"}, true},
		{"[]", nil, true},
		{"no list at all", nil, false},
		{"broken [list", nil, false},
	}
	for _, tt := range tests {
		got, ok := extractNames(tt.text)
		if ok != tt.ok || fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("extractNames(%q) = %v, %v; want %v, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

// TestCandidateSetLastWriteWins verifies duplicate names keep first-seen
// position and the latest values.
func TestCandidateSetLastWriteWins(t *testing.T) {
	s := newCandidateSet()
	s.add(catalog.Exercise{Name: "A", FatigueScore: 1}, catalog.Exercise{Name: "B", FatigueScore: 2})
	s.add(catalog.Exercise{Name: "A", FatigueScore: 3})

	all := s.all()
	if s.len() != 2 || all[0].Name != "A" || all[1].Name != "B" {
		t.Fatalf("order = %v", names(all))
	}
	if all[0].FatigueScore != 3 {
		t.Errorf("A fatigue = %v, want 3", all[0].FatigueScore)
	}
}

// TestSelectFallbackFirstSeen verifies that without a bracketed list exactly
// the first five distinct candidates are used.
func TestSelectFallbackFirstSeen(t *testing.T) {
	s := newCandidateSet()
	for i := 0; i < 8; i++ {
		s.add(catalog.Exercise{Name: fmt.Sprintf("E%d", i), FatigueScore: 2})
	}
	s.add(catalog.Exercise{Name: "E0", FatigueScore: 2})

	got := names(selectCandidates("Great session ahead!", s, 5))
	want := []string{"E0", "E1", "E2", "E3", "E4"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("selected = %v, want %v", got, want)
	}
}

// TestSelectBracketPrecedence verifies a bracketed list picks exactly the
// named candidates, matched case-insensitively.
func TestSelectBracketPrecedence(t *testing.T) {
	s := newCandidateSet()
	s.add(
		catalog.Exercise{Name: "Cable Fly", FatigueScore: 1},
		catalog.Exercise{Name: "Tricep Pushdown", FatigueScore: 1},
		catalog.Exercise{Name: "Dips", FatigueScore: 3},
		catalog.Exercise{Name: "bench press", FatigueScore: 3},
		catalog.Exercise{Name: "Push Up", FatigueScore: 2},
	)

	got := names(selectCandidates("Plan: [Bench Press, Tricep Pushdown]", s, 5))
	want := []string{"Tricep Pushdown", "bench press"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("selected = %v, want %v", got, want)
	}
}

// TestSelectBracketNoMatchFallsBack verifies an unmatched list uses the fallback.
func TestSelectBracketNoMatchFallsBack(t *testing.T) {
	s := newCandidateSet()
	s.add(catalog.Exercise{Name: "Row", FatigueScore: 3}, catalog.Exercise{Name: "Curl", FatigueScore: 1})

	got := names(selectCandidates("[Snatch, Clean]", s, 5))
	want := []string{"Curl", "Row"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("selected = %v, want %v", got, want)
	}
}

// TestSelectSortIsStable verifies equal fatigue scores keep collection order.
func TestSelectSortIsStable(t *testing.T) {
	s := newCandidateSet()
	s.add(
		catalog.Exercise{Name: "C", FatigueScore: 2},
		catalog.Exercise{Name: "A", FatigueScore: 1},
		catalog.Exercise{Name: "B", FatigueScore: 2},
		catalog.Exercise{Name: "D", FatigueScore: 1},
	)
	got := names(selectCandidates("", s, 0))
	want := []string{"A", "D", "C", "B"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("selected = %v, want %v", got, want)
	}
}
