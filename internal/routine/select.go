package routine

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/claude/repcoach/internal/catalog"
)

var bracketList = regexp.MustCompile(`\[(.*?)\]`)

// extractNames returns the comma-separated names inside the first [...] span
// of text, lowercased. ok is false when text has no bracketed span.
func extractNames(text string) (names []string, ok bool) {
	m := bracketList.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	for _, part := range strings.Split(m[1], ",") {
		name := strings.ToLower(strings.Trim(strings.TrimSpace(part), `"'`))
		if name != "" {
			names = append(names, name)
		}
	}
	return names, true
}

// candidateSet collects tool results keyed by exercise name. Values follow
// the most recent lookup; iteration follows first-seen order.
type candidateSet struct {
	order  []string
	byName map[string]catalog.Exercise
}

func newCandidateSet() *candidateSet {
	return &candidateSet{byName: make(map[string]catalog.Exercise)}
}

func (s *candidateSet) add(exercises ...catalog.Exercise) {
	for _, ex := range exercises {
		if _, ok := s.byName[ex.Name]; !ok {
			s.order = append(s.order, ex.Name)
		}
		s.byName[ex.Name] = ex
	}
}

func (s *candidateSet) len() int {
	return len(s.order)
}

func (s *candidateSet) all() []catalog.Exercise {
	out := make([]catalog.Exercise, len(s.order))
	for i, name := range s.order {
		out[i] = s.byName[name]
	}
	return out
}

// selectCandidates picks the exercises named in the narrative's bracketed
// list. When there is no list, or nothing in it matches, the first limit
// candidates are used instead. The result is stably sorted by fatigue score.
func selectCandidates(narrative string, set *candidateSet, limit int) []catalog.Exercise {
	all := set.all()

	var selected []catalog.Exercise
	if names, ok := extractNames(narrative); ok {
		for _, ex := range all {
			if slices.Contains(names, strings.ToLower(ex.Name)) {
				selected = append(selected, ex)
			}
		}
	}
	if len(selected) == 0 {
		if limit > 0 && len(all) > limit {
			all = all[:limit]
		}
		selected = all
	}

	slices.SortStableFunc(selected, func(a, b catalog.Exercise) int {
		return cmp.Compare(a.FatigueScore, b.FatigueScore)
	})
	return selected
}
