package catalog

import "strings"

// MuscleGroups is the closed vocabulary of primary-muscle terms used in the
// catalog. Lookups with other terms are allowed and usually match nothing.
var MuscleGroups = []string{
	"abdominals", "abductors", "adductors", "biceps", "calves", "chest",
	"forearms", "glutes", "hamstrings", "lats", "lower back", "middle back",
	"neck", "quadriceps", "shoulders", "traps", "triceps",
}

// Equipment lists the equipment values that appear in the catalog.
var Equipment = []string{
	"barbell", "dumbbell", "cable", "machine", "kettlebells", "bands",
	"body only", "e-z curl bar", "medicine ball", "exercise ball",
	"foam roll", "other",
}

// IsMuscleGroup reports whether term is part of the muscle vocabulary.
func IsMuscleGroup(term string) bool {
	for _, m := range MuscleGroups {
		if strings.EqualFold(m, strings.TrimSpace(term)) {
			return true
		}
	}
	return false
}
