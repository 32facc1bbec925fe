package routine

import (
	"fmt"

	"github.com/claude/repcoach/internal/catalog"
)

// Allocate spreads totalSets over exercises in the given order. Every row gets
// totalSets/n sets and the first totalSets%n rows get one more, so the sum is
// exact. Exercises with a fatigue score of 1 rest long, all others short.
func Allocate(exercises []catalog.Exercise, totalSets int, repLabel string, weight float64) ([]FinalizedExercise, error) {
	n := len(exercises)
	if n == 0 {
		return nil, fmt.Errorf("%w: no exercises", ErrAllocatorPrecondition)
	}
	if totalSets < 1 {
		return nil, fmt.Errorf("%w: total sets %d", ErrAllocatorPrecondition, totalSets)
	}

	base := totalSets / n
	remainder := totalSets % n

	out := make([]FinalizedExercise, n)
	for i, ex := range exercises {
		sets := base
		if i < remainder {
			sets++
		}
		rest := RestShort
		if ex.FatigueScore == 1 {
			rest = RestLong
		}
		out[i] = FinalizedExercise{
			Name:         ex.Name,
			Sets:         sets,
			Reps:         repLabel,
			Rest:         rest,
			Weight:       weight,
			FatigueScore: ex.FatigueScore,
			Mechanic:     ex.Mechanic,
		}
	}
	return out, nil
}
