package routine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/claude/repcoach/internal/catalog"
)

func exercisesN(n int) []catalog.Exercise {
	out := make([]catalog.Exercise, n)
	for i := range out {
		out[i] = catalog.Exercise{Name: fmt.Sprintf("Exercise %d", i), FatigueScore: float64(i%3 + 1)}
	}
	return out
}

func setsOf(rows []FinalizedExercise) []int {
	sets := make([]int, len(rows))
	for i, r := range rows {
		sets[i] = r.Sets
	}
	return sets
}

// TestAllocateSumInvariant verifies the allocated sets always add up to the
// requested total.
func TestAllocateSumInvariant(t *testing.T) {
	for n := 1; n <= 50; n++ {
		for total := 1; total <= 200; total++ {
			rows, err := Allocate(exercisesN(n), total, "8-12", 0)
			if err != nil {
				t.Fatalf("n=%d total=%d: %v", n, total, err)
			}
			sum := 0
			for _, r := range rows {
				if r.Sets < 0 {
					t.Fatalf("n=%d total=%d: negative sets", n, total)
				}
				sum += r.Sets
			}
			if sum != total {
				t.Fatalf("n=%d total=%d: sum = %d", n, total, sum)
			}
		}
	}
}

// TestAllocateDistribution covers remainder placement and the edge cases.
func TestAllocateDistribution(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		total int
		want  []int
	}{
		{"remainder goes first", 4, 15, []int{4, 4, 4, 3}},
		{"single exercise", 1, 7, []int{7}},
		{"exact division", 5, 15, []int{3, 3, 3, 3, 3}},
		{"fewer sets than exercises", 4, 2, []int{1, 1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Allocate(exercisesN(tt.n), tt.total, "3-5", 0)
			if err != nil {
				t.Fatal(err)
			}
			got := setsOf(rows)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("sets = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestAllocateRestAndEcho verifies rest tiers depend only on fatigue score and
// reps and weight are copied onto every row.
func TestAllocateRestAndEcho(t *testing.T) {
	in := []catalog.Exercise{
		{Name: "A", FatigueScore: 2},
		{Name: "B", FatigueScore: 1},
		{Name: "C", FatigueScore: 1.5},
		{Name: "D", FatigueScore: 1},
	}
	rows, err := Allocate(in, 9, "whatever", 25)
	if err != nil {
		t.Fatal(err)
	}

	want := []RestTier{RestShort, RestLong, RestShort, RestLong}
	for i, r := range rows {
		if r.Rest != want[i] {
			t.Errorf("%s rest = %s, want %s", r.Name, r.Rest, want[i])
		}
		if r.Reps != "whatever" {
			t.Errorf("%s reps = %q", r.Name, r.Reps)
		}
		if r.Weight != 25 {
			t.Errorf("%s weight = %v", r.Name, r.Weight)
		}
	}
	if RestLong.Label() != "3-5 mins" || RestShort.Label() != "60-90s" {
		t.Error("unexpected rest labels")
	}
}

// TestAllocatePreconditions verifies empty input and non-positive budgets are rejected.
func TestAllocatePreconditions(t *testing.T) {
	if _, err := Allocate(nil, 5, "8-12", 0); !errors.Is(err, ErrAllocatorPrecondition) {
		t.Errorf("empty input: err = %v", err)
	}
	if _, err := Allocate(exercisesN(2), 0, "8-12", 0); !errors.Is(err, ErrAllocatorPrecondition) {
		t.Errorf("zero sets: err = %v", err)
	}
	if Reason(fmt.Errorf("wrapped: %w", ErrAllocatorPrecondition)) != "allocator_precondition_violated" {
		t.Error("reason mismatch")
	}
}
