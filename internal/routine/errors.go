package routine

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/oracle"
)

var (
	// ErrInvalidPreferences is returned before any external call for unusable input.
	ErrInvalidPreferences = errors.New("invalid preferences")
	// ErrOracleUnavailable wraps a failed oracle call.
	ErrOracleUnavailable = oracle.ErrUnavailable
	// ErrPlanningTimeout means the round-trip cap was reached without a final answer.
	ErrPlanningTimeout = errors.New("planning timeout")
	// ErrNoCandidatesFound means no tool call ever returned an exercise.
	ErrNoCandidatesFound = errors.New("no candidate exercises found")
	// ErrAllocatorPrecondition indicates a caller bug: empty input or a non-positive budget.
	ErrAllocatorPrecondition = errors.New("allocator precondition violated")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPreferences, fmt.Sprintf(format, args...))
}

// Reason maps an error from Generate to a short machine-readable code.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPreferences):
		return "invalid_preferences"
	case errors.Is(err, ErrOracleUnavailable):
		return "oracle_unavailable"
	case errors.Is(err, ErrPlanningTimeout):
		return "planning_timeout"
	case errors.Is(err, ErrNoCandidatesFound):
		return "no_candidates_found"
	case errors.Is(err, ErrAllocatorPrecondition):
		return "allocator_precondition_violated"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
