package routine

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/repcoach/internal/oracle"
)

// SetLine is one set of a quick routine sketch.
type SetLine struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
}

var setLinePattern = regexp.MustCompile(`(?i)Exercise:\s*(.*?),\s*Weight:\s*(\d+(?:\.\d+)?)\s*(?:lbs?)?\s*,\s*Reps:\s*(\d+)`)

// ParseSetLines extracts "Exercise:{}, Weight:{} lbs, Reps:{}" entries from
// free text. Lines that do not match are ignored.
func ParseSetLines(text string) []SetLine {
	lines := []SetLine{}
	for _, m := range setLinePattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		weight, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		reps, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		lines = append(lines, SetLine{Exercise: name, Weight: weight, Reps: reps})
	}
	return lines
}

// Sketch is a quick routine produced in a single oracle call.
type Sketch struct {
	Reply string
	Sets  []SetLine
}

// Sketcher asks the oracle for a set-by-set routine restricted to catalog
// exercise names. No tools are offered.
type Sketcher struct {
	oracle oracle.Oracle
	names  []string
	log    *slog.Logger
}

// NewSketcher creates a Sketcher limited to the given exercise names.
func NewSketcher(o oracle.Oracle, names []string, log *slog.Logger) *Sketcher {
	return &Sketcher{oracle: o, names: names, log: log}
}

// Sketch returns the oracle's routine text and the sets parsed from it.
func (s *Sketcher) Sketch(ctx context.Context, message string) (*Sketch, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalidf("message is required")
	}

	var b strings.Builder
	b.WriteString("You are an exercise routine expert. The user says: \"")
	b.WriteString(message)
	b.WriteString("\".\n")
	fmt.Fprintf(&b, "You must ONLY use exercises from this list: %s.\n", strings.Join(s.names, ", "))
	b.WriteString("For each exercise you choose, output in this strict format:\n")
	b.WriteString("Exercise:{}, Weight:{} lbs, Reps:{}.\n\n")
	b.WriteString("- If more than one set, repeat the exercise with different reps/weight.\n")
	b.WriteString("- Do not include any explanations or extra text, just the routine.\n")

	reply, err := s.oracle.Converse(ctx, oracle.Request{
		History: []oracle.Message{oracle.UserText(b.String())},
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
	sets := ParseSetLines(text)
	s.log.Debug("routine sketch", "sets", len(sets))
	return &Sketch{Reply: text, Sets: sets}, nil
}
