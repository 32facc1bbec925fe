package routine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/oracle"
)

const (
	DefaultMaxRoundTrips  = 8
	DefaultSelectionLimit = 5
)

// Config tunes the planning loop.
type Config struct {
	// MaxRoundTrips caps oracle calls per request.
	MaxRoundTrips int
	// SelectionLimit is how many candidates the fallback selection keeps.
	SelectionLimit int
}

// Lookup is the catalog query the search tool runs.
type Lookup interface {
	Lookup(muscleGroup string, equipment []string) []catalog.Exercise
}

// Orchestrator runs the plan/act loop between an oracle and the exercise
// catalog. It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	oracle  oracle.Oracle
	catalog Lookup
	cfg     Config
	log     *slog.Logger
}

// New creates an Orchestrator. Zero config values take the defaults.
func New(o oracle.Oracle, c Lookup, cfg Config, log *slog.Logger) *Orchestrator {
	if cfg.MaxRoundTrips <= 0 {
		cfg.MaxRoundTrips = DefaultMaxRoundTrips
	}
	if cfg.SelectionLimit <= 0 {
		cfg.SelectionLimit = DefaultSelectionLimit
	}
	return &Orchestrator{oracle: o, catalog: c, cfg: cfg, log: log}
}

// Generate plans a routine for prefs. The oracle is called until it answers
// without tool calls or MaxRoundTrips calls have been made. Cancellation of
// ctx is honored between round-trips.
func (o *Orchestrator) Generate(ctx context.Context, prefs Preferences) (*Result, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	if !isKnownRepRange(prefs.RepRange) {
		o.log.Debug("unrecognized rep range, echoing as-is", "rep_range", prefs.RepRange)
	}

	r := &run{
		Orchestrator: o,
		prefs:        prefs,
		equipment:    prefs.equipment(),
		machine:      newMachine(),
		collected:    newCandidateSet(),
		start:        time.Now(),
	}
	res, err := r.execute(ctx)
	if err != nil {
		r.machine.fail()
		o.log.Warn("routine generation failed",
			"reason", Reason(err), "round_trips", r.roundTrips, "path", r.machine.trace, "error", err)
		return nil, err
	}
	return res, nil
}

// run is the conversation state of one Generate call.
type run struct {
	*Orchestrator
	prefs      Preferences
	equipment  []string
	machine    *machine
	history    []oracle.Message
	collected  *candidateSet
	narrative  string
	roundTrips int
	start      time.Time
}

func (r *run) execute(ctx context.Context) (*Result, error) {
	query := r.prefs.Query
	if query == "" {
		query = emptyQueryPrompt
	}
	r.history = append(r.history, oracle.UserText(query))

	instruction := buildInstruction(r.prefs, r.cfg.SelectionLimit)
	equipTurn := oracle.UserText(equipmentStatement(r.equipment))
	tools := []oracle.ToolSpec{searchTool}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.roundTrips >= r.cfg.MaxRoundTrips {
			return nil, fmt.Errorf("%w: no final answer after %d oracle calls", ErrPlanningTimeout, r.roundTrips)
		}

		// The equipment turn is sent with every call but never stored.
		history := append(r.history[:len(r.history):len(r.history)], equipTurn)
		reply, err := r.oracle.Converse(ctx, oracle.Request{
			Instruction: instruction,
			History:     history,
			Tools:       tools,
		})
		r.roundTrips++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
		}
		if reply == nil {
			return nil, fmt.Errorf("%w: empty reply", ErrOracleUnavailable)
		}

		reply.Role = oracle.RoleAssistant
		r.history = append(r.history, *reply)
		if text := reply.Text(); text != "" {
			r.narrative = text
		}

		calls := reply.ToolCalls()
		if len(calls) == 0 {
			break
		}

		if err := r.machine.to(StateAwaitingTool); err != nil {
			return nil, err
		}
		results, err := r.runTools(ctx, calls)
		if err != nil {
			return nil, err
		}
		r.history = append(r.history, oracle.Message{Role: oracle.RoleTool, Parts: results})
		if err := r.machine.to(StatePlanning); err != nil {
			return nil, err
		}
	}

	if err := r.machine.to(StateFinalizing); err != nil {
		return nil, err
	}
	return r.finalize()
}

func (r *run) finalize() (*Result, error) {
	if r.collected.len() == 0 {
		return nil, ErrNoCandidatesFound
	}

	narrative := r.narrative
	if narrative == "" {
		narrative = defaultNarrative
	}

	selected := selectCandidates(narrative, r.collected, r.cfg.SelectionLimit)
	exercises, err := Allocate(selected, r.prefs.TargetTotalSets, r.prefs.RepRange, r.prefs.DefaultWeight)
	if err != nil {
		r.log.Error("allocation failed", "selected", len(selected), "error", err)
		return nil, err
	}
	if err := r.machine.to(StateDone); err != nil {
		return nil, err
	}

	r.log.Info("routine generated",
		"exercises", len(exercises),
		"candidates", r.collected.len(),
		"round_trips", r.roundTrips,
		"duration", time.Since(r.start),
	)
	return &Result{
		Exercises:  exercises,
		Narrative:  narrative,
		RoundTrips: r.roundTrips,
		Candidates: r.collected.len(),
	}, nil
}

type toolOutcome struct {
	part  oracle.ToolResultPart
	found []catalog.Exercise
}

// runTools executes every call of one oracle turn concurrently and waits for
// all of them. Results keep the order of the calls.
func (r *run) runTools(ctx context.Context, calls []oracle.ToolCallPart) ([]oracle.Part, error) {
	outcomes := make([]toolOutcome, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.callTool(call)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parts := make([]oracle.Part, len(outcomes))
	for i, out := range outcomes {
		r.collected.add(out.found...)
		parts[i] = out.part
	}
	return parts, nil
}

// searchResult is the JSON shape returned to the oracle per exercise.
type searchResult struct {
	Name         string  `json:"name"`
	FatigueScore float64 `json:"fatigue_score"`
	Mechanic     string  `json:"mechanic"`
}

func (r *run) callTool(call oracle.ToolCallPart) toolOutcome {
	result := oracle.ToolResultPart{CallID: call.ID, Name: call.Name}

	if call.Name != searchToolName {
		r.log.Warn("unknown routine tool", "tool", call.Name)
		result.Content = fmt.Sprintf("error: unknown tool %q", call.Name)
		return toolOutcome{part: result}
	}

	muscle, ok := oracle.ArgString(call.Args, "muscle_group")
	if !ok || muscle == "" {
		result.Content = "error: muscle_group is required"
		return toolOutcome{part: result}
	}
	equipment, ok := oracle.ArgStrings(call.Args, "equipment_available")
	if !ok {
		equipment = r.equipment
	}

	found := r.catalog.Lookup(muscle, equipment)
	r.log.Info("routine tool call", "tool", call.Name, "muscle_group", muscle, "results", len(found))

	rows := make([]searchResult, len(found))
	for i, ex := range found {
		rows[i] = searchResult{Name: ex.Name, FatigueScore: ex.FatigueScore, Mechanic: ex.Mechanic}
	}
	body, err := json.Marshal(rows)
	if err != nil {
		result.Content = "error: " + err.Error()
		return toolOutcome{part: result}
	}
	result.Content = string(body)
	return toolOutcome{part: result, found: found}
}

// IsRetryable reports whether the caller may retry the same request unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrOracleUnavailable)
}
