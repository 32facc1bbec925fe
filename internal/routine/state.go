package routine

import "fmt"

// State is a step of one routine-generation run.
type State int

const (
	StatePlanning State = iota
	StateAwaitingTool
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePlanning:
		return "planning"
	case StateAwaitingTool:
		return "awaiting_tool"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

var transitions = map[State][]State{
	StatePlanning:     {StateAwaitingTool, StateFinalizing, StateFailed},
	StateAwaitingTool: {StatePlanning, StateFailed},
	StateFinalizing:   {StateDone, StateFailed},
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// machine tracks the state of one run and records the path it took.
type machine struct {
	state State
	trace []State
}

func newMachine() *machine {
	return &machine{state: StatePlanning, trace: []State{StatePlanning}}
}

func (m *machine) to(next State) error {
	if !CanTransition(m.state, next) {
		return fmt.Errorf("illegal routine transition %s -> %s", m.state, next)
	}
	m.state = next
	m.trace = append(m.trace, next)
	return nil
}

// fail moves to StateFailed unless already terminal.
func (m *machine) fail() {
	if !m.state.Terminal() {
		m.state = StateFailed
		m.trace = append(m.trace, StateFailed)
	}
}
