// Package state classifies the host's coarse mode from observed state
// transitions of the tracked object.
//
// No single host field says reliably whether a session is running, so the
// mode is inferred from a handful of (old, new) state id pairs. The classifier
// is heuristic: state 43 is entered from both a goal sequence and a death
// sequence, and only the preceding state tells them apart.
package state

// Mode is the core's classification of the host application phase
type Mode uint32

const (
	ModeUnknown Mode = iota
	ModeActive
	ModeTerminalA // goal sequence
	ModeTerminalB // death sequence
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeUnknown:
		return "Unknown"
	case ModeActive:
		return "Active"
	case ModeTerminalA:
		return "TerminalA"
	case ModeTerminalB:
		return "TerminalB"
	default:
		return "Invalid"
	}
}

// Host state ids the classifier keys on
const (
	StateRunning   uint32 = 16
	StateDeath     uint32 = 9
	StateDeathEnd  uint32 = 10
	StateGoal      uint32 = 122
	StateGoalEnd   uint32 = 124
	StateRespawned uint32 = 43
)

// Rule maps a transition to a mode when Match accepts it. Match sees the
// mode held before the transition.
type Rule struct {
	Name  string
	Match func(cur Mode, from, to uint32) bool
	Mode  Mode
}

// DefaultRules are evaluated in order; the last matching rule decides the mode
var DefaultRules = []Rule{
	{
		Name:  "leave-running",
		Match: func(_ Mode, from, _ uint32) bool { return from == StateRunning },
		Mode:  ModeActive,
	},
	{
		Name:  "enter-goal",
		Match: func(_ Mode, _, to uint32) bool { return to == StateGoal },
		Mode:  ModeTerminalA,
	},
	{
		Name:  "enter-death",
		Match: func(_ Mode, _, to uint32) bool { return to == StateDeath },
		Mode:  ModeTerminalB,
	},
	{
		Name: "sequence-exit",
		Match: func(_ Mode, from, to uint32) bool {
			return (from == StateGoalEnd || from == StateDeathEnd) && to == StateRespawned
		},
		Mode: ModeUnknown,
	},
	{
		// a terminal sequence may reach 43 without passing its end state
		Name: "terminal-exit",
		Match: func(cur Mode, _, to uint32) bool {
			return (cur == ModeTerminalA || cur == ModeTerminalB) && to == StateRespawned
		},
		Mode: ModeUnknown,
	},
}

// Machine holds the current mode. It is driven from the host thread only.
type Machine struct {
	mode  Mode
	rules []Rule
}

// NewMachine creates a machine in ModeUnknown using DefaultRules
func NewMachine() *Machine {
	return NewMachineWithRules(DefaultRules)
}

// NewMachineWithRules creates a machine with a custom rule set
func NewMachineWithRules(rules []Rule) *Machine {
	return &Machine{mode: ModeUnknown, rules: rules}
}

// Observe feeds one transition and returns the resulting mode.
// Transitions that match no rule leave the mode unchanged.
func (m *Machine) Observe(from, to uint32) Mode {
	cur := m.mode
	for _, r := range m.rules {
		if r.Match(cur, from, to) {
			m.mode = r.Mode
		}
	}
	return m.mode
}

// Mode returns the current mode
func (m *Machine) Mode() Mode {
	return m.mode
}
