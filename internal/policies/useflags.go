package policies

import (
	"sort"

	"portage-resolvo/internal/types"
)

// FlagState is the resolution policy for one USE flag.
type FlagState int

const (
	// FlagOff drops "flag?" subtrees and inlines "!flag?" subtrees.
	// This is the implicit state for any flag not configured.
	FlagOff FlagState = iota
	// FlagOn inlines "flag?" subtrees and drops "!flag?" subtrees.
	FlagOn
	// FlagSolverDecided defers the choice to the solver via a pair of
	// mutually exclusive virtual solvables.
	FlagSolverDecided
)

func (s FlagState) String() string {
	switch s {
	case FlagOn:
		return "on"
	case FlagSolverDecided:
		return "solver-decided"
	default:
		return "off"
	}
}

// FlagPolicy is the compiled lookup table over a UseConfig. The three
// input sets are disjoint by construction, so compilation is a plain
// merge with solver-decided winning only for bookkeeping of its sorted
// flag list.
type FlagPolicy struct {
	states        map[string]FlagState
	solverDecided []string
}

func NewFlagPolicy(cfg types.UseConfig) FlagPolicy {
	policy := FlagPolicy{states: map[string]FlagState{}}
	for flag := range cfg.Disabled {
		policy.states[flag] = FlagOff
	}
	for flag := range cfg.Enabled {
		policy.states[flag] = FlagOn
	}
	for flag := range cfg.SolverDecided {
		policy.states[flag] = FlagSolverDecided
		policy.solverDecided = append(policy.solverDecided, flag)
	}
	sort.Strings(policy.solverDecided)
	return policy
}

// State returns the configured state for a flag; unconfigured flags are
// off.
func (p FlagPolicy) State(flag string) FlagState {
	return p.states[flag]
}

// Enabled reports whether a flag is eagerly on.
func (p FlagPolicy) Enabled(flag string) bool {
	return p.states[flag] == FlagOn
}

// SolverDecided returns the solver-decided flags in sorted order so the
// virtual-solvable synthesis is deterministic across runs.
func (p FlagPolicy) SolverDecided() []string {
	return p.solverDecided
}
