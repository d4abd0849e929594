// Package solve contains a backtracking dependency solver over the
// candidate, filter, and dependency callbacks a provider exposes. The
// engine only understands opaque ids: names, solvables, version sets,
// ordered unions, and conditions. Preference is encoded positionally —
// earlier union members and earlier sorted candidates are tried first —
// so the provider fully controls which of several valid solutions wins.
package solve

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portage-resolvo/internal/types"
)

// DependencyProvider is the callback surface the solver drives. All
// methods are synchronous, do no I/O, and operate on opaque ids.
type DependencyProvider interface {
	// GetCandidates returns the candidates registered for a name, or nil
	// when the name is unknown.
	GetCandidates(name types.NameId) *types.Candidates
	// SortCandidates orders candidates most-preferred first, in place.
	SortCandidates(solvables []types.SolvableId)
	// FilterCandidates returns the candidates matching (inverse=false)
	// or to forbid (inverse=true) under a version set.
	FilterCandidates(candidates []types.SolvableId, versionSet types.VersionSetId, inverse bool) []types.SolvableId
	// GetDependencies returns the pre-compiled dependencies of a
	// solvable.
	GetDependencies(solvable types.SolvableId) types.KnownDependencies

	VersionSetName(versionSet types.VersionSetId) types.NameId
	SolvableName(solvable types.SolvableId) types.NameId
	VersionSetsInUnion(union types.VersionSetUnionId) []types.VersionSetId
	ResolveCondition(condition types.ConditionId) types.Condition

	DisplaySolvable(solvable types.SolvableId) string
	DisplayVersionSet(versionSet types.VersionSetId) string
}

// Problem is the root requirement set of one solve.
type Problem struct {
	requirements []types.ConditionalRequirement
}

func NewProblem() *Problem {
	return &Problem{}
}

// Requirements appends root requirements and returns the problem for
// chaining.
func (p *Problem) Requirements(reqs []types.ConditionalRequirement) *Problem {
	p.requirements = append(p.requirements, reqs...)
	return p
}

// Solver runs a depth-first search with chronological backtracking over
// the provider's candidate space. Constraint checks are incremental: a
// candidate incompatible with the current partial assignment is skipped
// before it ever enters the solution.
type Solver struct {
	provider DependencyProvider
	// lastConflict remembers the most recent requirement that had no
	// viable candidate, for the unsolvable report.
	lastConflict string
}

func NewSolver(provider DependencyProvider) *Solver {
	return &Solver{provider: provider}
}

// assignment is the mutable search state: at most one solvable per name,
// in selection order.
type assignment struct {
	byName map[types.NameId]types.SolvableId
	order  []types.SolvableId
}

// Solve returns the selected solvables in selection order, or an error
// when no assignment satisfies every requirement and constrain.
func (s *Solver) Solve(ctx context.Context, problem *Problem) ([]types.SolvableId, error) {
	st := &assignment{byName: map[types.NameId]types.SolvableId{}}
	ok, err := s.search(ctx, problem, st)
	if err != nil {
		return nil, err
	}
	if !ok {
		msg := "no solution satisfies the given requirements"
		if s.lastConflict != "" {
			msg = fmt.Sprintf("%s: cannot satisfy %s", msg, s.lastConflict)
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(msg)
	}
	log.Debug().Int("solvables", len(st.order)).Msg("solve complete")
	return append([]types.SolvableId(nil), st.order...), nil
}

func (s *Solver) search(ctx context.Context, problem *Problem, st *assignment) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("solve cancelled").
			WithCause(err)
	}

	req, found := s.nextUnsatisfied(problem, st)
	if !found {
		return true, nil
	}

	viable := false
	for _, vsID := range s.requirementVersionSets(req.Requirement) {
		for _, candidate := range s.viableCandidates(st, vsID) {
			nameID := s.provider.SolvableName(candidate)
			st.byName[nameID] = candidate
			st.order = append(st.order, candidate)
			viable = true

			ok, err := s.search(ctx, problem, st)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}

			delete(st.byName, nameID)
			st.order = st.order[:len(st.order)-1]
		}
	}
	if !viable {
		s.lastConflict = s.describeRequirement(req.Requirement)
	}
	return false, nil
}

// nextUnsatisfied scans the active requirements in deterministic order:
// the problem roots first, then each selected solvable's requirements in
// selection order. Conditional requirements whose condition does not
// hold under the current assignment are inactive; they are re-examined
// on every scan, so a condition satisfied by a later selection activates
// its requirement before the search can terminate.
func (s *Solver) nextUnsatisfied(problem *Problem, st *assignment) (types.ConditionalRequirement, bool) {
	for _, req := range problem.requirements {
		if s.requirementActive(st, req) && !s.requirementSatisfied(st, req.Requirement) {
			return req, true
		}
	}
	for _, sid := range st.order {
		for _, req := range s.provider.GetDependencies(sid).Requirements {
			if s.requirementActive(st, req) && !s.requirementSatisfied(st, req.Requirement) {
				return req, true
			}
		}
	}
	return types.ConditionalRequirement{}, false
}

func (s *Solver) requirementActive(st *assignment, req types.ConditionalRequirement) bool {
	if req.Condition == nil {
		return true
	}
	condition := s.provider.ResolveCondition(*req.Condition)
	return s.versionSetSatisfied(st, condition.VersionSet)
}

func (s *Solver) requirementSatisfied(st *assignment, req types.Requirement) bool {
	for _, vsID := range s.requirementVersionSets(req) {
		if s.versionSetSatisfied(st, vsID) {
			return true
		}
	}
	return false
}

func (s *Solver) versionSetSatisfied(st *assignment, vsID types.VersionSetId) bool {
	selected, ok := st.byName[s.provider.VersionSetName(vsID)]
	if !ok {
		return false
	}
	return len(s.provider.FilterCandidates([]types.SolvableId{selected}, vsID, false)) > 0
}

func (s *Solver) requirementVersionSets(req types.Requirement) []types.VersionSetId {
	if req.Kind == types.RequirementUnion {
		return s.provider.VersionSetsInUnion(req.Union)
	}
	return []types.VersionSetId{req.VersionSet}
}

// viableCandidates lists the candidates worth trying for one version set,
// most-preferred first: provider sort order with the favored solvable
// promoted, restricted to the locked solvable when one exists, filtered
// by the version set, and finally checked against the constrains of the
// current assignment.
func (s *Solver) viableCandidates(st *assignment, vsID types.VersionSetId) []types.SolvableId {
	nameID := s.provider.VersionSetName(vsID)
	if _, taken := st.byName[nameID]; taken {
		return nil
	}
	candidates := s.provider.GetCandidates(nameID)
	if candidates == nil {
		return nil
	}

	list := append([]types.SolvableId(nil), candidates.Candidates...)
	if len(candidates.Excluded) > 0 {
		excluded := map[types.SolvableId]bool{}
		for _, sid := range candidates.Excluded {
			excluded[sid] = true
		}
		kept := list[:0]
		for _, sid := range list {
			if !excluded[sid] {
				kept = append(kept, sid)
			}
		}
		list = kept
	}
	s.provider.SortCandidates(list)
	if candidates.Favored != nil {
		list = promote(list, *candidates.Favored)
	}
	if candidates.Locked != nil {
		list = []types.SolvableId{*candidates.Locked}
	}

	var viable []types.SolvableId
	for _, sid := range s.provider.FilterCandidates(list, vsID, false) {
		if s.compatible(st, sid) {
			viable = append(viable, sid)
		}
	}
	return viable
}

// compatible checks a candidate against every constrain of the current
// assignment, and the candidate's own constrains against every selected
// solvable. A constrains entry forbids the solvables its version set
// reports under inverse filtering.
func (s *Solver) compatible(st *assignment, candidate types.SolvableId) bool {
	candidateName := s.provider.SolvableName(candidate)
	for _, selected := range st.order {
		for _, vsID := range s.provider.GetDependencies(selected).Constrains {
			if s.provider.VersionSetName(vsID) != candidateName {
				continue
			}
			if len(s.provider.FilterCandidates([]types.SolvableId{candidate}, vsID, true)) > 0 {
				return false
			}
		}
	}
	for _, vsID := range s.provider.GetDependencies(candidate).Constrains {
		selected, ok := st.byName[s.provider.VersionSetName(vsID)]
		if !ok {
			continue
		}
		if len(s.provider.FilterCandidates([]types.SolvableId{selected}, vsID, true)) > 0 {
			return false
		}
	}
	return true
}

func (s *Solver) describeRequirement(req types.Requirement) string {
	sets := s.requirementVersionSets(req)
	if len(sets) == 0 {
		return "empty requirement"
	}
	out := s.provider.DisplayVersionSet(sets[0])
	for _, vsID := range sets[1:] {
		out += " | " + s.provider.DisplayVersionSet(vsID)
	}
	return out
}

func promote(list []types.SolvableId, favorite types.SolvableId) []types.SolvableId {
	for i, sid := range list {
		if sid == favorite {
			copy(list[1:i+1], list[:i])
			list[0] = favorite
			break
		}
	}
	return list
}
