package core

import (
	"fmt"
	"sort"
	"strings"

	"portage-resolvo/internal/policies"
	"portage-resolvo/internal/types"
)

// DepEdge is one labeled dependency edge between two solvables in a
// solution: from depends on to through the given class.
type DepEdge struct {
	From  types.SolvableId
	To    types.SolvableId
	Class types.DepClass
}

// CycleError reports the solvables left unordered after every deferrable
// edge was dropped. It is an ordering failure, not a solve failure.
type CycleError struct {
	Members []types.SolvableId
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle among %d packages", len(e.Members))
}

// DependencyGraph walks every solution member's original dependency trees
// and emits a labeled edge for each non-blocker atom that matches another
// member. USE-conditional subtrees are evaluated against the effective
// flag state: eager-on flags are active, and a solver-decided flag is
// active exactly when its on-virtual made it into the solution.
func (p *Provider) DependencyGraph(solution []types.SolvableId) []DepEdge {
	flagOn := p.effectiveFlagState(solution)

	var edges []DepEdge
	for _, from := range solution {
		meta := p.pool.ResolveSolvable(from)
		for _, class := range meta.Dependencies.IterClasses() {
			p.collectDepEdges(from, class.Class, class.Entries, solution, flagOn, &edges)
		}
	}
	return edges
}

// effectiveFlagState reports which USE flags are active for post-solve
// tree evaluation.
func (p *Provider) effectiveFlagState(solution []types.SolvableId) func(flag string) bool {
	onVirtuals := map[string]bool{}
	for _, sid := range solution {
		cpn := p.pool.ResolveSolvable(sid).Cpv.Cpn
		if cpn.Category == "virtual" && strings.HasPrefix(cpn.Package, "USE_") {
			onVirtuals[strings.TrimPrefix(cpn.Package, "USE_")] = true
		}
	}
	return func(flag string) bool {
		switch p.flagPolicy.State(flag) {
		case policies.FlagOn:
			return true
		case policies.FlagSolverDecided:
			return onVirtuals[flag]
		default:
			return false
		}
	}
}

func (p *Provider) collectDepEdges(from types.SolvableId, class types.DepClass, entries []types.DepEntry, solution []types.SolvableId, flagOn func(string) bool, edges *[]DepEdge) {
	for _, entry := range entries {
		switch entry.Kind {
		case types.EntryAtom:
			dep := *entry.Atom
			// Blockers never create install-order edges.
			if dep.Blocker != types.BlockerNone {
				continue
			}
			for _, to := range solution {
				if to == from {
					continue
				}
				if p.depMatchesSolvable(dep, p.pool.ResolveSolvable(to)) {
					*edges = append(*edges, DepEdge{From: from, To: to, Class: class})
				}
			}
		case types.EntryUseConditional:
			include := flagOn(entry.Flag)
			if entry.Negate {
				include = !include
			}
			if include {
				p.collectDepEdges(from, class, entry.Children, solution, flagOn, edges)
			}
		default:
			// Group alternatives emit edges for whichever members
			// actually matched something in the solution.
			p.collectDepEdges(from, class, entry.Children, solution, flagOn, edges)
		}
	}
}

// InstallOrder computes an installation order (dependencies before
// dependents) via Kahn's sort over the non-post-merge edges. Post-merge
// edges mean "install the dependent first, then satisfy the back-edge",
// so dropping them breaks exactly the cycles Portage resolves the same
// way. A remaining cycle is returned as a CycleError carrying its
// members.
func (p *Provider) InstallOrder(solution []types.SolvableId) ([]types.SolvableId, error) {
	edges := p.DependencyGraph(solution)

	dependents := map[types.SolvableId][]types.SolvableId{}
	inDegree := map[types.SolvableId]int{}
	for _, sid := range solution {
		inDegree[sid] = 0
	}
	for _, edge := range edges {
		if edge.Class == types.Pdepend {
			continue
		}
		// from depends on to: to must be installed first.
		dependents[edge.To] = append(dependents[edge.To], edge.From)
		inDegree[edge.From]++
	}

	var queue []types.SolvableId
	for _, sid := range solution {
		if inDegree[sid] == 0 {
			queue = append(queue, sid)
		}
	}
	p.sortByCpv(queue)

	order := make([]types.SolvableId, 0, len(solution))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var ready []types.SolvableId
		for _, dep := range dependents[node] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		p.sortByCpv(ready)
		queue = append(queue, ready...)
	}

	if len(order) == len(solution) {
		return order, nil
	}

	ordered := map[types.SolvableId]bool{}
	for _, sid := range order {
		ordered[sid] = true
	}
	var cycle []types.SolvableId
	for _, sid := range solution {
		if !ordered[sid] {
			cycle = append(cycle, sid)
		}
	}
	return nil, &CycleError{Members: cycle}
}

// sortByCpv orders solvables lexicographically by CPV for deterministic
// frontier processing.
func (p *Provider) sortByCpv(solvables []types.SolvableId) {
	sort.Slice(solvables, func(i, j int) bool {
		return p.pool.ResolveSolvable(solvables[i]).Cpv.String() <
			p.pool.ResolveSolvable(solvables[j]).Cpv.String()
	})
}
