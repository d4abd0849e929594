package core

import (
	"fmt"

	"portage-resolvo/internal/types"
)

// PackageName is the name axis the solver keys candidates by. Slots are
// encoded into the name so that versions in different slots of the same
// category/package are independent names and may coexist in a solution.
type PackageName struct {
	Cpn types.Cpn
	// Slot restricts the name to one slot; empty means the package is
	// unslotted (or the dep did not name a slot).
	Slot string
}

func (n PackageName) String() string {
	if n.Slot != "" {
		return fmt.Sprintf("%s:%s", n.Cpn, n.Slot)
	}
	return n.Cpn.String()
}

// Pool is the arena storage behind every solver id. Each id type indexes
// a slice here; names and version sets carry reverse maps so interning
// the same value twice yields the same id. Solvables, unions, conditions,
// and strings are append-only: each creation site already has distinct
// semantics, so dedup would buy nothing.
type Pool struct {
	names    []PackageName
	namesRev map[PackageName]types.NameId

	solvables     []types.PackageMetadata
	solvableNames []types.NameId

	versionSets     []types.VersionConstraint
	versionSetNames []types.NameId
	versionSetsRev  map[string]types.VersionSetId

	unions [][]types.VersionSetId

	conditions []types.Condition

	strings []string
}

func NewPool() *Pool {
	return &Pool{
		namesRev:       map[PackageName]types.NameId{},
		versionSetsRev: map[string]types.VersionSetId{},
	}
}

// InternName interns a package name, returning the existing id when the
// name was seen before.
func (p *Pool) InternName(name PackageName) types.NameId {
	if id, ok := p.namesRev[name]; ok {
		return id
	}
	id := types.NameIdFromUsize(len(p.names))
	p.namesRev[name] = id
	p.names = append(p.names, name)
	return id
}

func (p *Pool) ResolveName(id types.NameId) PackageName {
	return p.names[id.ToUsize()]
}

// InternSolvable adds a concrete package version under the given name.
func (p *Pool) InternSolvable(nameId types.NameId, meta types.PackageMetadata) types.SolvableId {
	id := types.SolvableIdFromUsize(len(p.solvables))
	p.solvables = append(p.solvables, meta)
	p.solvableNames = append(p.solvableNames, nameId)
	return id
}

func (p *Pool) ResolveSolvable(id types.SolvableId) types.PackageMetadata {
	return p.solvables[id.ToUsize()]
}

func (p *Pool) SolvableName(id types.SolvableId) types.NameId {
	return p.solvableNames[id.ToUsize()]
}

func (p *Pool) SolvableCount() int {
	return len(p.solvables)
}

// InternVersionSet interns a version constraint under the given name,
// deduplicating by constraint value. The caller supplies a name id
// consistent with the constraint's CPN and slot.
func (p *Pool) InternVersionSet(nameId types.NameId, constraint types.VersionConstraint) types.VersionSetId {
	key := constraint.Key()
	if id, ok := p.versionSetsRev[key]; ok {
		return id
	}
	id := types.VersionSetIdFromUsize(len(p.versionSets))
	p.versionSetsRev[key] = id
	p.versionSets = append(p.versionSets, constraint)
	p.versionSetNames = append(p.versionSetNames, nameId)
	return id
}

func (p *Pool) ResolveVersionSet(id types.VersionSetId) types.VersionConstraint {
	return p.versionSets[id.ToUsize()]
}

func (p *Pool) VersionSetName(id types.VersionSetId) types.NameId {
	return p.versionSetNames[id.ToUsize()]
}

func (p *Pool) VersionSetCount() int {
	return len(p.versionSets)
}

// InternVersionSetUnion interns an ordered disjunction of version sets.
// Order matters: earlier entries are the solver's first preference.
func (p *Pool) InternVersionSetUnion(sets []types.VersionSetId) types.VersionSetUnionId {
	id := types.VersionSetUnionIdFromUsize(len(p.unions))
	p.unions = append(p.unions, sets)
	return id
}

func (p *Pool) ResolveVersionSetUnion(id types.VersionSetUnionId) []types.VersionSetId {
	return p.unions[id.ToUsize()]
}

func (p *Pool) InternCondition(condition types.Condition) types.ConditionId {
	id := types.ConditionIdFromUsize(len(p.conditions))
	p.conditions = append(p.conditions, condition)
	return id
}

func (p *Pool) ResolveCondition(id types.ConditionId) types.Condition {
	return p.conditions[id.ToUsize()]
}

// InternString interns a string for solver diagnostics.
func (p *Pool) InternString(s string) types.StringId {
	id := types.StringIdFromUsize(len(p.strings))
	p.strings = append(p.strings, s)
	return id
}

func (p *Pool) ResolveString(id types.StringId) string {
	return p.strings[id.ToUsize()]
}
