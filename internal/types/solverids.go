package types

// Opaque-id, requirement, and interner types consumed by the solver engine.
// Every id is a small integer indexing into the pool's arenas.

type NameId int

func NameIdFromUsize(u int) NameId { return NameId(u) }
func (id NameId) ToUsize() int     { return int(id) }

type SolvableId int

func SolvableIdFromUsize(u int) SolvableId { return SolvableId(u) }
func (id SolvableId) ToUsize() int         { return int(id) }

type VersionSetId int

func VersionSetIdFromUsize(u int) VersionSetId { return VersionSetId(u) }
func (id VersionSetId) ToUsize() int           { return int(id) }

type VersionSetUnionId int

func VersionSetUnionIdFromUsize(u int) VersionSetUnionId { return VersionSetUnionId(u) }
func (id VersionSetUnionId) ToUsize() int                { return int(id) }

type ConditionId int

func ConditionIdFromUsize(u int) ConditionId { return ConditionId(u) }
func (id ConditionId) ToUsize() int          { return int(id) }

type StringId int

func StringIdFromUsize(u int) StringId { return StringId(u) }
func (id StringId) ToUsize() int       { return int(id) }

// RequirementKind tags whether a Requirement is a single version-set or an
// ordered union of them.
type RequirementKind int

const (
	RequirementSingle RequirementKind = iota
	RequirementUnion
)

// Requirement is Single(VersionSetId) | Union(VersionSetUnionId).
type Requirement struct {
	Kind       RequirementKind
	VersionSet VersionSetId
	Union      VersionSetUnionId
}

func SingleRequirement(vs VersionSetId) Requirement {
	return Requirement{Kind: RequirementSingle, VersionSet: vs}
}

func UnionRequirement(u VersionSetUnionId) Requirement {
	return Requirement{Kind: RequirementUnion, Union: u}
}

// ConditionalRequirement gates a Requirement behind an optional Condition;
// nil means unconditional.
type ConditionalRequirement struct {
	Condition   *ConditionId
	Requirement Requirement
}

// ConditionKind tags a Condition's variant. Only "version-set X is
// satisfied" exists today.
type ConditionKind int

const (
	ConditionRequirement ConditionKind = iota
)

type Condition struct {
	Kind       ConditionKind
	VersionSet VersionSetId
}

// KnownDependencies is the per-solvable compiled output the provider hands
// back to get_dependencies.
type KnownDependencies struct {
	Requirements []ConditionalRequirement
	Constrains   []VersionSetId
}

// HintDependenciesAvailable tells the solver whether it may assume
// get_dependencies has already been computed for every candidate.
type HintDependenciesAvailable int

const (
	HintAll HintDependenciesAvailable = iota
)

// Candidates is the per-name answer to get_candidates.
type Candidates struct {
	Candidates                []SolvableId
	Favored                   *SolvableId
	Locked                    *SolvableId
	HintDependenciesAvailable HintDependenciesAvailable
	Excluded                  []SolvableId
}
