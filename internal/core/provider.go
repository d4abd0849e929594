package core

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"portage-resolvo/internal/policies"
	"portage-resolvo/internal/ports"
	"portage-resolvo/internal/types"
)

// flagVirtuals is the synthesized data for one solver-decided USE flag:
// the conditions tied to its pair of mutually exclusive virtual solvables
// and the pre-built choice union injected into every referencing solvable.
type flagVirtuals struct {
	onCondition  types.ConditionId
	offCondition types.ConditionId
	// choiceUnion lists NotUSE before USE so the solver is biased toward
	// flag-off when nothing forces a choice.
	choiceUnion types.VersionSetUnionId
}

// Provider bridges a Portage package repository to the solver's candidate
// and dependency callbacks. Construction eagerly interns every solvable,
// synthesizes the virtual solvables for solver-decided flags and choice
// groups, and pre-compiles each solvable's dependency trees. After
// construction the provider is read-only except for InternRequirement.
type Provider struct {
	pool         *Pool
	candidates   map[types.NameId][]types.SolvableId
	dependencies map[types.SolvableId]types.KnownDependencies
	// cpnSlots maps an unversioned CPN to every slotted name known for
	// it, in registration order. Unslotted atoms fan out over this list.
	cpnSlots map[types.Cpn][]types.NameId
	// blockerTypes records, per constrains version set, whether it came
	// from a weak or strong blocker. Absent means not a blocker.
	blockerTypes map[types.VersionSetId]types.Blocker
	// rebuildTriggers marks version sets whose atom carried a ":=" slot
	// operator.
	rebuildTriggers map[types.VersionSetId]bool
	flagVirtuals    map[string]flagVirtuals
	flagPolicy      policies.FlagPolicy
	favored         map[types.NameId]types.SolvableId
	locked          map[types.NameId]types.SolvableId
	xofCounter      int
}

// NewProvider builds a provider from a repository and a USE configuration
// with no installed-package facts.
func NewProvider(ctx context.Context, repo ports.Repository, useConfig types.UseConfig) (*Provider, error) {
	return NewProviderWithInstalled(ctx, repo, useConfig, types.InstalledSet{})
}

// NewProviderWithInstalled builds a provider from a repository, a USE
// configuration, and the set of packages already installed. Installed
// entries whose CPV exists in the repository attach their policy to that
// solvable; entries the repository does not know are injected as extra
// candidates.
func NewProviderWithInstalled(ctx context.Context, repo ports.Repository, useConfig types.UseConfig, installed types.InstalledSet) (*Provider, error) {
	if err := ValidateUseConfig(ctx, useConfig); err != nil {
		return nil, err
	}
	if err := ValidateInstalledSet(ctx, installed); err != nil {
		return nil, err
	}

	p := &Provider{
		pool:            NewPool(),
		candidates:      map[types.NameId][]types.SolvableId{},
		dependencies:    map[types.SolvableId]types.KnownDependencies{},
		cpnSlots:        map[types.Cpn][]types.NameId{},
		blockerTypes:    map[types.VersionSetId]types.Blocker{},
		rebuildTriggers: map[types.VersionSetId]bool{},
		flagVirtuals:    map[string]flagVirtuals{},
		flagPolicy:      policies.NewFlagPolicy(useConfig),
		favored:         map[types.NameId]types.SolvableId{},
		locked:          map[types.NameId]types.SolvableId{},
	}

	installedIndex := map[string]types.InstalledPolicy{}
	for _, entry := range installed.Packages {
		installedIndex[entry.Metadata.Cpv.String()] = entry.Policy
	}

	// Ingest every repository solvable before compiling any dependency
	// tree: unslotted atoms fan out over the slots known at compile
	// time, so slot discovery must be complete first.
	type pendingSolvable struct {
		sid  types.SolvableId
		deps types.PackageDeps
	}
	var pending []pendingSolvable
	foundInstalled := map[string]bool{}

	cpns := repo.AllPackages()
	sort.Slice(cpns, func(i, j int) bool { return cpns[i].String() < cpns[j].String() })
	for _, cpn := range cpns {
		for _, meta := range repo.VersionsFor(cpn) {
			sid, nameID := p.ingestSolvable(meta)
			pending = append(pending, pendingSolvable{sid: sid, deps: meta.Dependencies})
			if policy, ok := installedIndex[meta.Cpv.String()]; ok {
				foundInstalled[meta.Cpv.String()] = true
				p.recordInstalled(nameID, sid, policy)
			}
		}
	}

	for _, entry := range installed.Packages {
		if foundInstalled[entry.Metadata.Cpv.String()] {
			continue
		}
		sid, nameID := p.ingestSolvable(entry.Metadata)
		pending = append(pending, pendingSolvable{sid: sid, deps: entry.Metadata.Dependencies})
		p.recordInstalled(nameID, sid, entry.Policy)
	}

	for _, flag := range p.flagPolicy.SolverDecided() {
		p.internFlagVirtuals(flag)
	}

	for _, item := range pending {
		var requirements []types.ConditionalRequirement
		var constrains []types.VersionSetId
		run := newCompileRun()
		for _, class := range item.deps.IterClasses() {
			p.compileEntries(run, class.Entries, &requirements, &constrains)
		}
		// One choice union per solver-decided flag this solvable
		// references, forcing the solver to settle the flag.
		for _, flag := range run.flags() {
			fv := p.flagVirtuals[flag]
			requirements = append(requirements, types.ConditionalRequirement{
				Requirement: types.UnionRequirement(fv.choiceUnion),
			})
		}
		p.dependencies[item.sid] = types.KnownDependencies{
			Requirements: requirements,
			Constrains:   constrains,
		}
		log.Trace().
			Str("solvable", p.pool.ResolveSolvable(item.sid).Cpv.String()).
			Int("requirements", len(requirements)).
			Int("constrains", len(constrains)).
			Msg("compiled dependencies")
	}

	log.Debug().
		Int("solvables", p.pool.SolvableCount()).
		Int("version_sets", p.pool.VersionSetCount()).
		Int("solver_decided_flags", len(p.flagVirtuals)).
		Msg("provider built")
	return p, nil
}

// ingestSolvable interns one package version and registers it as a
// candidate under its slotted name.
func (p *Provider) ingestSolvable(meta types.PackageMetadata) (types.SolvableId, types.NameId) {
	nameID := p.pool.InternName(PackageName{Cpn: meta.Cpv.Cpn, Slot: meta.EffectiveSlot()})
	p.appendCpnSlot(meta.Cpv.Cpn, nameID)
	sid := p.pool.InternSolvable(nameID, meta)
	p.candidates[nameID] = append(p.candidates[nameID], sid)
	return sid, nameID
}

func (p *Provider) appendCpnSlot(cpn types.Cpn, nameID types.NameId) {
	for _, existing := range p.cpnSlots[cpn] {
		if existing == nameID {
			return
		}
	}
	p.cpnSlots[cpn] = append(p.cpnSlots[cpn], nameID)
}

func (p *Provider) recordInstalled(nameID types.NameId, sid types.SolvableId, policy types.InstalledPolicy) {
	switch policy {
	case types.Locked:
		p.locked[nameID] = sid
	default:
		p.favored[nameID] = sid
	}
}

// internFlagVirtuals creates the USE_<flag> / NotUSE_<flag> virtual pair
// for one solver-decided flag, wires their mutual exclusion, and interns
// the conditions and choice union the compiler attaches to referencing
// solvables.
func (p *Provider) internFlagVirtuals(flag string) {
	intern := func(pkg string) (types.SolvableId, types.VersionSetId) {
		cpn := types.Cpn{Category: "virtual", Package: pkg}
		meta := types.PackageMetadata{Cpv: types.Cpv{Cpn: cpn, Version: versionOne}}
		nameID := p.pool.InternName(PackageName{Cpn: cpn, Slot: meta.EffectiveSlot()})
		p.appendCpnSlot(cpn, nameID)
		sid := p.pool.InternSolvable(nameID, meta)
		p.candidates[nameID] = append(p.candidates[nameID], sid)
		vsID := p.pool.InternVersionSet(nameID, types.VersionConstraint{
			Cpn:      cpn,
			Operator: types.OpGreaterEqual,
			Version:  versionZero,
		})
		return sid, vsID
	}

	onSid, onVs := intern("USE_" + flag)
	offSid, offVs := intern("NotUSE_" + flag)

	// Each virtual constrains the other through an inverted copy of its
	// version set, which forbids selecting it at all.
	exclude := func(vsID types.VersionSetId) types.VersionSetId {
		constraint := p.pool.ResolveVersionSet(vsID)
		constraint.Inverted = true
		return p.pool.InternVersionSet(p.pool.VersionSetName(vsID), constraint)
	}
	p.dependencies[onSid] = types.KnownDependencies{Constrains: []types.VersionSetId{exclude(offVs)}}
	p.dependencies[offSid] = types.KnownDependencies{Constrains: []types.VersionSetId{exclude(onVs)}}

	p.flagVirtuals[flag] = flagVirtuals{
		onCondition:  p.pool.InternCondition(types.Condition{Kind: types.ConditionRequirement, VersionSet: onVs}),
		offCondition: p.pool.InternCondition(types.Condition{Kind: types.ConditionRequirement, VersionSet: offVs}),
		choiceUnion:  p.pool.InternVersionSetUnion([]types.VersionSetId{offVs, onVs}),
	}
}

// InternRequirement turns a root atom into a requirement suitable for a
// solve problem. Unslotted atoms become a union over every known slot of
// the CPN.
func (p *Provider) InternRequirement(dep types.Dep) types.ConditionalRequirement {
	slot, subslot := extractSlot(dep)
	op, version := depOpVersion(dep)
	constraint := types.VersionConstraint{
		Cpn:            dep.Cpn,
		Operator:       op,
		Version:        version,
		Slot:           slot,
		Subslot:        subslot,
		Repo:           dep.Repo,
		UseConstraints: p.resolveUseDeps(dep),
	}
	return p.requirementFor(p.internAtomVersionSets(dep.Cpn, slot, constraint))
}

// --- solver callbacks ---

// GetCandidates returns the pre-built candidate list for a name, along
// with the favored and locked choices. Nil means the name is unknown.
func (p *Provider) GetCandidates(name types.NameId) *types.Candidates {
	solvables, ok := p.candidates[name]
	if !ok {
		return nil
	}
	c := &types.Candidates{
		Candidates:                append([]types.SolvableId(nil), solvables...),
		HintDependenciesAvailable: types.HintAll,
	}
	if sid, ok := p.favored[name]; ok {
		fav := sid
		c.Favored = &fav
	}
	if sid, ok := p.locked[name]; ok {
		lock := sid
		c.Locked = &lock
	}
	return c
}

// SortCandidates orders candidates newest-version first. Ties fall back
// to registration order so solutions are reproducible.
func (p *Provider) SortCandidates(solvables []types.SolvableId) {
	sort.SliceStable(solvables, func(i, j int) bool {
		vi := p.pool.ResolveSolvable(solvables[i]).Cpv.Version
		vj := p.pool.ResolveSolvable(solvables[j]).Cpv.Version
		return vi.CompareFull(vj) > 0
	})
}

// FilterCandidates returns the subset of candidates matching (or, with
// inverse, not matching) a version set. A constraint's Inverted bit flips
// the match before inverse is applied, which is how blocker constrains
// end up forbidding exactly the candidates that match the blocker.
func (p *Provider) FilterCandidates(candidates []types.SolvableId, versionSet types.VersionSetId, inverse bool) []types.SolvableId {
	constraint := p.pool.ResolveVersionSet(versionSet)
	var out []types.SolvableId
	for _, sid := range candidates {
		meta := p.pool.ResolveSolvable(sid)
		matches := VersionMatches(meta.Cpv.Version, constraint.Operator, constraint.Version) &&
			slotMatches(meta, constraint)
		if constraint.Inverted {
			matches = !matches
		}
		if matches != inverse {
			out = append(out, sid)
		}
	}
	return out
}

// GetDependencies returns the pre-compiled dependencies of a solvable.
func (p *Provider) GetDependencies(solvable types.SolvableId) types.KnownDependencies {
	return p.dependencies[solvable]
}

// --- interner callbacks ---

func (p *Provider) VersionSetName(versionSet types.VersionSetId) types.NameId {
	return p.pool.VersionSetName(versionSet)
}

func (p *Provider) SolvableName(solvable types.SolvableId) types.NameId {
	return p.pool.SolvableName(solvable)
}

func (p *Provider) VersionSetsInUnion(union types.VersionSetUnionId) []types.VersionSetId {
	return p.pool.ResolveVersionSetUnion(union)
}

func (p *Provider) ResolveCondition(condition types.ConditionId) types.Condition {
	return p.pool.ResolveCondition(condition)
}

// --- caller-facing accessors ---

// Pool exposes the underlying arena for solution inspection.
func (p *Provider) Pool() *Pool {
	return p.pool
}

// PackageMetadata resolves a solved id back to its package metadata.
func (p *Provider) PackageMetadata(solvable types.SolvableId) types.PackageMetadata {
	return p.pool.ResolveSolvable(solvable)
}

// BlockerType reports whether a version set came from a blocker and of
// which kind.
func (p *Provider) BlockerType(versionSet types.VersionSetId) (types.Blocker, bool) {
	b, ok := p.blockerTypes[versionSet]
	return b, ok
}

// IsRebuildTrigger reports whether a version set carries a ":=" slot
// operator.
func (p *Provider) IsRebuildTrigger(versionSet types.VersionSetId) bool {
	return p.rebuildTriggers[versionSet]
}

// FlagCondition returns the condition that holds when a solver-decided
// flag is on.
func (p *Provider) FlagCondition(flag string) (types.ConditionId, bool) {
	fv, ok := p.flagVirtuals[flag]
	return fv.onCondition, ok
}

// FlagOffCondition returns the condition that holds when a solver-decided
// flag is off.
func (p *Provider) FlagOffCondition(flag string) (types.ConditionId, bool) {
	fv, ok := p.flagVirtuals[flag]
	return fv.offCondition, ok
}
