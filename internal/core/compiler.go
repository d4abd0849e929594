package core

import (
	"sort"

	"github.com/rs/zerolog/log"

	"portage-resolvo/internal/types"
)

var (
	versionZero = types.Version{Numbers: []string{"0"}}
	versionOne  = types.Version{Numbers: []string{"1", "0"}}
)

// compileRun carries the per-solvable mutable state of one dependency-tree
// compilation: the solver-decided flags referenced so far, used to inject
// the flag choice union exactly once per solvable.
type compileRun struct {
	encountered map[string]bool
}

func newCompileRun() *compileRun {
	return &compileRun{encountered: map[string]bool{}}
}

func (r *compileRun) flags() []string {
	flags := make([]string, 0, len(r.encountered))
	for flag := range r.encountered {
		flags = append(flags, flag)
	}
	sort.Strings(flags)
	return flags
}

// compileEntries recursively converts a dependency tree into solver
// requirements and constrains.
func (p *Provider) compileEntries(run *compileRun, entries []types.DepEntry, reqs *[]types.ConditionalRequirement, constrains *[]types.VersionSetId) {
	for _, entry := range entries {
		switch entry.Kind {
		case types.EntryAtom:
			p.compileAtom(*entry.Atom, reqs, constrains)
		case types.EntryUseConditional:
			p.compileUseConditional(run, entry, reqs, constrains, false)
		case types.EntryAnyOf:
			p.compileAnyOf(run, entry.Children, reqs, constrains)
		case types.EntryExactlyOneOf:
			p.compileChoiceGroup(run, entry.Children, false, reqs)
		case types.EntryAtMostOneOf:
			p.compileChoiceGroup(run, entry.Children, true, reqs)
		}
	}
}

// compileUseConditional handles a "flag? ( ... )" subtree. Solver-decided
// flags gate the children's requirements behind the flag's on- or
// off-condition; eager flags are evaluated here and either inlined or
// dropped. insideAnyOf keeps nested children contributing to the parent
// disjunction rather than becoming independent requirements.
func (p *Provider) compileUseConditional(run *compileRun, entry types.DepEntry, reqs *[]types.ConditionalRequirement, constrains *[]types.VersionSetId, insideAnyOf bool) {
	if fv, ok := p.flagVirtuals[entry.Flag]; ok {
		run.encountered[entry.Flag] = true
		condID := fv.onCondition
		if entry.Negate {
			condID = fv.offCondition
		}
		var condReqs []types.ConditionalRequirement
		if insideAnyOf {
			p.compileAnyOf(run, entry.Children, &condReqs, constrains)
		} else {
			p.compileEntries(run, entry.Children, &condReqs, constrains)
		}
		for _, req := range condReqs {
			cond := condID
			req.Condition = &cond
			*reqs = append(*reqs, req)
		}
		return
	}
	flagActive := p.flagPolicy.Enabled(entry.Flag)
	include := flagActive
	if entry.Negate {
		include = !flagActive
	}
	if include {
		if insideAnyOf {
			p.compileAnyOf(run, entry.Children, reqs, constrains)
		} else {
			p.compileEntries(run, entry.Children, reqs, constrains)
		}
	}
}

// compileAtom converts one dependency atom. A slotted atom targets the
// single (CPN, slot) name; an unslotted one fans out over every slot name
// already known for the CPN. Unknown CPNs still mint a name so the solver
// can report the missing candidates.
func (p *Provider) compileAtom(dep types.Dep, reqs *[]types.ConditionalRequirement, constrains *[]types.VersionSetId) {
	slot, subslot := extractSlot(dep)
	isBlocker := dep.Blocker != types.BlockerNone
	op, version := depOpVersion(dep)

	constraint := types.VersionConstraint{
		Cpn:            dep.Cpn,
		Operator:       op,
		Version:        version,
		Slot:           slot,
		Subslot:        subslot,
		Repo:           dep.Repo,
		UseConstraints: p.resolveUseDeps(dep),
		Inverted:       isBlocker,
	}

	vsIDs := p.internAtomVersionSets(dep.Cpn, slot, constraint)
	if hasSlotEqualOp(dep) {
		for _, vsID := range vsIDs {
			p.rebuildTriggers[vsID] = true
		}
	}

	if isBlocker {
		for _, vsID := range vsIDs {
			*constrains = append(*constrains, vsID)
			p.blockerTypes[vsID] = dep.Blocker
		}
		return
	}
	*reqs = append(*reqs, p.requirementFor(vsIDs))
}

// internAtomVersionSets interns the version set(s) an atom resolves to:
// one for a slotted atom, one per known slot name otherwise.
func (p *Provider) internAtomVersionSets(cpn types.Cpn, slot string, constraint types.VersionConstraint) []types.VersionSetId {
	if slot != "" {
		nameID := p.pool.InternName(PackageName{Cpn: cpn, Slot: slot})
		return []types.VersionSetId{p.pool.InternVersionSet(nameID, constraint)}
	}
	if names, ok := p.cpnSlots[cpn]; ok {
		vsIDs := make([]types.VersionSetId, 0, len(names))
		for _, nameID := range names {
			vsIDs = append(vsIDs, p.pool.InternVersionSet(nameID, constraint))
		}
		return vsIDs
	}
	// Unknown CPN; mint a name so the solve can still report the
	// unsatisfied dependency.
	nameID := p.pool.InternName(PackageName{Cpn: cpn})
	return []types.VersionSetId{p.pool.InternVersionSet(nameID, constraint)}
}

func (p *Provider) requirementFor(vsIDs []types.VersionSetId) types.ConditionalRequirement {
	if len(vsIDs) == 1 {
		return types.ConditionalRequirement{Requirement: types.SingleRequirement(vsIDs[0])}
	}
	unionID := p.pool.InternVersionSetUnion(vsIDs)
	return types.ConditionalRequirement{Requirement: types.UnionRequirement(unionID)}
}

// compileAnyOf converts an "|| ( ... )" group into one union requirement.
// Blockers inside the group do not participate in the disjunction; they
// go straight to constrains.
func (p *Provider) compileAnyOf(run *compileRun, alternatives []types.DepEntry, reqs *[]types.ConditionalRequirement, constrains *[]types.VersionSetId) {
	var vsIDs []types.VersionSetId

	for _, alt := range alternatives {
		switch alt.Kind {
		case types.EntryAtom:
			dep := *alt.Atom
			if dep.Blocker != types.BlockerNone {
				var discard []types.ConditionalRequirement
				p.compileAtom(dep, &discard, constrains)
				continue
			}
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
			vsIDs = append(vsIDs, p.internAtomVersionSets(dep.Cpn, slot, constraint)...)
		case types.EntryUseConditional:
			p.compileUseConditional(run, alt, reqs, constrains, true)
		case types.EntryAnyOf:
			p.compileAnyOf(run, alt.Children, reqs, constrains)
		case types.EntryExactlyOneOf:
			p.compileChoiceGroup(run, alt.Children, false, reqs)
		case types.EntryAtMostOneOf:
			p.compileChoiceGroup(run, alt.Children, true, reqs)
		}
	}

	if len(vsIDs) == 1 {
		*reqs = append(*reqs, types.ConditionalRequirement{Requirement: types.SingleRequirement(vsIDs[0])})
	} else if len(vsIDs) > 1 {
		unionID := p.pool.InternVersionSetUnion(vsIDs)
		*reqs = append(*reqs, types.ConditionalRequirement{Requirement: types.UnionRequirement(unionID)})
	}
}

// compileChoiceGroup converts a "^^ ( ... )" or "?? ( ... )" group into
// virtual choice solvables with pairwise mutual exclusion. Each
// alternative becomes one virtual; the parent requires the union of all
// of them, so the solver must pick one. For "??" a leading "none" virtual
// with an empty dependency set lets the solver satisfy the union without
// installing any real alternative.
func (p *Provider) compileChoiceGroup(run *compileRun, alternatives []types.DepEntry, allowNone bool, reqs *[]types.ConditionalRequirement) {
	groupID := p.xofCounter
	p.xofCounter++

	type choice struct {
		sid        types.SolvableId
		vsID       types.VersionSetId
		reqs       []types.ConditionalRequirement
		constrains []types.VersionSetId
	}
	var choices []choice

	if allowNone {
		sid, vsID := p.internChoiceVirtual(groupID, "none")
		choices = append(choices, choice{sid: sid, vsID: vsID})
	}

	for i, alt := range alternatives {
		sid, vsID := p.internChoiceVirtual(groupID, intName(i))
		var childReqs []types.ConditionalRequirement
		var childConstrains []types.VersionSetId
		p.compileEntries(run, []types.DepEntry{alt}, &childReqs, &childConstrains)
		choices = append(choices, choice{sid: sid, vsID: vsID, reqs: childReqs, constrains: childConstrains})
	}

	allVsIDs := make([]types.VersionSetId, len(choices))
	for i, c := range choices {
		allVsIDs[i] = c.vsID
	}

	// Pairwise exclusion: each choice constrains every other choice
	// through an inverted copy of its version set, which forbids it.
	for i, c := range choices {
		constrains := c.constrains
		for j, vsID := range allVsIDs {
			if i != j {
				excluded := p.pool.ResolveVersionSet(vsID)
				excluded.Inverted = true
				constrains = append(constrains, p.pool.InternVersionSet(p.pool.VersionSetName(vsID), excluded))
			}
		}
		p.dependencies[c.sid] = types.KnownDependencies{
			Requirements: c.reqs,
			Constrains:   constrains,
		}
	}

	log.Trace().Int("group", groupID).Int("choices", len(choices)).Bool("allow_none", allowNone).
		Msg("compiled choice group")
	*reqs = append(*reqs, p.requirementFor(allVsIDs))
}

// internChoiceVirtual mints one virtual solvable for a choice group
// member and the version set that selects it.
func (p *Provider) internChoiceVirtual(groupID int, suffix string) (types.SolvableId, types.VersionSetId) {
	cpn := types.Cpn{Category: "virtual", Package: "xof_" + intName(groupID) + "_" + suffix}
	meta := types.PackageMetadata{
		Cpv: types.Cpv{Cpn: cpn, Version: versionOne},
	}
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

func intName(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// --- atom helpers ---

// extractSlot returns the (slot, subslot) restriction an atom imposes.
// ":*" and bare ":=" accept any slot, so both map to no restriction; the
// rebuild-trigger side of ":=" is tracked separately.
func extractSlot(dep types.Dep) (string, string) {
	if dep.Slot == nil {
		return "", ""
	}
	switch dep.Slot.Op {
	case types.SlotOpNamed:
		return dep.Slot.Slot, dep.Slot.Subslot
	case types.SlotOpEqual:
		return dep.Slot.Slot, ""
	default:
		return "", ""
	}
}

// hasSlotEqualOp reports whether the atom carries a ":=" or ":SLOT="
// operator, meaning the dependent must be rebuilt when the target's slot
// or sub-slot changes.
func hasSlotEqualOp(dep types.Dep) bool {
	return dep.Slot != nil && dep.Slot.Op == types.SlotOpEqual
}

// depOpVersion returns the operator and bare version of an atom,
// defaulting to ">=0" for unversioned atoms.
func depOpVersion(dep types.Dep) (types.Operator, types.Version) {
	if !dep.Versioned {
		return types.OpGreaterEqual, versionZero
	}
	return dep.Operator, dep.Version
}

// resolveUseDeps flattens an atom's USE-dep brackets into sorted
// (flag, enabled) pairs. Conditional variants are evaluated against the
// parent package's flag configuration now; entries that impose no
// constraint under the current configuration are omitted.
func (p *Provider) resolveUseDeps(dep types.Dep) []types.UseConstraint {
	if len(dep.UseDeps) == 0 {
		return nil
	}
	var constraints []types.UseConstraint
	for _, ud := range dep.UseDeps {
		parentOn := p.flagPolicy.Enabled(ud.Flag)
		switch ud.Kind {
		case types.UseDepEnabled:
			constraints = append(constraints, types.UseConstraint{Flag: ud.Flag, Enabled: true})
		case types.UseDepDisabled:
			constraints = append(constraints, types.UseConstraint{Flag: ud.Flag, Enabled: false})
		case types.UseDepConditional:
			if parentOn {
				constraints = append(constraints, types.UseConstraint{Flag: ud.Flag, Enabled: true})
			}
		case types.UseDepConditionalInverse:
			if !parentOn {
				constraints = append(constraints, types.UseConstraint{Flag: ud.Flag, Enabled: true})
			}
		case types.UseDepEqual:
			constraints = append(constraints, types.UseConstraint{Flag: ud.Flag, Enabled: parentOn})
		case types.UseDepEqualInverse:
			constraints = append(constraints, types.UseConstraint{Flag: ud.Flag, Enabled: !parentOn})
		}
	}
	sort.Slice(constraints, func(i, j int) bool { return constraints[i].Flag < constraints[j].Flag })
	return constraints
}

// slotMatches checks a candidate's slot, sub-slot, repository, and USE
// state against a constraint. All checks short-circuit on mismatch.
func slotMatches(meta types.PackageMetadata, constraint types.VersionConstraint) bool {
	if constraint.Slot != "" && meta.EffectiveSlot() != constraint.Slot {
		return false
	}
	if constraint.Subslot != "" && meta.Subslot != constraint.Subslot {
		return false
	}
	if constraint.Repo != "" && meta.Repo != constraint.Repo {
		return false
	}
	for _, uc := range constraint.UseConstraints {
		if meta.UseFlags[uc.Flag] != uc.Enabled {
			return false
		}
	}
	return true
}

// depMatchesSolvable is the post-solve counterpart of candidate
// filtering: it tests a raw atom against concrete package metadata.
func (p *Provider) depMatchesSolvable(dep types.Dep, meta types.PackageMetadata) bool {
	if dep.Cpn != meta.Cpv.Cpn {
		return false
	}
	op, version := depOpVersion(dep)
	if !VersionMatches(meta.Cpv.Version, op, version) {
		return false
	}
	slot, subslot := extractSlot(dep)
	if slot != "" && meta.EffectiveSlot() != slot {
		return false
	}
	if subslot != "" && meta.Subslot != subslot {
		return false
	}
	if dep.Repo != "" && meta.Repo != dep.Repo {
		return false
	}
	for _, uc := range p.resolveUseDeps(dep) {
		if meta.UseFlags[uc.Flag] != uc.Enabled {
			return false
		}
	}
	return true
}
