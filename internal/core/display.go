package core

import (
	"fmt"
	"strings"

	"portage-resolvo/internal/types"
)

// DisplaySolvable renders a solved id as "cat/pkg-version:slot" for CLI
// output and diagnostics.
func (p *Provider) DisplaySolvable(solvable types.SolvableId) string {
	meta := p.pool.ResolveSolvable(solvable)
	if meta.Slot != "" {
		return fmt.Sprintf("%s:%s", meta.Cpv, meta.Slot)
	}
	return meta.Cpv.String()
}

// DisplayName renders a name id. When a slotted name has no candidates
// but other slots of the same CPN do, the available slots are appended as
// a hint so a conflict report points at the slot that actually exists.
func (p *Provider) DisplayName(name types.NameId) string {
	pkgName := p.pool.ResolveName(name)
	out := pkgName.String()
	if pkgName.Slot == "" || len(p.candidates[name]) > 0 {
		return out
	}
	var available []string
	for _, nameID := range p.cpnSlots[pkgName.Cpn] {
		if nameID == name || len(p.candidates[nameID]) == 0 {
			continue
		}
		if slot := p.pool.ResolveName(nameID).Slot; slot != "" {
			available = append(available, ":"+slot)
		}
	}
	if len(available) > 0 {
		out += fmt.Sprintf(" (available slots: %s)", strings.Join(available, ", "))
	}
	return out
}

// DisplayVersionSet renders an interned constraint.
func (p *Provider) DisplayVersionSet(versionSet types.VersionSetId) string {
	return p.pool.ResolveVersionSet(versionSet).String()
}

// DisplayString resolves an interned diagnostic string.
func (p *Provider) DisplayString(stringID types.StringId) string {
	return p.pool.ResolveString(stringID)
}
