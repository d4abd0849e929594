package types

import (
	"fmt"
	"strings"
)

// UseConstraint is one resolved USE requirement on a dependency target:
// the named flag must be enabled (or disabled) on the candidate.
type UseConstraint struct {
	Flag    string
	Enabled bool
}

// VersionConstraint is the value a VersionSetId resolves to.
//
// For normal dependencies the constraint is used directly: filtering keeps
// candidates whose version matches (Operator, Version) and whose slot,
// sub-slot, repository, and USE state match the remaining fields.
//
// Blocker dependencies store the blocked operator with Inverted=true. The
// candidate filter flips the match result before the solver's own inverse
// flag is applied, so a constrains entry ends up forbidding exactly the
// candidates that match the blocker. That composition makes =, ~, and =*
// blockers work even though their complements are not single ranges.
type VersionConstraint struct {
	Cpn            Cpn
	Operator       Operator
	Version        Version
	Slot           string
	Subslot        string
	Repo           string
	UseConstraints []UseConstraint
	Inverted       bool
}

// Key returns the canonical dedup key for interning. Two constraints with
// equal fields produce the same key and therefore the same VersionSetId.
func (c VersionConstraint) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%s|%s|%s|%s|%t|",
		c.Cpn, c.Operator, c.Version, c.Slot, c.Subslot, c.Repo, c.Inverted)
	for _, uc := range c.UseConstraints {
		fmt.Fprintf(&b, "%s=%t,", uc.Flag, uc.Enabled)
	}
	return b.String()
}

func (c VersionConstraint) String() string {
	var b strings.Builder
	if c.Inverted {
		b.WriteString("!")
	}
	fmt.Fprintf(&b, "%s%s-%s", c.Operator, c.Cpn, c.Version)
	if c.Slot != "" {
		fmt.Fprintf(&b, ":%s", c.Slot)
		if c.Subslot != "" {
			fmt.Fprintf(&b, "/%s", c.Subslot)
		}
	}
	if len(c.UseConstraints) > 0 {
		b.WriteString("[")
		for i, uc := range c.UseConstraints {
			if i > 0 {
				b.WriteString(",")
			}
			if !uc.Enabled {
				b.WriteString("-")
			}
			b.WriteString(uc.Flag)
		}
		b.WriteString("]")
	}
	if c.Repo != "" {
		fmt.Fprintf(&b, "::%s", c.Repo)
	}
	return b.String()
}
