package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portage-resolvo/internal/types"
)

func cpn(category, pkg string) types.Cpn {
	return types.Cpn{Category: category, Package: pkg}
}

func TestInternNameRoundtrip(t *testing.T) {
	pool := NewPool()
	name := PackageName{Cpn: cpn("dev-lang", "rust")}
	id := pool.InternName(name)
	assert.Equal(t, name, pool.ResolveName(id))
}

func TestInternNameDedup(t *testing.T) {
	pool := NewPool()
	name := PackageName{Cpn: cpn("dev-lang", "rust")}
	assert.Equal(t, pool.InternName(name), pool.InternName(name))
}

func TestInternNameDifferentSlots(t *testing.T) {
	pool := NewPool()
	a := pool.InternName(PackageName{Cpn: cpn("dev-lang", "python"), Slot: "3.11"})
	b := pool.InternName(PackageName{Cpn: cpn("dev-lang", "python"), Slot: "3.12"})
	assert.NotEqual(t, a, b)
}

func TestInternSolvableRoundtrip(t *testing.T) {
	pool := NewPool()
	nameID := pool.InternName(PackageName{Cpn: cpn("dev-lang", "rust")})
	cpv, err := types.ParseCpv("dev-lang/rust-1.75.0")
	require.NoError(t, err)
	sid := pool.InternSolvable(nameID, types.PackageMetadata{Cpv: cpv, Slot: "0"})
	assert.Equal(t, nameID, pool.SolvableName(sid))
	assert.Equal(t, cpv, pool.ResolveSolvable(sid).Cpv)
}

func TestInternVersionSetDedup(t *testing.T) {
	pool := NewPool()
	nameID := pool.InternName(PackageName{Cpn: cpn("dev-lang", "rust")})
	constraint := types.VersionConstraint{
		Cpn:      cpn("dev-lang", "rust"),
		Operator: types.OpGreaterEqual,
		Version:  types.Version{Numbers: []string{"1", "75", "0"}},
	}
	id1 := pool.InternVersionSet(nameID, constraint)
	id2 := pool.InternVersionSet(nameID, constraint)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, pool.VersionSetCount())
}

func TestInternVersionSetDistinguishesFields(t *testing.T) {
	pool := NewPool()
	nameID := pool.InternName(PackageName{Cpn: cpn("dev-lang", "rust")})
	base := types.VersionConstraint{
		Cpn:      cpn("dev-lang", "rust"),
		Operator: types.OpGreaterEqual,
		Version:  types.Version{Numbers: []string{"1"}},
	}
	baseID := pool.InternVersionSet(nameID, base)

	inverted := base
	inverted.Inverted = true
	assert.NotEqual(t, baseID, pool.InternVersionSet(nameID, inverted))

	withUse := base
	withUse.UseConstraints = []types.UseConstraint{{Flag: "ssl", Enabled: true}}
	assert.NotEqual(t, baseID, pool.InternVersionSet(nameID, withUse))

	slotted := base
	slotted.Slot = "0"
	assert.NotEqual(t, baseID, pool.InternVersionSet(nameID, slotted))
}

func TestInternVersionSetUnionOrderPreserved(t *testing.T) {
	pool := NewPool()
	nameID := pool.InternName(PackageName{Cpn: cpn("dev-lib", "bar")})
	a := pool.InternVersionSet(nameID, types.VersionConstraint{
		Cpn:      cpn("dev-lib", "bar"),
		Operator: types.OpGreaterEqual,
		Version:  types.Version{Numbers: []string{"1"}},
	})
	b := pool.InternVersionSet(nameID, types.VersionConstraint{
		Cpn:      cpn("dev-lib", "bar"),
		Operator: types.OpGreaterEqual,
		Version:  types.Version{Numbers: []string{"2"}},
	})
	unionID := pool.InternVersionSetUnion([]types.VersionSetId{b, a})
	assert.Equal(t, []types.VersionSetId{b, a}, pool.ResolveVersionSetUnion(unionID))
}

func TestInternConditionRoundtrip(t *testing.T) {
	pool := NewPool()
	nameID := pool.InternName(PackageName{Cpn: cpn("virtual", "USE_ssl")})
	vsID := pool.InternVersionSet(nameID, types.VersionConstraint{
		Cpn:      cpn("virtual", "USE_ssl"),
		Operator: types.OpGreaterEqual,
		Version:  types.Version{Numbers: []string{"0"}},
	})
	condID := pool.InternCondition(types.Condition{Kind: types.ConditionRequirement, VersionSet: vsID})
	assert.Equal(t, vsID, pool.ResolveCondition(condID).VersionSet)
}

func TestInternStringRoundtrip(t *testing.T) {
	pool := NewPool()
	id := pool.InternString("hello")
	assert.Equal(t, "hello", pool.ResolveString(id))
}
