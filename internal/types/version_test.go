package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(t *testing.T, s string) Version {
	t.Helper()
	version, err := ParseVersion(s)
	require.NoError(t, err)
	return version
}

// ---------------------------------------------------------------------------
// ParseVersion
// ---------------------------------------------------------------------------

func TestParseVersionPlain(t *testing.T) {
	version := v(t, "1.2.3")
	assert.Equal(t, []string{"1", "2", "3"}, version.Numbers)
	assert.Zero(t, version.Letter)
	assert.Empty(t, version.Suffixes)
	assert.Zero(t, version.Revision)
}

func TestParseVersionLetterAndRevision(t *testing.T) {
	version := v(t, "1.0.8b-r4")
	assert.Equal(t, []string{"1", "0", "8"}, version.Numbers)
	assert.Equal(t, byte('b'), version.Letter)
	assert.Equal(t, 4, version.Revision)
}

func TestParseVersionSuffixes(t *testing.T) {
	version := v(t, "2.0_alpha1_rc2")
	require.Len(t, version.Suffixes, 2)
	assert.Equal(t, Suffix{Kind: SuffixAlpha, Num: 1}, version.Suffixes[0])
	assert.Equal(t, Suffix{Kind: SuffixRC, Num: 2}, version.Suffixes[1])
}

func TestParseVersionGlob(t *testing.T) {
	version := v(t, "1.75*")
	assert.True(t, version.Glob)
	assert.Equal(t, []string{"1", "75"}, version.Numbers)

	dotted := v(t, "1.*")
	assert.True(t, dotted.Glob)
	assert.Equal(t, []string{"1"}, dotted.Numbers)
}

func TestParseVersionInvalid(t *testing.T) {
	for _, raw := range []string{"", "abc", "1..2", ".", "1.2.x"} {
		_, err := ParseVersion(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestVersionStringRoundtrip(t *testing.T) {
	for _, raw := range []string{"1.2.3", "1.0.8b-r4", "2.0_alpha1", "3.12.4", "1.2.3_p1-r2"} {
		assert.Equal(t, raw, v(t, raw).String())
	}
}

// ---------------------------------------------------------------------------
// Compare / CompareFull
// ---------------------------------------------------------------------------

func TestCompareNumeric(t *testing.T) {
	assert.Negative(t, v(t, "1.2.3").CompareFull(v(t, "1.2.4")))
	assert.Positive(t, v(t, "1.10").CompareFull(v(t, "1.9")))
	assert.Zero(t, v(t, "1.2.3").CompareFull(v(t, "1.2.3")))
}

func TestCompareMissingComponentsAreZero(t *testing.T) {
	assert.Zero(t, v(t, "1.2").CompareFull(v(t, "1.2.0")))
	assert.Negative(t, v(t, "1.2").CompareFull(v(t, "1.2.1")))
}

func TestCompareLeadingZeroUsesStringOrder(t *testing.T) {
	// "1.01" vs "1.1": the leading zero forces string comparison on the
	// component.
	assert.Negative(t, v(t, "1.01").CompareFull(v(t, "1.1")))
}

func TestCompareLetter(t *testing.T) {
	assert.Negative(t, v(t, "1.2.3a").CompareFull(v(t, "1.2.3b")))
	assert.Negative(t, v(t, "1.2.3").CompareFull(v(t, "1.2.3a")))
}

func TestCompareSuffixOrdering(t *testing.T) {
	ordered := []string{"1.0_alpha1", "1.0_beta1", "1.0_pre1", "1.0_rc1", "1.0", "1.0_p1"}
	for i := 0; i < len(ordered)-1; i++ {
		assert.Negative(t, v(t, ordered[i]).CompareFull(v(t, ordered[i+1])),
			"%s should sort before %s", ordered[i], ordered[i+1])
	}
}

func TestCompareRevision(t *testing.T) {
	assert.Negative(t, v(t, "1.2.3").CompareFull(v(t, "1.2.3-r1")))
	assert.Zero(t, v(t, "1.2.3").Compare(v(t, "1.2.3-r1")), "Compare ignores revision")
}

func TestBaseDropsRevision(t *testing.T) {
	assert.Zero(t, v(t, "1.2.3-r5").Base().CompareFull(v(t, "1.2.3")))
}
