package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portage-resolvo/internal/types"
)

func TestValidateUseConfigDisjoint(t *testing.T) {
	use := types.NewUseConfig([]string{"ssl"}, []string{"debug"}, []string{"xml"})
	assert.NoError(t, ValidateUseConfig(t.Context(), use))
}

func TestValidateUseConfigOverlaps(t *testing.T) {
	cases := []types.UseConfig{
		types.NewUseConfig([]string{"ssl"}, []string{"ssl"}, nil),
		types.NewUseConfig([]string{"ssl"}, nil, []string{"ssl"}),
		types.NewUseConfig(nil, []string{"ssl"}, []string{"ssl"}),
	}
	for _, use := range cases {
		err := ValidateUseConfig(t.Context(), use)
		require.Error(t, err)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	}
}

func TestValidateInstalledSetAcceptsDistinctSlots(t *testing.T) {
	var installed types.InstalledSet
	installed.AddLocked(pkg(t, "dev-lang/python-3.11.9", "3.11", ""))
	installed.AddLocked(pkg(t, "dev-lang/python-3.12.4", "3.12", ""))
	assert.NoError(t, ValidateInstalledSet(t.Context(), installed))
}

func TestValidateInstalledSetRejectsConflictingLocks(t *testing.T) {
	var installed types.InstalledSet
	installed.AddLocked(pkg(t, "dev-lang/rust-1.75.0", "0", ""))
	installed.AddLocked(pkg(t, "dev-lang/rust-1.76.0", "0", ""))
	err := ValidateInstalledSet(t.Context(), installed)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestValidateInstalledSetAllowsDuplicateFavored(t *testing.T) {
	var installed types.InstalledSet
	installed.AddFavored(pkg(t, "dev-lang/rust-1.75.0", "0", ""))
	installed.AddFavored(pkg(t, "dev-lang/rust-1.76.0", "0", ""))
	assert.NoError(t, ValidateInstalledSet(t.Context(), installed))
}
