package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portage-resolvo/internal/types"
)

func TestMemoryRepositoryAddAndQuery(t *testing.T) {
	repo := NewMemoryRepository()
	meta, err := types.PackageSpec{Cpv: "dev-lang/rust-1.75.0", Slot: "0"}.Compile()
	require.NoError(t, err)
	repo.Add(meta)

	cpns := repo.AllPackages()
	require.Len(t, cpns, 1)
	assert.Equal(t, types.Cpn{Category: "dev-lang", Package: "rust"}, cpns[0])

	versions := repo.VersionsFor(cpns[0])
	require.Len(t, versions, 1)
	assert.Equal(t, "dev-lang/rust-1.75.0", versions[0].Cpv.String())
}

func TestMemoryRepositoryUnknownPackage(t *testing.T) {
	repo := NewMemoryRepository()
	assert.Empty(t, repo.VersionsFor(types.Cpn{Category: "dev-lang", Package: "rust"}))
}

func TestMemoryRepositoryMultipleVersions(t *testing.T) {
	repo := NewMemoryRepository()
	for _, cpv := range []string{"dev-lang/rust-1.75.0", "dev-lang/rust-1.76.0"} {
		meta, err := types.PackageSpec{Cpv: cpv, Slot: "0"}.Compile()
		require.NoError(t, err)
		repo.Add(meta)
	}
	assert.Len(t, repo.VersionsFor(types.Cpn{Category: "dev-lang", Package: "rust"}), 2)
}
