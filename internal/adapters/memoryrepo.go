package adapters

import (
	"portage-resolvo/internal/types"
)

// MemoryRepository is an in-memory ports.Repository backed by a map,
// used by tests, by the resolve service to hold a loaded spec's packages,
// and by the conflict demos.
type MemoryRepository struct {
	packages map[types.Cpn][]types.PackageMetadata
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{packages: map[types.Cpn][]types.PackageMetadata{}}
}

// Add registers one package version.
func (r *MemoryRepository) Add(meta types.PackageMetadata) {
	cpn := meta.Cpv.Cpn
	r.packages[cpn] = append(r.packages[cpn], meta)
}

func (r *MemoryRepository) AllPackages() []types.Cpn {
	cpns := make([]types.Cpn, 0, len(r.packages))
	for cpn := range r.packages {
		cpns = append(cpns, cpn)
	}
	return cpns
}

func (r *MemoryRepository) VersionsFor(cpn types.Cpn) []types.PackageMetadata {
	return r.packages[cpn]
}
