package ports

import (
	"portage-resolvo/internal/types"
)

// Repository is read-only access to a package database. No ordering or
// uniqueness guarantees are required of implementations; the provider
// sorts and groups by slot itself.
type Repository interface {
	AllPackages() []types.Cpn
	VersionsFor(cpn types.Cpn) []types.PackageMetadata
}
