package ports

import (
	"portage-resolvo/internal/types"
)

type SpecPort interface {
	LoadSpec(path string) (types.Spec, error)
}
