package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSpec = `
packages:
  - cpv: app-misc/foo-1.0
    slot: "0"
    depend: ">=dev-lib/bar-2.0 ssl? ( dev-lib/openssl )"
  - cpv: dev-lib/bar-3.0
    slot: "0"
use:
  enabled: [ssl]
installed:
  - cpv: dev-lib/bar-3.0
    slot: "0"
    policy: favored
roots:
  - app-misc/foo
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "packages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSpec(t *testing.T) {
	adapter := NewSpecFileAdapter()
	spec, err := adapter.LoadSpec(writeSpec(t, sampleSpec))
	require.NoError(t, err)
	assert.Len(t, spec.Packages, 2)
	assert.Equal(t, []string{"ssl"}, spec.Use.Enabled)
	assert.Len(t, spec.Installed, 1)
	assert.Equal(t, []string{"app-misc/foo"}, spec.Roots)

	meta, err := spec.Packages[0].Compile()
	require.NoError(t, err)
	assert.Len(t, meta.Dependencies.Depend, 2)
}

func TestLoadSpecMissingFile(t *testing.T) {
	adapter := NewSpecFileAdapter()
	_, err := adapter.LoadSpec(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestLoadSpecInvalidYaml(t *testing.T) {
	adapter := NewSpecFileAdapter()
	_, err := adapter.LoadSpec(writeSpec(t, "packages: [\n"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
