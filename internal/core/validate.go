package core

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"portage-resolvo/internal/types"
)

// ValidateUseConfig rejects configurations whose flag sets overlap. The
// three states are modelled as disjoint sets; a flag in two of them has
// no single resolution policy.
func ValidateUseConfig(ctx context.Context, cfg types.UseConfig) error {
	for flag := range cfg.Enabled {
		assert.NotEmpty(ctx, flag, "USE flag name must not be empty")
		if cfg.Disabled[flag] {
			return useConfigOverlap(flag, "enabled", "disabled")
		}
		if cfg.SolverDecided[flag] {
			return useConfigOverlap(flag, "enabled", "solver-decided")
		}
	}
	for flag := range cfg.Disabled {
		assert.NotEmpty(ctx, flag, "USE flag name must not be empty")
		if cfg.SolverDecided[flag] {
			return useConfigOverlap(flag, "disabled", "solver-decided")
		}
	}
	for flag := range cfg.SolverDecided {
		assert.NotEmpty(ctx, flag, "USE flag name must not be empty")
	}
	return nil
}

func useConfigOverlap(flag, a, b string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("USE flag %q is both %s and %s", flag, a, b))
}

// ValidateInstalledSet rejects installed sets that name the same package
// slot twice with contradictory locked versions.
func ValidateInstalledSet(ctx context.Context, installed types.InstalledSet) error {
	lockedBySlot := map[string]string{}
	for _, entry := range installed.Packages {
		meta := entry.Metadata
		assert.NotEmpty(ctx, meta.Cpv.Cpn.Category, "installed package category must be set")
		assert.NotEmpty(ctx, meta.Cpv.Cpn.Package, "installed package name must be set")
		if len(meta.Cpv.Version.Numbers) == 0 {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("installed package %s has no version", meta.Cpv.Cpn))
		}
		if entry.Policy != types.Locked {
			continue
		}
		key := fmt.Sprintf("%s:%s", meta.Cpv.Cpn, meta.EffectiveSlot())
		cpv := meta.Cpv.String()
		if prev, ok := lockedBySlot[key]; ok && prev != cpv {
			return errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("conflicting locked versions for %s: %s and %s", key, prev, cpv))
		}
		lockedBySlot[key] = cpv
	}
	return nil
}
