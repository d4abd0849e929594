package app

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portage-resolvo/internal/adapters"
	"portage-resolvo/internal/core"
	"portage-resolvo/internal/solve"
	"portage-resolvo/internal/types"
)

// Resolve loads a scenario spec, builds the dependency provider, runs the
// solver, and reports the solution with an optional installation order.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	specPath := strings.TrimSpace(req.SpecPath)
	if specPath == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("spec path is required (provide --spec)")
	}

	spec, err := s.SpecLoader.LoadSpec(specPath)
	if err != nil {
		return ResolveResult{}, err
	}

	repo := adapters.NewMemoryRepository()
	for _, pkg := range spec.Packages {
		meta, err := pkg.Compile()
		if err != nil {
			return ResolveResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid package entry").
				WithCause(err)
		}
		repo.Add(meta)
	}

	installed, err := spec.CompileInstalled()
	if err != nil {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid installed entry").
			WithCause(err)
	}

	rootAtoms := spec.Roots
	if len(req.Roots) > 0 {
		rootAtoms = req.Roots
	}
	if len(rootAtoms) == 0 {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no root atoms to resolve (add roots to the spec or pass them as arguments)")
	}
	roots := make([]types.Dep, 0, len(rootAtoms))
	for _, raw := range rootAtoms {
		dep, err := types.ParseDep(raw)
		if err != nil {
			return ResolveResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid root atom").
				WithCause(err)
		}
		roots = append(roots, dep)
	}

	provider, err := core.NewProviderWithInstalled(ctx, repo, spec.Use.CompileUse(), installed)
	if err != nil {
		return ResolveResult{}, err
	}

	requirements := make([]types.ConditionalRequirement, 0, len(roots))
	for _, root := range roots {
		requirements = append(requirements, provider.InternRequirement(root))
	}
	problem := solve.NewProblem().Requirements(requirements)

	log.Debug().Int("roots", len(roots)).Str("spec", specPath).Msg("starting solve")
	solution, err := solve.NewSolver(provider).Solve(ctx, problem)
	if err != nil {
		return ResolveResult{}, err
	}

	result := ResolveResult{}
	for _, sid := range solution {
		meta := provider.PackageMetadata(sid)
		result.Packages = append(result.Packages, ResolvedPackage{
			Cpv:     meta.Cpv.String(),
			Slot:    meta.Slot,
			Subslot: meta.Subslot,
			Repo:    meta.Repo,
			Virtual: meta.Cpv.Cpn.Category == "virtual",
		})
	}
	sort.Slice(result.Packages, func(i, j int) bool {
		return result.Packages[i].Cpv < result.Packages[j].Cpv
	})

	if req.WithOrder {
		order, err := provider.InstallOrder(solution)
		if err != nil {
			var cycle *core.CycleError
			if !errors.As(err, &cycle) {
				return ResolveResult{}, err
			}
			for _, sid := range cycle.Members {
				result.Cycle = append(result.Cycle, provider.DisplaySolvable(sid))
			}
		}
		for _, sid := range order {
			meta := provider.PackageMetadata(sid)
			if meta.Cpv.Cpn.Category == "virtual" {
				continue
			}
			result.InstallOrder = append(result.InstallOrder, meta.Cpv.String())
		}
	}
	return result, nil
}
