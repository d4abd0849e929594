package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"portage-resolvo/internal/adapters"
	"portage-resolvo/internal/core"
	"portage-resolvo/internal/solve"
	"portage-resolvo/internal/types"
)

// newConflictsCommand demonstrates two classic unsolvable situations on a
// built-in repository: mutually blocking TLS providers pulled in by two
// roots, and a locked installed version that contradicts an upgrade
// requirement.
func newConflictsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Run built-in conflict demos and show the solver's reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			runBlockerDemo(cmd.Context(), out)
			runLockedDemo(cmd.Context(), out)
			return nil
		},
	}
}

// mustPackage builds metadata from constant demo inputs.
func mustPackage(cpv, slot, deps string) types.PackageMetadata {
	meta, err := types.PackageSpec{Cpv: cpv, Slot: slot, Depend: deps}.Compile()
	if err != nil {
		panic(err)
	}
	return meta
}

func runBlockerDemo(ctx context.Context, out io.Writer) {
	fmt.Fprintln(out, "demo 1: openssl and libressl strong-block each other")

	repo := adapters.NewMemoryRepository()
	repo.Add(mustPackage("dev-libs/openssl-3.2.1", "0", "!!dev-libs/libressl"))
	repo.Add(mustPackage("dev-libs/libressl-3.9.2", "0", "!!dev-libs/openssl"))
	repo.Add(mustPackage("net-misc/curl-8.7.1", "0", "dev-libs/openssl"))
	repo.Add(mustPackage("mail-client/neomutt-20240425", "0", "dev-libs/libressl"))

	provider, err := core.NewProvider(ctx, repo, types.UseConfig{})
	if err != nil {
		fmt.Fprintf(out, "  provider: %v\n", err)
		return
	}
	solveDemo(ctx, out, provider, "net-misc/curl", "mail-client/neomutt")
}

func runLockedDemo(ctx context.Context, out io.Writer) {
	fmt.Fprintln(out, "demo 2: locked installed version vs upgrade requirement")

	repo := adapters.NewMemoryRepository()
	repo.Add(mustPackage("dev-lang/rust-1.75.0", "0", ""))
	repo.Add(mustPackage("dev-lang/rust-1.76.0", "0", ""))

	var installed types.InstalledSet
	installed.AddLocked(mustPackage("dev-lang/rust-1.75.0", "0", ""))

	provider, err := core.NewProviderWithInstalled(ctx, repo, types.UseConfig{}, installed)
	if err != nil {
		fmt.Fprintf(out, "  provider: %v\n", err)
		return
	}
	solveDemo(ctx, out, provider, ">=dev-lang/rust-1.76.0")
}

func solveDemo(ctx context.Context, out io.Writer, provider *core.Provider, roots ...string) {
	var requirements []types.ConditionalRequirement
	for _, raw := range roots {
		dep, err := types.ParseDep(raw)
		if err != nil {
			fmt.Fprintf(out, "  bad atom %q: %v\n", raw, err)
			return
		}
		requirements = append(requirements, provider.InternRequirement(dep))
		fmt.Fprintf(out, "  root: %s\n", raw)
	}

	problem := solve.NewProblem().Requirements(requirements)
	solution, err := solve.NewSolver(provider).Solve(ctx, problem)
	if err != nil {
		fmt.Fprintf(out, "  unsolvable: %v\n", err)
		return
	}
	fmt.Fprintln(out, "  solution:")
	for _, sid := range solution {
		fmt.Fprintf(out, "    %s\n", provider.DisplaySolvable(sid))
	}
}
