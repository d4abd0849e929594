package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"portage-resolvo/internal/app"
)

type resolveOptions struct {
	Spec      string
	WithOrder bool
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve [root atoms...]",
		Short: "Resolve root atoms against a package spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			service := app.NewService()
			result, err := service.Resolve(cmd.Context(), app.ResolveRequest{
				SpecPath:  opts.Spec,
				Roots:     args,
				WithOrder: opts.WithOrder,
			})
			if err != nil {
				return err
			}
			printResolveResult(cmd, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Spec, "spec", "", "Package spec file (repository, USE config, installed set, roots)")
	cmd.Flags().BoolVar(&opts.WithOrder, "order", false, "Also print the installation order")
	return cmd
}

func printResolveResult(cmd *cobra.Command, result app.ResolveResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "solution:")
	for _, pkg := range result.Packages {
		line := "  " + pkg.Cpv
		if pkg.Slot != "" {
			line += ":" + pkg.Slot
			if pkg.Subslot != "" {
				line += "/" + pkg.Subslot
			}
		}
		if pkg.Repo != "" {
			line += "::" + pkg.Repo
		}
		if pkg.Virtual {
			line += " (virtual)"
		}
		fmt.Fprintln(out, line)
	}
	if len(result.InstallOrder) > 0 {
		fmt.Fprintln(out, "install order:")
		for i, cpv := range result.InstallOrder {
			fmt.Fprintf(out, "  %d. %s\n", i+1, cpv)
		}
	}
	if len(result.Cycle) > 0 {
		fmt.Fprintln(out, "unorderable cycle:")
		for _, cpv := range result.Cycle {
			fmt.Fprintln(out, "  "+cpv)
		}
	}
}
