package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"orchard/internal/core"
	"orchard/pkg/genome"
)

func newGenestartCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "genestart",
		Short: "Load the family, regenerating it when missing or invalid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withFamilyStore(cmd, func(ctx context.Context, fs *core.FamilyStore) error {
				family, regenerated, err := fs.EnsureValid(ctx)
				if err != nil {
					return &ExitError{Code: ExitFailure, Message: "genestart", Err: err}
				}
				state := "loaded"
				if regenerated {
					state = "regenerated"
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Family %s %s\n", family.Name, state)
				return err
			})
		},
	}
}

func newRegenerateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate",
		Short: "Replace the stored family with a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withFamilyStore(cmd, func(ctx context.Context, fs *core.FamilyStore) error {
				family, err := fs.Regenerate(ctx)
				if err != nil {
					return &ExitError{Code: ExitFailure, Message: "regenerate", Err: err}
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Family %s regenerated\n", family.Name)
				return err
			})
		},
	}
}

func newFamilyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "family",
		Short: "List the family name and every individual's haploid names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			return a.withFamilyStore(cmd, func(ctx context.Context, fs *core.FamilyStore) error {
				family, err := fs.Get(ctx)
				if err != nil {
					return reportLoadFailure(out, err)
				}
				if _, err := fmt.Fprintf(out, "Family %s\n", family.Name); err != nil {
					return err
				}
				for i := range genome.FamilySize {
					if _, err := fmt.Fprintf(out, "%2d %-19s %s\n", i, family.Maternal[i].Name, family.Paternal[i].Name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
