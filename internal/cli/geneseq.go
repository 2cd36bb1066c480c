package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"orchard/internal/core"
	"orchard/pkg/genome"
)

var geneseqUsage = fmt.Sprintf("Usage: geneseq <individual>, where <individual> is 0-%d", genome.FamilySize-1)

func newGeneseqCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "geneseq <individual>",
		Short: "Print an individual's haploids and their expression",
		Long: `Print the maternal and paternal haploid of one family member and the
trait set they express. The record is never repaired; an invalid record is
reported instead.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			index, ok := parseIndividual(args)
			if !ok {
				return usageFailure(out, geneseqUsage)
			}
			return a.withFamilyStore(cmd, func(ctx context.Context, fs *core.FamilyStore) error {
				family, err := fs.Get(ctx)
				if err != nil {
					return reportLoadFailure(out, err)
				}
				ind, err := family.Individual(index)
				if err != nil {
					return usageFailure(out, geneseqUsage)
				}
				return printIndividual(out, family, ind)
			})
		},
	}
}

// parseIndividual accepts exactly one unsigned index in decimal, 0x hex or
// 0 octal notation below FamilySize.
func parseIndividual(args []string) (int, bool) {
	if len(args) != 1 {
		return 0, false
	}
	n, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil || genome.CheckIndex(int(n)) != nil {
		return 0, false
	}
	return int(n), true
}

func usageFailure(w io.Writer, usage string) error {
	if _, err := fmt.Fprintln(w, usage); err != nil {
		return err
	}
	return &ExitError{Code: ExitUsage}
}

// reportLoadFailure prints the shell message for an invalid record. Other
// failures are returned for the caller to surface.
func reportLoadFailure(w io.Writer, err error) error {
	var verr *genome.ValidationError
	if !errors.As(err, &verr) {
		return &ExitError{Code: ExitFailure, Message: "read genome", Err: err}
	}
	msg := "Invalid genome signature"
	if verr.Reason == genome.ReasonVersion {
		msg = "Invalid genome version"
	}
	if _, werr := fmt.Fprintln(w, msg); werr != nil {
		return werr
	}
	return &ExitError{Code: ExitFailure}
}

func printIndividual(w io.Writer, family genome.Family, ind genome.Individual) error {
	sections := []struct {
		title string
		label string
		h     genome.Haploid
	}{
		{"--Maternal Haploid--", ind.Maternal.Name.String(), ind.Maternal},
		{"--Paternal Haploid--", ind.Paternal.Name.String(), ind.Paternal},
		{"--Diploid expression--", family.Name.String(), ind.Expressed},
	}
	for _, s := range sections {
		if _, err := fmt.Fprintln(w, s.title); err != nil {
			return err
		}
		if err := printHaploid(w, s.label, s.h); err != nil {
			return err
		}
	}
	return nil
}
