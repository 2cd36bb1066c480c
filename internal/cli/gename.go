package cli

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"orchard/pkg/genome"
)

func newGenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gename",
		Short: "Print a freshly generated name",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src := a.randomSource()
			if src == nil {
				seed := uint64(time.Now().UnixNano())
				src = rand.New(rand.NewPCG(seed, seed))
			}
			name, err := genome.DrawName(src)
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: "generate name", Err: err}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
			return err
		},
	}
}
