package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skein-dev/skein/internal/serialize"
	"github.com/skein-dev/skein/internal/structeq"
)

// NewDiffCommand creates the diff command: load two saved graphs and
// report the first structural mismatch.
func NewDiffCommand(opts *RootOptions) *cobra.Command {
	var mapFreeVars, skipTensors bool

	cmd := &cobra.Command{
		Use:   "diff <lhs-file> <rhs-file>",
		Short: "Report the first structural mismatch between two saved graphs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lhsBody, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			rhsBody, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			lhs, err := serialize.LoadJSON(string(lhsBody))
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			rhs, err := serialize.LoadJSON(string(rhsBody))
			if err != nil {
				return fmt.Errorf("load %s: %w", args[1], err)
			}
			mismatch := structeq.FirstMismatch(lhs, rhs, structeq.Options{
				MapFreeVars:        mapFreeVars,
				SkipNDArrayContent: skipTensors,
			})
			if mismatch == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "structurally equal")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lhs: %s\nrhs: %s\n", mismatch.Lhs, mismatch.Rhs)
			return fmt.Errorf("graphs differ")
		},
	}
	cmd.Flags().BoolVar(&mapFreeVars, "map-free-vars", false, "allow renaming of free variables")
	cmd.Flags().BoolVar(&skipTensors, "skip-tensor-content", false, "compare tensors by shape and dtype only")
	return cmd
}
