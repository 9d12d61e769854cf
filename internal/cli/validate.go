package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skein-dev/skein/internal/serialize"
)

// NewValidateCommand creates the validate command: schema-check a
// wire document and optionally attempt a full load.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	var load bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a saved graph document against the wire format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if err := serialize.ValidateDocument(string(body)); err != nil {
				return err
			}
			if load {
				if _, err := serialize.LoadJSON(string(body)); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&load, "load", false, "also reconstruct the graph (requires registered node types)")
	return cmd
}
