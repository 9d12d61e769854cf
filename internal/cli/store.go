package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skein-dev/skein/internal/store"
)

// NewStoreCommand creates the store command group: put, get and list
// over the content-addressed artifact store.
func NewStoreCommand(opts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the content-addressed artifact store",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "skein.db", "path to the artifact database")

	put := &cobra.Command{
		Use:   "put <file>",
		Short: "Store a saved graph document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			a, err := s.Put(cmd.Context(), string(body))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", a.ContentHash, a.ID)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <content-hash>",
		Short: "Print a stored graph document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			body, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored artifacts in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			artifacts, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, a := range artifacts {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s  %s  v%s\n", a.CreatedSeq, a.ContentHash, a.ID, a.Version)
			}
			return nil
		},
	}

	cmd.AddCommand(put, get, list)
	return cmd
}
