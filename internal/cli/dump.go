package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zzeleznick/saaskit/internal/kv"
)

// NewDumpCommand creates the dump command: walk the whole keyspace in key
// order and print every entry verbatim.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Dump the raw keyspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			cursor := ""
			for {
				entries, next, err := store.List(cmd.Context(), "", kv.Page{Cursor: cursor})
				if err != nil {
					return err
				}
				for _, entry := range entries {
					fmt.Fprintf(out, "%s\tv%d\t%s\n", entry.Key, entry.Version, entry.Value)
				}
				if next == "" {
					return nil
				}
				cursor = next
			}
		},
	}
}
