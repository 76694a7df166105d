package cli

import (
	"sort"

	"github.com/spf13/cobra"
)

// newListCmd creates the "list" command: one line per cache entry with
// fingerprint, query preview, row count, size, and age, newest first.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cache entries",
		Long:  "List all cache entries with their fingerprint, query text, row count, size, and age.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}

			entries, err := store.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("no cache entries")
				return nil
			}

			sort.Slice(entries, func(i, j int) bool {
				return entries[i].CreatedAt.After(entries[j].CreatedAt)
			})
			return renderEntries(cmd.OutOrStdout(), entries)
		},
	}
}
