package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// newSchemaCmd creates the "schema" command: column names and types per
// entry, read from the entry file's schema message without materializing
// rows.
func newSchemaCmd() *cobra.Command {
	var sample int

	cmd := &cobra.Command{
		Use:   "schema [fingerprint]",
		Short: "Show column schemas of cache entries",
		Long:  "Show column names and types for one entry, or for all entries when no fingerprint is given. Row data is not loaded.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				fp, err := resolveFingerprint(store, args[0])
				if err != nil {
					return err
				}
				entry, err := store.Stat(fp)
				if err != nil {
					return err
				}
				return renderSchema(cmd.OutOrStdout(), entry)
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
			if sample > 0 && sample < len(entries) {
				entries = entries[:sample]
			}

			for i, entry := range entries {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := renderSchema(cmd.OutOrStdout(), entry); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&sample, "sample", 0, "show only the N newest entries (0 = all)")

	return cmd
}
