package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlstash/sqlstash/internal/cache"
)

// newClearCmd creates the "clear" command. With --older-than it deletes by
// age threshold; without, it deletes everything after an explicit
// confirmation (or --yes for non-interactive use).
func newClearCmd() *cobra.Command {
	var (
		olderThan string
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cache entries",
		Long:  "Delete cache entries older than a threshold, or all entries. Clearing everything prompts for confirmation unless --yes is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}

			if olderThan != "" {
				threshold, err := cache.ParseMaxAge(olderThan)
				if err != nil {
					return err
				}
				removed, err := store.DeleteOlderThan(threshold)
				if err != nil {
					return err
				}
				logger.Info().Int("removed", removed).Msg("cleared cache entries by age")
				cmd.Printf("removed %d cache entries older than %s\n", removed, cache.FormatDuration(threshold))
				return nil
			}

			entries, err := store.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("no cache entries")
				return nil
			}

			if !yes {
				if !isTerminal(os.Stdin) {
					return errors.New("refusing to delete all entries without confirmation; pass --yes for non-interactive use")
				}
				result := confirmClearAll(cmd.OutOrStdout(), cmd.InOrStdin(), len(entries), store.Directory())
				if result.Cancelled {
					return errors.New("confirmation aborted")
				}
				if !result.Accepted {
					cmd.Println("operation cancelled, nothing deleted")
					return nil
				}
			}

			removed, err := store.ClearAll()
			if err != nil {
				return err
			}
			logger.Info().Int("removed", removed).Msg("cleared all cache entries")
			cmd.Printf("removed %d cache entries\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&olderThan, "older-than", "", "only delete entries older than this age (e.g. 48h, 2d)")
	cmd.Flags().BoolVar(&yes, "yes", false, "delete everything without prompting")

	return cmd
}
