package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const defaultSampleRows = 5

// newInspectCmd creates the "inspect" command: full metadata for one entry
// plus a bounded sample of its rows.
func newInspectCmd() *cobra.Command {
	var sampleRows int

	cmd := &cobra.Command{
		Use:   "inspect <fingerprint>",
		Short: "Inspect a single cache entry",
		Long:  "Show the full metadata of one cache entry (query text, creation time, shape, size) and a sample of its rows. Accepts a unique fingerprint prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}

			fp, err := resolveFingerprint(store, args[0])
			if err != nil {
				return err
			}

			tbl, entry, err := store.Load(fp)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderMetadata(out, entry)

			fmt.Fprintln(out)
			if err := renderSchema(out, entry); err != nil {
				return err
			}

			if tbl.NumRows() == 0 {
				return nil
			}
			fmt.Fprintln(out)
			return renderTable(out, tbl, sampleRows)
		},
	}

	cmd.Flags().IntVar(&sampleRows, "rows", defaultSampleRows, "number of sample rows to show")

	return cmd
}
