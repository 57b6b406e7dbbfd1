package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sot-platform/discovery-cli/internal/scheduler"
)

var (
	runsTenant string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent discovery batches from the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := initPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := scheduler.NewPostgresStore(pool)

		tenant := runsTenant
		if tenant == "" {
			tenant, err = store.ResolvePlatformTenant(ctx)
			if err != nil {
				return err
			}
		}

		entries, err := store.RecentRunLogs(ctx, tenant, runsLimit)
		if err != nil {
			return eris.Wrap(err, "list run logs")
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No discovery runs recorded.")
			return nil
		}

		formatRunLogs(os.Stdout, entries)
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsTenant, "tenant", "", "tenant ID (defaults to the platform organization)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 50, "max number of batches to display")
	rootCmd.AddCommand(runsCmd)
}

// formatRunLogs writes batch audit rows as a table.
func formatRunLogs(out io.Writer, entries []scheduler.RunLogEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tREGION\tCATEGORY\tRAW\tDUPES\tAPPROVED\tCREDITS\tEUR\tERROR")

	for _, e := range entries {
		errMsg := e.ErrorMessage
		if len(errMsg) > 40 {
			errMsg = errMsg[:37] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.2f\t%s\n",
			e.RunDate, e.RegionName, e.CategoryCode,
			e.RawFound, e.Duplicates, e.Approved,
			e.CreditsUsed, e.CostEUR, errMsg,
		)
	}
	_ = w.Flush()
}
