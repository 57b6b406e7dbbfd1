package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	regionpkg "github.com/sot-platform/discovery-cli/internal/region"
	"github.com/sot-platform/discovery-cli/internal/scheduler"
)

var regionsTenant string

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Show the region queue with rotation state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := initPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		tenant := regionsTenant
		if tenant == "" {
			tenant, err = scheduler.NewPostgresStore(pool).ResolvePlatformTenant(ctx)
			if err != nil {
				return err
			}
		}

		regions, err := regionpkg.NewPostgresStore(pool).List(ctx, tenant)
		if err != nil {
			return eris.Wrap(err, "list regions")
		}
		if len(regions) == 0 {
			fmt.Fprintln(os.Stderr, "Region queue is empty. Run `discovery-cli seed` first.")
			return nil
		}

		formatRegions(os.Stdout, regions, time.Now())
		return nil
	},
}

func init() {
	regionsCmd.Flags().StringVar(&regionsTenant, "tenant", "", "tenant ID (defaults to the platform organization)")
	rootCmd.AddCommand(regionsCmd)
}

// formatRegions writes the region queue as a table.
func formatRegions(out io.Writer, regions []regionpkg.Region, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGION\tPLZ\tPRIORITY\tLAST SCAN\tCOOLDOWN\tNEXT CATEGORY\tCONTACTS\tAPPROVED")

	for _, r := range regions {
		lastScan := "never"
		if r.LastScannedAt != nil {
			lastScan = r.LastScannedAt.Format("2006-01-02 15:04")
		}

		cooldown := "-"
		if r.CoolingDown(now) {
			cooldown = r.CooldownUntil.Sub(now).Round(time.Minute).String()
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%d\t%d\n",
			r.Name, r.PostalPrefix, r.PriorityScore, lastScan, cooldown,
			r.CategoryPointer, r.TotalContacts, r.ApprovedContacts,
		)
	}
	_ = w.Flush()
}
