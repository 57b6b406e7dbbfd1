package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sot-platform/discovery-cli/internal/scheduler"
)

var runTenant string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one discovery sweep",
	Long:  "Runs the scheduler once: picks eligible regions by priority, searches one category per region, and imports high-confidence contacts until the daily credit budget is reached.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		pool, err := initPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := scheduler.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		summary, err := initScheduler(pool).Run(ctx, runTenant)
		if err != nil {
			return eris.Wrap(err, "discovery run")
		}

		zap.L().Info("discovery run complete",
			zap.String("status", summary.Status),
			zap.Int("batches", summary.BatchesProcessed),
			zap.Int("approved", summary.TotalApproved),
			zap.Int("credits_used", summary.CreditsUsed),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	runCmd.Flags().StringVar(&runTenant, "tenant", "", "tenant ID (defaults to the platform organization)")
	rootCmd.AddCommand(runCmd)
}
