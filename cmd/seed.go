package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sot-platform/discovery-cli/internal/region"
	"github.com/sot-platform/discovery-cli/internal/scheduler"
)

var seedTenant string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the region queue from the built-in city list",
	Long:  "Idempotently upserts the 25 largest German cities into the tenant's region queue. Rotation state on existing rows is preserved.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := initPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := scheduler.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		tenant := seedTenant
		if tenant == "" {
			tenant, err = scheduler.NewPostgresStore(pool).ResolvePlatformTenant(ctx)
			if err != nil {
				return err
			}
		}

		n, err := region.NewPostgresStore(pool).SeedDefaults(ctx, tenant)
		if err != nil {
			return err
		}

		fmt.Printf("Seeded %d regions for tenant %s\n", n, tenant)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedTenant, "tenant", "", "tenant ID (defaults to the platform organization)")
	rootCmd.AddCommand(seedCmd)
}
