package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"studio/internal/application/orchestrators"
)

// ProgressCmd groups the progress metric commands.
func ProgressCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Manage progress metric definitions",
	}
	cmd.PersistentFlags().String("tenant", "", "Tenant ID")
	cmd.AddCommand(progressSeedCmd(env))
	return cmd
}

func progressSeedCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install the default metric catalog for a studio type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := tenantFlag(cmd)
			if err != nil {
				return err
			}
			studioType, _ := cmd.Flags().GetString("studio-type")
			s, err := env.stores()
			if err != nil {
				return err
			}
			res, err := orchestrators.ExecuteSeedDefaultMetrics(cmd.Context(), orchestrators.SeedDefaultMetricsInput{
				TenantID:   tenant,
				StudioType: studioType,
			}, orchestrators.SeedDefaultMetricsDeps{
				MetricStore: s.metrics,
				GenerateID:  env.newID,
				Now:         env.now,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d metrics, skipped %d existing\n", res.Seeded, res.Skipped)
			return nil
		},
	}
	cmd.Flags().String("studio-type", "hybrid", "Catalog to install: yoga, gym or hybrid")
	return cmd
}
