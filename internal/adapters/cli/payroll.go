package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
	domainPayroll "studio/internal/domain/payroll"
)

// PayrollCmd groups the payroll commands.
func PayrollCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Compute, commit, approve and export instructor payouts",
	}
	cmd.PersistentFlags().String("tenant", "", "Tenant ID")
	cmd.AddCommand(
		payrollPreviewCmd(env),
		payrollCommitCmd(env),
		payrollApproveCmd(env),
		payrollExportCmd(env),
		payrollProfitabilityCmd(env),
	)
	return cmd
}

func payoutDataDeps(env Env, s stores) projections.GeneratePayoutDataDeps {
	return projections.GeneratePayoutDataDeps{
		ConfigStore:      s.configs,
		ClassStore:       s.classes,
		AppointmentStore: s.appointments,
		BookingStore:     s.bookings,
		MemberStore:      s.members,
		Fees:             env.Fees,
	}
}

func payrollPreviewCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show what every configured instructor is owed for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := tenantFlag(cmd)
			if err != nil {
				return err
			}
			period, err := periodFromFlags(cmd)
			if err != nil {
				return err
			}
			s, err := env.stores()
			if err != nil {
				return err
			}
			preview, err := projections.QueryGeneratePayoutData(cmd.Context(), projections.GeneratePayoutDataQuery{
				TenantID: tenant,
				Start:    period.Start,
				End:      period.End,
			}, payoutDataDeps(env, s))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INSTRUCTOR\tITEMS\tAMOUNT")
			for _, r := range preview.Results {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", r.InstructorName, r.ItemCount, domainPayroll.FormatCents(r.Amount))
			}
			fmt.Fprintf(tw, "TOTAL\t\t%s\n", domainPayroll.FormatCents(preview.Total()))
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", preview.Token)
			return nil
		},
	}
	periodFlags(cmd)
	return cmd
}

func payrollCommitCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit a period's payouts as one run",
		Long:  "Recomputes the period and commits it. Pass the token printed by preview to refuse the commit if the numbers changed since.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := tenantFlag(cmd)
			if err != nil {
				return err
			}
			period, err := periodFromFlags(cmd)
			if err != nil {
				return err
			}
			token, _ := cmd.Flags().GetString("token")
			s, err := env.stores()
			if err != nil {
				return err
			}
			result, err := orchestrators.ExecuteCommitPayouts(cmd.Context(), orchestrators.CommitPayoutsInput{
				TenantID: tenant,
				Start:    period.Start,
				End:      period.End,
				Token:    token,
			}, orchestrators.CommitPayoutsDeps{
				PayoutStore: s.payouts,
				GeneratePreview: func(ctx context.Context, start, end time.Time) (domainPayroll.Preview, error) {
					return projections.QueryGeneratePayoutData(ctx, projections.GeneratePayoutDataQuery{
						TenantID: tenant,
						Start:    start,
						End:      end,
					}, payoutDataDeps(env, s))
				},
				GenerateID: env.newID,
				Now:        env.now,
			})
			if err != nil {
				return err
			}
			var total int64
			for _, p := range result.Payouts {
				total += p.Amount
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d payouts, %s\n",
				result.Run.ID, len(result.Payouts), domainPayroll.FormatCents(total))
			return nil
		},
	}
	periodFlags(cmd)
	cmd.Flags().String("token", "", "Preview token the commit must still match")
	return cmd
}

func payrollApproveCmd(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "approve PAYOUT_ID...",
		Short: "Mark payouts as paid and notify instructors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := tenantFlag(cmd)
			if err != nil {
				return err
			}
			s, err := env.stores()
			if err != nil {
				return err
			}
			res, err := orchestrators.ExecuteBulkApprove(cmd.Context(), orchestrators.BulkApproveInput{
				TenantID:  tenant,
				PayoutIDs: args,
			}, orchestrators.BulkApproveDeps{
				PayoutStore: s.payouts,
				MemberStore: s.members,
				Sender:      env.Sender,
				From:        env.EmailFrom,
				Now:         env.now,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "approved %d payouts, notified %d instructors\n", res.Updated, res.Notified)
			return nil
		},
	}
}

func payrollExportCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a period's payouts as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := tenantFlag(cmd)
			if err != nil {
				return err
			}
			period, err := periodFromFlags(cmd)
			if err != nil {
				return err
			}
			s, err := env.stores()
			if err != nil {
				return err
			}
			data, err := projections.QueryExportPayoutsCSV(cmd.Context(), projections.ExportPayoutsCSVQuery{
				TenantID: tenant,
				Start:    period.Start,
				End:      period.End,
			}, projections.ExportPayoutsCSVDeps{PayoutStore: s.payouts})
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}
	periodFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func payrollProfitabilityCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profitability",
		Short: "Compare class revenue with instructor pay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := tenantFlag(cmd)
			if err != nil {
				return err
			}
			period, err := periodFromFlags(cmd)
			if err != nil {
				return err
			}
			s, err := env.stores()
			if err != nil {
				return err
			}
			rows, err := projections.QueryInstructorProfitability(cmd.Context(), projections.InstructorProfitabilityQuery{
				TenantID: tenant,
				Start:    period.Start,
				End:      period.End,
			}, projections.InstructorProfitabilityDeps{
				MemberStore:  s.members,
				ClassStore:   s.classes,
				BookingStore: s.bookings,
				PayoutStore:  s.payouts,
			})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INSTRUCTOR\tREVENUE\tCOST\tPROFIT\tMARGIN")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f%%\n", r.Name,
					domainPayroll.FormatCents(r.Revenue), domainPayroll.FormatCents(r.Cost),
					domainPayroll.FormatCents(r.Profit), r.Margin)
			}
			return tw.Flush()
		},
	}
	periodFlags(cmd)
	return cmd
}
