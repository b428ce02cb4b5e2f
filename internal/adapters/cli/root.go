// Package cli implements the studioctl operator commands.
package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"studio/internal/adapters/email"
	"studio/internal/adapters/storage"
	appointmentStore "studio/internal/adapters/storage/appointment"
	bookingStore "studio/internal/adapters/storage/booking"
	classEventStore "studio/internal/adapters/storage/classevent"
	memberStore "studio/internal/adapters/storage/member"
	payrollStore "studio/internal/adapters/storage/payroll"
	progressStore "studio/internal/adapters/storage/progress"
	domainPayroll "studio/internal/domain/payroll"
)

var errTenantRequired = errors.New("--tenant is required")

// Env is everything the commands need from the process.
type Env struct {
	DB         func() (*sql.DB, error) // opened lazily; the caller closes it
	SlowQuery  time.Duration           // queries at or above this are logged at WARN; <= 0 uses the storage default
	Fees       domainPayroll.FeePolicy
	Sender     email.Sender
	EmailFrom  string
	Now        func() time.Time
	GenerateID func() string
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

func (e Env) newID() string {
	if e.GenerateID != nil {
		return e.GenerateID()
	}
	return uuid.New().String()
}

// stores is the storage view the commands work against.
type stores struct {
	members      memberStore.Store
	classes      classEventStore.Store
	appointments appointmentStore.Store
	bookings     bookingStore.Store
	configs      payrollStore.ConfigStore
	payouts      payrollStore.PayoutStore
	metrics      progressStore.MetricStore
}

func (e Env) stores() (stores, error) {
	raw, err := e.DB()
	if err != nil {
		return stores{}, err
	}
	db := storage.NewTimedDB(raw, nil, e.SlowQuery)
	return stores{
		members:      memberStore.NewSQLiteStore(db),
		classes:      classEventStore.NewSQLiteStore(db),
		appointments: appointmentStore.NewSQLiteStore(db),
		bookings:     bookingStore.NewSQLiteStore(db),
		configs:      payrollStore.NewSQLiteConfigStore(db),
		payouts:      payrollStore.NewSQLitePayoutStore(db),
		metrics:      progressStore.NewSQLiteMetricStore(db),
	}, nil
}

// NewRootCmd builds the studioctl command tree.
func NewRootCmd(env Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "studioctl",
		Short:         "Studio payroll and progress administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		MigrateCmd(env),
		PayrollCmd(env),
		ProgressCmd(env),
	)
	return root
}

// MigrateCmd applies pending schema migrations.
func MigrateCmd(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := env.DB()
			if err != nil {
				return err
			}
			if err := storage.MigrateDB(db); err != nil {
				return err
			}
			v, err := storage.SchemaVersion(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return nil
		},
	}
}

// tenantFlag reads the persistent --tenant flag.
func tenantFlag(cmd *cobra.Command) (string, error) {
	tenant, _ := cmd.Flags().GetString("tenant")
	if tenant == "" {
		return "", errTenantRequired
	}
	return tenant, nil
}

// periodFlags registers --start and --end on cmd.
func periodFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "Period start (YYYY-MM-DD or RFC3339, inclusive)")
	cmd.Flags().String("end", "", "Period end (YYYY-MM-DD or RFC3339, exclusive)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func periodFromFlags(cmd *cobra.Command) (domainPayroll.Period, error) {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	return domainPayroll.ParsePeriod(start, end)
}
