package projections

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	payrollStore "studio/internal/adapters/storage/payroll"
	domainPayroll "studio/internal/domain/payroll"
)

// PayoutCSVHeader is the first row of every payout export.
var PayoutCSVHeader = []string{"ID", "Instructor", "Amount", "Status", "Period Start", "Period End", "Paid At"}

// ExportPayoutsCSVQuery carries input for the payout export projection.
type ExportPayoutsCSVQuery struct {
	TenantID string
	Start    time.Time
	End      time.Time
}

// ExportPayoutsCSVDeps holds dependencies for the payout export projection.
type ExportPayoutsCSVDeps struct {
	PayoutStore PayoutLister
}

// QueryExportPayoutsCSV renders payout history for [Start, End) as CSV.
// Amounts are decimal currency; timestamps are RFC 3339; an unpaid payout has an empty Paid At.
// Fields containing delimiters or quotes are quoted.
// PRE: query.TenantID is non-empty; End is after Start
// POST: Returns the header row followed by one row per payout
func QueryExportPayoutsCSV(ctx context.Context, query ExportPayoutsCSVQuery, deps ExportPayoutsCSVDeps) ([]byte, error) {
	if query.TenantID == "" {
		return nil, domainPayroll.ErrEmptyTenant
	}
	if err := (domainPayroll.Period{Start: query.Start, End: query.End}).Validate(); err != nil {
		return nil, err
	}
	payouts, err := deps.PayoutStore.List(ctx, query.TenantID, payrollStore.PayoutFilter{Start: query.Start, End: query.End})
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(PayoutCSVHeader); err != nil {
		return nil, err
	}
	for _, p := range payouts {
		paidAt := ""
		if p.PaidAt != nil {
			paidAt = p.PaidAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			p.ID,
			p.InstructorName,
			domainPayroll.CentsToDecimal(p.Amount),
			p.Status,
			p.PeriodStart.UTC().Format(time.RFC3339),
			p.PeriodEnd.UTC().Format(time.RFC3339),
			paidAt,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
