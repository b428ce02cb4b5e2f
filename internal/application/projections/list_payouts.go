package projections

import (
	"context"
	"fmt"
	"time"

	payrollStore "studio/internal/adapters/storage/payroll"
	domainPayroll "studio/internal/domain/payroll"
)

// PayoutLister defines the payout reads needed by listing and export projections.
type PayoutLister interface {
	List(ctx context.Context, tenantID string, filter payrollStore.PayoutFilter) ([]domainPayroll.Payout, error)
}

// ListPayoutsQuery carries input for the payout history projection.
type ListPayoutsQuery struct {
	TenantID     string
	Start        time.Time
	End          time.Time
	InstructorID string // optional
}

// ListPayoutsDeps holds dependencies for the payout history projection.
type ListPayoutsDeps struct {
	PayoutStore PayoutLister
}

// QueryListPayouts returns payouts whose period starts in [Start, End), newest first, with items.
// PRE: query.TenantID is non-empty; End is after Start
// POST: Each payout carries its items and joined instructor name
func QueryListPayouts(ctx context.Context, query ListPayoutsQuery, deps ListPayoutsDeps) ([]domainPayroll.Payout, error) {
	if query.TenantID == "" {
		return nil, domainPayroll.ErrEmptyTenant
	}
	if err := (domainPayroll.Period{Start: query.Start, End: query.End}).Validate(); err != nil {
		return nil, err
	}
	payouts, err := deps.PayoutStore.List(ctx, query.TenantID, payrollStore.PayoutFilter{
		Start:        query.Start,
		End:          query.End,
		InstructorID: query.InstructorID,
		WithItems:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	return payouts, nil
}
