package projections

import (
	"context"
	"fmt"
	"time"

	classStore "studio/internal/adapters/storage/classevent"
	memberStore "studio/internal/adapters/storage/member"
	domainClass "studio/internal/domain/classevent"
	domainPayroll "studio/internal/domain/payroll"
)

// PayoutCostReader defines the payout reads needed by the profitability projection.
type PayoutCostReader interface {
	SumByInstructor(ctx context.Context, tenantID string, start, end time.Time) (map[string]int64, error)
}

// InstructorProfitabilityQuery carries input for the profitability projection.
type InstructorProfitabilityQuery struct {
	TenantID string
	Start    time.Time
	End      time.Time
}

// InstructorProfitabilityDeps holds dependencies for the profitability projection.
type InstructorProfitabilityDeps struct {
	MemberStore  PayrollMemberStore
	ClassStore   PayrollClassStore
	BookingStore PayrollBookingStore
	PayoutStore  PayoutCostReader
}

// QueryInstructorProfitability compares the revenue of each member's classes with what they were paid.
// Revenue is reconstructed from bookings regardless of the member's pay config. Cost is the sum of
// payouts whose period starts in [Start, End).
// PRE: query.TenantID is non-empty; End is after Start
// POST: One row per tenant member, in member-store order; members with no classes or payouts get zeros
func QueryInstructorProfitability(ctx context.Context, query InstructorProfitabilityQuery, deps InstructorProfitabilityDeps) ([]domainPayroll.Profitability, error) {
	if query.TenantID == "" {
		return nil, domainPayroll.ErrEmptyTenant
	}
	if err := (domainPayroll.Period{Start: query.Start, End: query.End}).Validate(); err != nil {
		return nil, err
	}

	members, err := deps.MemberStore.List(ctx, query.TenantID, memberStore.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	classes, err := deps.ClassStore.ListByRange(ctx, query.TenantID, classStore.RangeFilter{
		Start:  query.Start,
		End:    query.End,
		Status: domainClass.StatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	revenues, err := classRevenues(ctx, query.TenantID, classes, deps.BookingStore)
	if err != nil {
		return nil, err
	}
	costs, err := deps.PayoutStore.SumByInstructor(ctx, query.TenantID, query.Start, query.End)
	if err != nil {
		return nil, fmt.Errorf("sum payouts: %w", err)
	}

	revenueByInstructor := make(map[string]float64)
	for _, c := range classes {
		revenueByInstructor[c.InstructorID] += revenues[c.ID].Gross
	}

	rows := make([]domainPayroll.Profitability, 0, len(members))
	for _, m := range members {
		rows = append(rows, domainPayroll.NewProfitability(m.ID, m.Name, revenueByInstructor[m.ID], costs[m.ID]))
	}
	return rows, nil
}
