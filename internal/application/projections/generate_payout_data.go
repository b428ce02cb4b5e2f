package projections

import (
	"context"
	"fmt"
	"time"

	appointmentStore "studio/internal/adapters/storage/appointment"
	classStore "studio/internal/adapters/storage/classevent"
	memberStore "studio/internal/adapters/storage/member"
	domainAppointment "studio/internal/domain/appointment"
	domainClass "studio/internal/domain/classevent"
	domainMember "studio/internal/domain/member"
	domainPayroll "studio/internal/domain/payroll"
)

// PayrollConfigReader defines the config reads needed by payroll projections.
type PayrollConfigReader interface {
	List(ctx context.Context, tenantID string, activeOnly bool) ([]domainPayroll.Config, error)
}

// PayrollClassStore defines the class reads needed by payroll projections.
type PayrollClassStore interface {
	ListByRange(ctx context.Context, tenantID string, filter classStore.RangeFilter) ([]domainClass.ClassEvent, error)
}

// PayrollAppointmentStore defines the appointment reads needed by payroll projections.
type PayrollAppointmentStore interface {
	ListByRange(ctx context.Context, tenantID string, filter appointmentStore.RangeFilter) ([]domainAppointment.Appointment, error)
}

// PayrollMemberStore defines the member reads needed by payroll projections.
type PayrollMemberStore interface {
	List(ctx context.Context, tenantID string, filter memberStore.ListFilter) ([]domainMember.Member, error)
}

// GeneratePayoutDataQuery carries input for the payout preview projection.
type GeneratePayoutDataQuery struct {
	TenantID string
	Start    time.Time
	End      time.Time
}

// GeneratePayoutDataDeps holds dependencies for the payout preview projection.
type GeneratePayoutDataDeps struct {
	ConfigStore      PayrollConfigReader
	ClassStore       PayrollClassStore
	AppointmentStore PayrollAppointmentStore
	BookingStore     PayrollBookingStore
	MemberStore      PayrollMemberStore
	Fees             domainPayroll.FeePolicy
}

// QueryGeneratePayoutData computes what every actively configured instructor is owed for [Start, End).
// Active classes and completed appointments starting in the period are paid per the instructor's config.
// PRE: query.TenantID is non-empty; End is after Start
// POST: Results hold only instructors with a positive total and only items with a positive amount;
// Token digests the results
func QueryGeneratePayoutData(ctx context.Context, query GeneratePayoutDataQuery, deps GeneratePayoutDataDeps) (domainPayroll.Preview, error) {
	if query.TenantID == "" {
		return domainPayroll.Preview{}, domainPayroll.ErrEmptyTenant
	}
	period := domainPayroll.Period{Start: query.Start, End: query.End}
	if err := period.Validate(); err != nil {
		return domainPayroll.Preview{}, err
	}

	configs, err := deps.ConfigStore.List(ctx, query.TenantID, true)
	if err != nil {
		return domainPayroll.Preview{}, fmt.Errorf("list payroll configs: %w", err)
	}
	names, err := memberNames(ctx, query.TenantID, deps.MemberStore)
	if err != nil {
		return domainPayroll.Preview{}, err
	}

	results := []domainPayroll.Result{}
	for _, cfg := range configs {
		lines, err := instructorLines(ctx, query, cfg, deps)
		if err != nil {
			return domainPayroll.Preview{}, fmt.Errorf("instructor %s: %w", cfg.MemberID, err)
		}
		r := domainPayroll.NewResult(cfg.MemberID, names[cfg.MemberID], lines)
		if r.Amount <= 0 {
			continue
		}
		results = append(results, r)
	}

	return domainPayroll.Preview{
		Start:   query.Start,
		End:     query.End,
		Results: results,
		Token:   domainPayroll.PreviewToken(period, results),
	}, nil
}

func instructorLines(ctx context.Context, query GeneratePayoutDataQuery, cfg domainPayroll.Config, deps GeneratePayoutDataDeps) ([]domainPayroll.Line, error) {
	classes, err := deps.ClassStore.ListByRange(ctx, query.TenantID, classStore.RangeFilter{
		Start:        query.Start,
		End:          query.End,
		InstructorID: cfg.MemberID,
		Status:       domainClass.StatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	appointments, err := deps.AppointmentStore.ListByRange(ctx, query.TenantID, appointmentStore.RangeFilter{
		Start:        query.Start,
		End:          query.End,
		InstructorID: cfg.MemberID,
		Status:       domainAppointment.StatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	// Only the percentage model needs booking data.
	revenues := map[string]domainPayroll.Revenue{}
	if cfg.PayModel == domainPayroll.PayModelPercentage {
		revenues, err = classRevenues(ctx, query.TenantID, classes, deps.BookingStore)
		if err != nil {
			return nil, err
		}
	}

	lines := make([]domainPayroll.Line, 0, len(classes)+len(appointments))
	for _, c := range classes {
		lines = append(lines, domainPayroll.ClassLine(cfg, c, revenues[c.ID], deps.Fees))
	}
	for _, a := range appointments {
		lines = append(lines, domainPayroll.AppointmentLine(cfg, a, deps.Fees))
	}
	return lines, nil
}

func memberNames(ctx context.Context, tenantID string, store PayrollMemberStore) (map[string]string, error) {
	members, err := store.List(ctx, tenantID, memberStore.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return names, nil
}
