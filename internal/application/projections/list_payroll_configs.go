package projections

import (
	"context"
	"fmt"
	"time"

	domainPayroll "studio/internal/domain/payroll"
)

// ListPayrollConfigsQuery carries input for the payroll config listing.
type ListPayrollConfigsQuery struct {
	TenantID   string
	ActiveOnly bool
}

// ListPayrollConfigsDeps holds dependencies for the payroll config listing.
type ListPayrollConfigsDeps struct {
	ConfigStore PayrollConfigReader
	MemberStore PayrollMemberStore
}

// PayrollConfigView is a config with its member's display name.
type PayrollConfigView struct {
	MemberID    string    `json:"member_id"`
	MemberName  string    `json:"member_name"`
	PayModel    string    `json:"pay_model"`
	Rate        int64     `json:"rate"`
	PayoutBasis string    `json:"payout_basis"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QueryListPayrollConfigs returns the tenant's pay policies with member names.
// PRE: query.TenantID is non-empty
// POST: Returns one view per config
func QueryListPayrollConfigs(ctx context.Context, query ListPayrollConfigsQuery, deps ListPayrollConfigsDeps) ([]PayrollConfigView, error) {
	if query.TenantID == "" {
		return nil, domainPayroll.ErrEmptyTenant
	}
	configs, err := deps.ConfigStore.List(ctx, query.TenantID, query.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("list payroll configs: %w", err)
	}
	names, err := memberNames(ctx, query.TenantID, deps.MemberStore)
	if err != nil {
		return nil, err
	}

	views := make([]PayrollConfigView, 0, len(configs))
	for _, c := range configs {
		views = append(views, PayrollConfigView{
			MemberID:    c.MemberID,
			MemberName:  names[c.MemberID],
			PayModel:    c.PayModel,
			Rate:        c.Rate,
			PayoutBasis: c.PayoutBasis,
			Active:      c.Active,
			UpdatedAt:   c.UpdatedAt,
		})
	}
	return views, nil
}
