package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainPayroll "studio/internal/domain/payroll"
)

// PayrollConfigStore defines the store interface needed by payroll config orchestrators.
type PayrollConfigStore interface {
	GetByMemberID(ctx context.Context, tenantID, memberID string) (domainPayroll.Config, error)
	Save(ctx context.Context, c domainPayroll.Config) error
	Deactivate(ctx context.Context, tenantID, memberID string, now time.Time) error
}

// --- Save Payroll Config ---

// SavePayrollConfigInput carries input for the save payroll config orchestrator.
type SavePayrollConfigInput struct {
	TenantID    string
	MemberID    string
	PayModel    string
	Rate        int64 // cents for flat/hourly, basis points for percentage
	PayoutBasis string
}

// SavePayrollConfigDeps holds dependencies for SavePayrollConfig.
type SavePayrollConfigDeps struct {
	ConfigStore PayrollConfigStore
	MemberStore MemberLookup
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteSavePayrollConfig creates or replaces a member's pay policy and activates it.
// PRE: MemberID names a member of the tenant
// POST: Exactly one active config exists for the member
func ExecuteSavePayrollConfig(ctx context.Context, input SavePayrollConfigInput, deps SavePayrollConfigDeps) (domainPayroll.Config, error) {
	if input.TenantID == "" {
		return domainPayroll.Config{}, domainPayroll.ErrEmptyTenant
	}
	if input.MemberID == "" {
		return domainPayroll.Config{}, domainPayroll.ErrEmptyMemberID
	}
	if _, err := deps.MemberStore.GetByID(ctx, input.TenantID, input.MemberID); err != nil {
		return domainPayroll.Config{}, err
	}

	cfg := domainPayroll.Config{
		TenantID:    input.TenantID,
		MemberID:    input.MemberID,
		PayModel:    input.PayModel,
		Rate:        input.Rate,
		PayoutBasis: input.PayoutBasis,
		Active:      true,
		UpdatedAt:   deps.Now(),
	}
	cfg.SetDefaultBasis()
	if err := cfg.Validate(); err != nil {
		return domainPayroll.Config{}, err
	}

	existing, err := deps.ConfigStore.GetByMemberID(ctx, input.TenantID, input.MemberID)
	switch {
	case err == nil:
		cfg.ID = existing.ID
	case errors.Is(err, domainPayroll.ErrConfigNotFound):
		cfg.ID = deps.GenerateID()
	default:
		return domainPayroll.Config{}, fmt.Errorf("load payroll config: %w", err)
	}

	if err := deps.ConfigStore.Save(ctx, cfg); err != nil {
		return domainPayroll.Config{}, err
	}
	slog.Info("payroll_event", "event", "payroll_config_saved", "tenant_id", cfg.TenantID,
		"member_id", cfg.MemberID, "pay_model", cfg.PayModel, "rate", cfg.Rate)
	return cfg, nil
}

// --- Deactivate Payroll Config ---

// DeactivatePayrollConfigInput carries input for the deactivate payroll config orchestrator.
type DeactivatePayrollConfigInput struct {
	TenantID string
	MemberID string
}

// DeactivatePayrollConfigDeps holds dependencies for DeactivatePayrollConfig.
type DeactivatePayrollConfigDeps struct {
	ConfigStore PayrollConfigStore
	Now         func() time.Time
}

// ExecuteDeactivatePayrollConfig stops a member from being included in future payroll runs.
// POST: Returns ErrConfigNotFound when the member has no config
func ExecuteDeactivatePayrollConfig(ctx context.Context, input DeactivatePayrollConfigInput, deps DeactivatePayrollConfigDeps) error {
	if input.TenantID == "" {
		return domainPayroll.ErrEmptyTenant
	}
	if input.MemberID == "" {
		return domainPayroll.ErrEmptyMemberID
	}
	if err := deps.ConfigStore.Deactivate(ctx, input.TenantID, input.MemberID, deps.Now()); err != nil {
		return err
	}
	slog.Info("payroll_event", "event", "payroll_config_deactivated", "tenant_id", input.TenantID, "member_id", input.MemberID)
	return nil
}
