package payroll

import (
	"context"
	"time"

	domain "studio/internal/domain/payroll"
)

// ConfigStore persists instructor pay-rate policies.
type ConfigStore interface {
	Save(ctx context.Context, value domain.Config) error
	GetByMemberID(ctx context.Context, tenantID, memberID string) (domain.Config, error)
	List(ctx context.Context, tenantID string, activeOnly bool) ([]domain.Config, error)
	Deactivate(ctx context.Context, tenantID, memberID string, now time.Time) error
}

// PayoutStore persists committed payouts and their items.
type PayoutStore interface {
	CommitRun(ctx context.Context, run domain.Run, payouts []domain.Payout) error
	List(ctx context.Context, tenantID string, filter PayoutFilter) ([]domain.Payout, error)
	ListByIDs(ctx context.Context, tenantID string, ids []string) ([]domain.Payout, error)
	ApproveMany(ctx context.Context, tenantID string, ids []string, paidAt time.Time, note string) (int64, error)
	SumByInstructor(ctx context.Context, tenantID string, start, end time.Time) (map[string]int64, error)
}

// PayoutFilter selects payouts whose period starts in [Start, End).
type PayoutFilter struct {
	Start        time.Time
	End          time.Time
	InstructorID string
	WithItems    bool
}
