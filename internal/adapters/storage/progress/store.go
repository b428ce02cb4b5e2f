package progress

import (
	"context"

	domain "studio/internal/domain/progress"
)

// MetricStore persists metric definitions.
type MetricStore interface {
	Save(ctx context.Context, value domain.MetricDefinition) error
	GetByID(ctx context.Context, tenantID, id string) (domain.MetricDefinition, error)
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, filter MetricFilter) ([]domain.MetricDefinition, error)
	Names(ctx context.Context, tenantID string) (map[string]bool, error)
}

// MetricFilter narrows List results.
type MetricFilter struct {
	ActiveOnly  bool
	VisibleOnly bool // only metrics visible to students
}

// EntryStore persists member progress entries.
type EntryStore interface {
	Save(ctx context.Context, value domain.Entry) error
	Aggregates(ctx context.Context, tenantID, memberID string) (map[string]domain.Aggregates, error)
	List(ctx context.Context, tenantID string, filter EntryFilter) ([]domain.Entry, error)
}

// EntryFilter narrows entry history queries. Results are newest first.
type EntryFilter struct {
	MemberID string
	MetricID string // empty means every metric
	Limit    int    // 0 means no limit
}
