package projections

import (
	"context"
	"fmt"

	progressStore "studio/internal/adapters/storage/progress"
	domainProgress "studio/internal/domain/progress"
)

// MetricLister defines the metric reads needed by progress projections.
type MetricLister interface {
	List(ctx context.Context, tenantID string, filter progressStore.MetricFilter) ([]domainProgress.MetricDefinition, error)
}

// GetMetricsQuery carries input for the metric definitions projection.
type GetMetricsQuery struct {
	TenantID string
	IsStaff  bool
}

// GetMetricsDeps holds dependencies for the metric definitions projection.
type GetMetricsDeps struct {
	MetricStore MetricLister
}

// QueryGetMetrics returns the tenant's active metric definitions in display order.
// PRE: query.TenantID is non-empty
// POST: Non-staff callers never see a definition hidden from students
func QueryGetMetrics(ctx context.Context, query GetMetricsQuery, deps GetMetricsDeps) ([]domainProgress.MetricDefinition, error) {
	if query.TenantID == "" {
		return nil, domainProgress.ErrEmptyTenant
	}
	metrics, err := deps.MetricStore.List(ctx, query.TenantID, progressStore.MetricFilter{
		ActiveOnly:  true,
		VisibleOnly: !query.IsStaff,
	})
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	if metrics == nil {
		metrics = []domainProgress.MetricDefinition{}
	}
	return metrics, nil
}
