package projections

import (
	"context"
	"fmt"

	progressStore "studio/internal/adapters/storage/progress"
	domainProgress "studio/internal/domain/progress"
)

// EntryAggregator defines the entry roll-up needed by the member stats projection.
type EntryAggregator interface {
	Aggregates(ctx context.Context, tenantID, memberID string) (map[string]domainProgress.Aggregates, error)
}

// GetMemberStatsQuery carries input for the member stats projection.
type GetMemberStatsQuery struct {
	TenantID          string
	MemberID          string
	FilterForStudents bool
}

// GetMemberStatsDeps holds dependencies for the member stats projection.
type GetMemberStatsDeps struct {
	MetricStore MetricLister
	EntryStore  EntryAggregator
}

// QueryGetMemberStats rolls up a member's entries for every applicable active metric.
// sum and max default to 0, latest is the most recently recorded value, avg is the arithmetic mean.
// PRE: query.TenantID and query.MemberID are non-empty
// POST: One Stat per metric in display order, including metrics with no entries
func QueryGetMemberStats(ctx context.Context, query GetMemberStatsQuery, deps GetMemberStatsDeps) ([]domainProgress.Stat, error) {
	if query.TenantID == "" {
		return nil, domainProgress.ErrEmptyTenant
	}
	if query.MemberID == "" {
		return nil, domainProgress.ErrEmptyMemberID
	}

	metrics, err := deps.MetricStore.List(ctx, query.TenantID, progressStore.MetricFilter{
		ActiveOnly:  true,
		VisibleOnly: query.FilterForStudents,
	})
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	aggs, err := deps.EntryStore.Aggregates(ctx, query.TenantID, query.MemberID)
	if err != nil {
		return nil, fmt.Errorf("aggregate entries: %w", err)
	}

	stats := make([]domainProgress.Stat, 0, len(metrics))
	for _, m := range metrics {
		a := aggs[m.ID]
		stats = append(stats, domainProgress.Stat{
			Metric:     m,
			Value:      a.Value(m.Aggregation),
			EntryCount: a.Count,
		})
	}
	return stats, nil
}
