package projections

import (
	"context"
	"fmt"

	progressStore "studio/internal/adapters/storage/progress"
	domainProgress "studio/internal/domain/progress"
)

// EntryLister defines the entry history reads needed by the entries projection.
type EntryLister interface {
	List(ctx context.Context, tenantID string, filter progressStore.EntryFilter) ([]domainProgress.Entry, error)
}

// ListEntriesQuery carries input for the entry history projection.
type ListEntriesQuery struct {
	TenantID          string
	MemberID          string
	MetricID          string // optional
	Limit             int
	FilterForStudents bool
}

// ListEntriesDeps holds dependencies for the entry history projection.
type ListEntriesDeps struct {
	MetricStore MetricLister
	EntryStore  EntryLister
}

// QueryListEntries returns a member's entry history, newest first.
// PRE: query.TenantID and query.MemberID are non-empty
// POST: Students only see entries of active metrics visible to them
func QueryListEntries(ctx context.Context, query ListEntriesQuery, deps ListEntriesDeps) ([]domainProgress.Entry, error) {
	if query.TenantID == "" {
		return nil, domainProgress.ErrEmptyTenant
	}
	if query.MemberID == "" {
		return nil, domainProgress.ErrEmptyMemberID
	}

	entries, err := deps.EntryStore.List(ctx, query.TenantID, progressStore.EntryFilter{
		MemberID: query.MemberID,
		MetricID: query.MetricID,
		Limit:    query.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if !query.FilterForStudents {
		return nonNilEntries(entries), nil
	}

	visible, err := deps.MetricStore.List(ctx, query.TenantID, progressStore.MetricFilter{ActiveOnly: true, VisibleOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	allowed := make(map[string]bool, len(visible))
	for _, m := range visible {
		allowed[m.ID] = true
	}
	filtered := make([]domainProgress.Entry, 0, len(entries))
	for _, e := range entries {
		if allowed[e.MetricDefinitionID] {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func nonNilEntries(entries []domainProgress.Entry) []domainProgress.Entry {
	if entries == nil {
		return []domainProgress.Entry{}
	}
	return entries
}
