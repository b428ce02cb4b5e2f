package progress

import (
	"context"
	"fmt"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/progress"
)

// SQLiteEntryStore implements EntryStore using SQLite.
type SQLiteEntryStore struct {
	db storage.SQLDB
}

// NewSQLiteEntryStore creates a new SQLiteEntryStore.
func NewSQLiteEntryStore(db storage.SQLDB) *SQLiteEntryStore {
	return &SQLiteEntryStore{db: db}
}

// Save appends an Entry.
// PRE: entry has been validated and its metric belongs to the tenant
// POST: Entry is persisted
func (s *SQLiteEntryStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress_entry (id, tenant_id, member_id, metric_definition_id, value, source, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TenantID, e.MemberID, e.MetricDefinitionID, e.Value, e.Source, storage.FormatTime(e.RecordedAt))
	return err
}

// Aggregates rolls up a member's entries per metric in one query.
// Latest is the value of the entry with the greatest recorded_at; ties go to the last inserted.
// PRE: tenantID and memberID are non-empty
// POST: Metrics with no entries are absent from the map
func (s *SQLiteEntryStore) Aggregates(ctx context.Context, tenantID, memberID string) (map[string]domain.Aggregates, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.metric_definition_id,
		        COUNT(*),
		        COALESCE(SUM(e.value), 0),
		        COALESCE(MAX(e.value), 0),
		        COALESCE(AVG(e.value), 0),
		        (SELECT l.value FROM progress_entry l
		          WHERE l.tenant_id = e.tenant_id AND l.member_id = e.member_id
		            AND l.metric_definition_id = e.metric_definition_id
		          ORDER BY l.recorded_at DESC, l.rowid DESC LIMIT 1)
		   FROM progress_entry e
		  WHERE e.tenant_id = ? AND e.member_id = ?
		  GROUP BY e.metric_definition_id`,
		tenantID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.Aggregates)
	for rows.Next() {
		var id string
		var a domain.Aggregates
		if err := rows.Scan(&id, &a.Count, &a.Sum, &a.Max, &a.Avg, &a.Latest); err != nil {
			return nil, err
		}
		out[id] = a
	}
	return out, rows.Err()
}

// List returns a member's entries, newest first.
func (s *SQLiteEntryStore) List(ctx context.Context, tenantID string, filter EntryFilter) ([]domain.Entry, error) {
	query := `SELECT id, tenant_id, member_id, metric_definition_id, value, source, recorded_at
		FROM progress_entry WHERE tenant_id = ? AND member_id = ?`
	args := []any{tenantID, filter.MemberID}
	if filter.MetricID != "" {
		query += ` AND metric_definition_id = ?`
		args = append(args, filter.MetricID)
	}
	query += ` ORDER BY recorded_at DESC, rowid DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.TenantID, &e.MemberID, &e.MetricDefinitionID, &e.Value, &e.Source, &recordedAt); err != nil {
			return nil, err
		}
		if e.RecordedAt, err = storage.ParseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("entry %s recorded_at: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
