package appointment

import (
	"context"
	"fmt"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/appointment"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an Appointment (insert or update).
// PRE: appointment has been validated
// POST: Appointment is persisted
func (s *SQLiteStore) Save(ctx context.Context, a domain.Appointment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointment (id, tenant_id, instructor_id, member_id, service_name, start_time, end_time, price, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   instructor_id=excluded.instructor_id, member_id=excluded.member_id, service_name=excluded.service_name,
		   start_time=excluded.start_time, end_time=excluded.end_time, price=excluded.price, status=excluded.status`,
		a.ID, a.TenantID, a.InstructorID, a.MemberID, a.ServiceName,
		storage.FormatTime(a.StartTime), storage.FormatTime(a.EndTime), a.Price, a.Status)
	return err
}

// ListByRange retrieves appointments starting in [filter.Start, filter.End).
// PRE: tenantID is non-empty
// POST: Returns matching appointments ordered by start time
func (s *SQLiteStore) ListByRange(ctx context.Context, tenantID string, filter RangeFilter) ([]domain.Appointment, error) {
	query := `SELECT id, tenant_id, instructor_id, member_id, service_name, start_time, end_time, price, status
		FROM appointment WHERE tenant_id = ? AND start_time >= ? AND start_time < ?`
	args := []any{tenantID, storage.FormatTime(filter.Start), storage.FormatTime(filter.End)}
	if filter.InstructorID != "" {
		query += ` AND instructor_id = ?`
		args = append(args, filter.InstructorID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY start_time, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		var start, end string
		if err := rows.Scan(&a.ID, &a.TenantID, &a.InstructorID, &a.MemberID, &a.ServiceName,
			&start, &end, &a.Price, &a.Status); err != nil {
			return nil, err
		}
		if a.StartTime, err = storage.ParseTime(start); err != nil {
			return nil, fmt.Errorf("appointment %s start_time: %w", a.ID, err)
		}
		if a.EndTime, err = storage.ParseTime(end); err != nil {
			return nil, fmt.Errorf("appointment %s end_time: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
