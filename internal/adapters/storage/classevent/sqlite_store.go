package classevent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/classevent"
)

const selectColumns = `SELECT id, tenant_id, instructor_id, title, start_time, end_time, price, status FROM class_event`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a ClassEvent by its ID.
// PRE: tenantID and id are non-empty
// POST: Returns the class or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, tenantID, id string) (domain.ClassEvent, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE tenant_id = ? AND id = ?`, tenantID, id)
	c, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ClassEvent{}, domain.ErrNotFound
	}
	return c, err
}

// Save persists a ClassEvent (insert or update).
// PRE: class has been validated
// POST: ClassEvent is persisted
func (s *SQLiteStore) Save(ctx context.Context, c domain.ClassEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO class_event (id, tenant_id, instructor_id, title, start_time, end_time, price, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   instructor_id=excluded.instructor_id, title=excluded.title, start_time=excluded.start_time,
		   end_time=excluded.end_time, price=excluded.price, status=excluded.status`,
		c.ID, c.TenantID, c.InstructorID, c.Title,
		storage.FormatTime(c.StartTime), storage.FormatTime(c.EndTime), c.Price, c.Status)
	return err
}

// ListByRange retrieves classes starting in [filter.Start, filter.End), ordered by start time.
// PRE: tenantID is non-empty
// POST: Returns matching classes
func (s *SQLiteStore) ListByRange(ctx context.Context, tenantID string, filter RangeFilter) ([]domain.ClassEvent, error) {
	query := selectColumns + ` WHERE tenant_id = ? AND start_time >= ? AND start_time < ?`
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

	var classes []domain.ClassEvent
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClass(sc scanner) (domain.ClassEvent, error) {
	var c domain.ClassEvent
	var start, end string
	if err := sc.Scan(&c.ID, &c.TenantID, &c.InstructorID, &c.Title, &start, &end, &c.Price, &c.Status); err != nil {
		return domain.ClassEvent{}, err
	}
	var err error
	if c.StartTime, err = storage.ParseTime(start); err != nil {
		return domain.ClassEvent{}, fmt.Errorf("class %s start_time: %w", c.ID, err)
	}
	if c.EndTime, err = storage.ParseTime(end); err != nil {
		return domain.ClassEvent{}, fmt.Errorf("class %s end_time: %w", c.ID, err)
	}
	return c, nil
}
