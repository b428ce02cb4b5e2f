package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/progress"
)

// SQLiteMetricStore implements MetricStore using SQLite.
type SQLiteMetricStore struct {
	db storage.SQLDB
}

// NewSQLiteMetricStore creates a new SQLiteMetricStore.
func NewSQLiteMetricStore(db storage.SQLDB) *SQLiteMetricStore {
	return &SQLiteMetricStore{db: db}
}

const metricColumns = `SELECT id, tenant_id, name, category, unit, icon, aggregation,
	visible_to_students, active, display_order, created_at FROM progress_metric`

// Save persists a MetricDefinition (insert or update).
// PRE: definition has been validated
// POST: MetricDefinition is persisted
func (s *SQLiteMetricStore) Save(ctx context.Context, m domain.MetricDefinition) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress_metric (id, tenant_id, name, category, unit, icon, aggregation,
		   visible_to_students, active, display_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, category=excluded.category, unit=excluded.unit, icon=excluded.icon,
		   aggregation=excluded.aggregation, visible_to_students=excluded.visible_to_students,
		   active=excluded.active, display_order=excluded.display_order`,
		m.ID, m.TenantID, m.Name, m.Category, m.Unit, m.Icon, m.Aggregation,
		storage.BoolToInt(m.VisibleToStudents), storage.BoolToInt(m.Active), m.DisplayOrder,
		storage.FormatTime(m.CreatedAt))
	return err
}

// GetByID retrieves a definition scoped to the tenant.
// POST: Returns the definition or domain.ErrMetricNotFound
func (s *SQLiteMetricStore) GetByID(ctx context.Context, tenantID, id string) (domain.MetricDefinition, error) {
	row := s.db.QueryRowContext(ctx, metricColumns+` WHERE tenant_id = ? AND id = ?`, tenantID, id)
	m, err := scanMetric(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MetricDefinition{}, domain.ErrMetricNotFound
	}
	return m, err
}

// Delete removes a definition and every entry logged against it.
// POST: Returns domain.ErrMetricNotFound when the tenant has no such definition
func (s *SQLiteMetricStore) Delete(ctx context.Context, tenantID, id string) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM progress_entry WHERE tenant_id = ? AND metric_definition_id = ?`, tenantID, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM progress_metric WHERE tenant_id = ? AND id = ?`, tenantID, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrMetricNotFound
		}
		return nil
	})
}

// List retrieves definitions ordered by display order, then name.
func (s *SQLiteMetricStore) List(ctx context.Context, tenantID string, filter MetricFilter) ([]domain.MetricDefinition, error) {
	query := metricColumns + ` WHERE tenant_id = ?`
	if filter.ActiveOnly {
		query += ` AND active = 1`
	}
	if filter.VisibleOnly {
		query += ` AND visible_to_students = 1`
	}
	query += ` ORDER BY display_order, name, id`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []domain.MetricDefinition
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// Names returns the set of definition names already used by the tenant (case-sensitive).
func (s *SQLiteMetricStore) Names(ctx context.Context, tenantID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM progress_metric WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = true
	}
	return names, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMetric(sc scanner) (domain.MetricDefinition, error) {
	var m domain.MetricDefinition
	var visible, active int
	var createdAt string
	if err := sc.Scan(&m.ID, &m.TenantID, &m.Name, &m.Category, &m.Unit, &m.Icon, &m.Aggregation,
		&visible, &active, &m.DisplayOrder, &createdAt); err != nil {
		return domain.MetricDefinition{}, err
	}
	m.VisibleToStudents = visible == 1
	m.Active = active == 1
	t, err := storage.ParseTime(createdAt)
	if err != nil {
		return domain.MetricDefinition{}, fmt.Errorf("metric %s created_at: %w", m.ID, err)
	}
	m.CreatedAt = t
	return m, nil
}
