package payroll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/payroll"
)

// SQLiteConfigStore implements ConfigStore using SQLite.
type SQLiteConfigStore struct {
	db storage.SQLDB
}

// NewSQLiteConfigStore creates a new SQLiteConfigStore.
func NewSQLiteConfigStore(db storage.SQLDB) *SQLiteConfigStore {
	return &SQLiteConfigStore{db: db}
}

const configColumns = `SELECT id, tenant_id, member_id, pay_model, rate, payout_basis, active, updated_at FROM payroll_config`

// Save upserts the config for (tenant, member). The existing row keeps its ID.
// PRE: config has been validated
// POST: At most one config exists per member
func (s *SQLiteConfigStore) Save(ctx context.Context, c domain.Config) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payroll_config (id, tenant_id, member_id, pay_model, rate, payout_basis, active, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(tenant_id, member_id) DO UPDATE SET
		   pay_model=excluded.pay_model, rate=excluded.rate, payout_basis=excluded.payout_basis,
		   active=excluded.active, updated_at=excluded.updated_at`,
		c.ID, c.TenantID, c.MemberID, c.PayModel, c.Rate, c.PayoutBasis,
		storage.BoolToInt(c.Active), storage.FormatTime(c.UpdatedAt))
	return err
}

// GetByMemberID retrieves a member's config.
// PRE: tenantID and memberID are non-empty
// POST: Returns the config or domain.ErrConfigNotFound
func (s *SQLiteConfigStore) GetByMemberID(ctx context.Context, tenantID, memberID string) (domain.Config, error) {
	row := s.db.QueryRowContext(ctx, configColumns+` WHERE tenant_id = ? AND member_id = ?`, tenantID, memberID)
	c, err := scanConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Config{}, domain.ErrConfigNotFound
	}
	return c, err
}

// List retrieves a tenant's configs ordered by member.
func (s *SQLiteConfigStore) List(ctx context.Context, tenantID string, activeOnly bool) ([]domain.Config, error) {
	query := configColumns + ` WHERE tenant_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY member_id`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []domain.Config
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// Deactivate switches a member's config off without deleting it.
// POST: Returns domain.ErrConfigNotFound when the member has no config
func (s *SQLiteConfigStore) Deactivate(ctx context.Context, tenantID, memberID string, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payroll_config SET active = 0, updated_at = ? WHERE tenant_id = ? AND member_id = ?`,
		storage.FormatTime(now), tenantID, memberID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConfigNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConfig(sc scanner) (domain.Config, error) {
	var c domain.Config
	var active int
	var updatedAt string
	if err := sc.Scan(&c.ID, &c.TenantID, &c.MemberID, &c.PayModel, &c.Rate, &c.PayoutBasis, &active, &updatedAt); err != nil {
		return domain.Config{}, err
	}
	c.Active = active == 1
	t, err := storage.ParseTime(updatedAt)
	if err != nil {
		return domain.Config{}, fmt.Errorf("payroll config %s updated_at: %w", c.ID, err)
	}
	c.UpdatedAt = t
	return c, nil
}
