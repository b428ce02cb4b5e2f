package member

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/member"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID within a tenant.
// PRE: tenantID and id are non-empty
// POST: Returns the member or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, tenantID, id string) (domain.Member, error) {
	var m domain.Member
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, email, role FROM member WHERE tenant_id = ? AND id = ?`,
		tenantID, id).Scan(&m.ID, &m.TenantID, &m.Name, &m.Email, &m.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, domain.ErrNotFound
	}
	return m, err
}

// Save persists a Member (insert or update).
// PRE: member has been validated
// POST: Member is persisted
func (s *SQLiteStore) Save(ctx context.Context, m domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member (id, tenant_id, name, email, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, role=excluded.role`,
		m.ID, m.TenantID, m.Name, m.Email, m.Role, storage.FormatTime(time.Now()))
	return err
}

// List retrieves a tenant's members ordered by name.
// PRE: tenantID is non-empty
// POST: Returns members matching the filter
func (s *SQLiteStore) List(ctx context.Context, tenantID string, filter ListFilter) ([]domain.Member, error) {
	query := `SELECT id, tenant_id, name, email, role FROM member WHERE tenant_id = ?`
	args := []any{tenantID}
	if len(filter.Roles) > 0 {
		query += ` AND role IN (?` + strings.Repeat(", ?", len(filter.Roles)-1) + `)`
		for _, r := range filter.Roles {
			args = append(args, r)
		}
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.TenantID, &m.Name, &m.Email, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
