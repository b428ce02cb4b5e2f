package booking

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/booking"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a Booking (insert or update).
// PRE: booking has been validated; the referenced class exists
// POST: Booking is persisted
func (s *SQLiteStore) Save(ctx context.Context, b domain.Booking) error {
	var packID sql.NullString
	if b.UsedPackID != "" {
		packID = sql.NullString{String: b.UsedPackID, Valid: true}
	}
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO booking (id, tenant_id, class_id, member_id, status, payment_method, used_pack_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, payment_method=excluded.payment_method, used_pack_id=excluded.used_pack_id`,
		b.ID, b.TenantID, b.ClassID, b.MemberID, b.Status, b.PaymentMethod, packID, storage.FormatTime(createdAt))
	return err
}

// SavePack persists a ClassPack (insert or update).
func (s *SQLiteStore) SavePack(ctx context.Context, p domain.ClassPack) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO class_pack (id, tenant_id, member_id, price, initial_credits, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET price=excluded.price, initial_credits=excluded.initial_credits`,
		p.ID, p.TenantID, p.MemberID, p.Price, p.InitialCredits, storage.FormatTime(time.Now()))
	return err
}

// ListConfirmedByClassIDs retrieves confirmed bookings for the given classes.
// PRE: tenantID is non-empty
// POST: Returns only bookings with status confirmed; empty classIDs yields nil
func (s *SQLiteStore) ListConfirmedByClassIDs(ctx context.Context, tenantID string, classIDs []string) ([]domain.Booking, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}
	args := []any{tenantID, domain.StatusConfirmed}
	for _, id := range classIDs {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, class_id, member_id, status, payment_method, COALESCE(used_pack_id, ''), created_at
		 FROM booking WHERE tenant_id = ? AND status = ? AND class_id IN (`+placeholders(len(classIDs))+`)
		 ORDER BY class_id, created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		var createdAt string
		if err := rows.Scan(&b.ID, &b.TenantID, &b.ClassID, &b.MemberID, &b.Status,
			&b.PaymentMethod, &b.UsedPackID, &createdAt); err != nil {
			return nil, err
		}
		if b.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("booking %s created_at: %w", b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetPacks retrieves class packs keyed by ID. Unknown IDs are absent from the map.
func (s *SQLiteStore) GetPacks(ctx context.Context, tenantID string, ids []string) (map[string]domain.ClassPack, error) {
	packs := make(map[string]domain.ClassPack, len(ids))
	if len(ids) == 0 {
		return packs, nil
	}
	args := []any{tenantID}
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, member_id, price, initial_credits FROM class_pack
		 WHERE tenant_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.ClassPack
		if err := rows.Scan(&p.ID, &p.TenantID, &p.MemberID, &p.Price, &p.InitialCredits); err != nil {
			return nil, err
		}
		packs[p.ID] = p
	}
	return packs, rows.Err()
}

func placeholders(n int) string {
	return "?" + strings.Repeat(", ?", n-1)
}
