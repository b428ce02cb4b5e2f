package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/payroll"
)

// SQLitePayoutStore implements PayoutStore using SQLite.
type SQLitePayoutStore struct {
	db storage.SQLDB
}

// NewSQLitePayoutStore creates a new SQLitePayoutStore.
func NewSQLitePayoutStore(db storage.SQLDB) *SQLitePayoutStore {
	return &SQLitePayoutStore{db: db}
}

const payoutColumns = `SELECT p.id, p.tenant_id, p.instructor_id, COALESCE(m.name, ''), p.run_id, p.amount,
	p.period_start, p.period_end, p.status, p.paid_at, p.notes, p.created_at
	FROM payout p
	LEFT JOIN member m ON m.id = p.instructor_id AND m.tenant_id = p.tenant_id`

// CommitRun writes a payroll run, its payouts and their items in one transaction.
// PRE: payouts were built by domain.BuildPayout for run
// POST: Either everything is written or nothing is. A payout whose period overlaps an
// existing payout for the same instructor aborts the run with domain.ErrOverlappingPayout.
func (s *SQLitePayoutStore) CommitRun(ctx context.Context, run domain.Run, payouts []domain.Payout) error {
	if len(payouts) == 0 {
		return domain.ErrNothingToCommit
	}
	for i := range payouts {
		if err := payouts[i].Validate(); err != nil {
			return fmt.Errorf("payout for instructor %s: %w", payouts[i].InstructorID, err)
		}
	}

	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO payroll_run (id, tenant_id, period_start, period_end, token, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, run.TenantID, storage.FormatTime(run.PeriodStart), storage.FormatTime(run.PeriodEnd),
			run.Token, storage.FormatTime(run.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert payroll run: %w", err)
		}

		for _, p := range payouts {
			var overlapping int
			err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM payout
				 WHERE tenant_id = ? AND instructor_id = ? AND period_start < ? AND period_end > ?`,
				p.TenantID, p.InstructorID, storage.FormatTime(p.PeriodEnd), storage.FormatTime(p.PeriodStart),
			).Scan(&overlapping)
			if err != nil {
				return fmt.Errorf("check overlapping payouts: %w", err)
			}
			if overlapping > 0 {
				return fmt.Errorf("instructor %s: %w", p.InstructorID, domain.ErrOverlappingPayout)
			}

			_, err = tx.ExecContext(ctx,
				`INSERT INTO payout (id, tenant_id, instructor_id, run_id, amount, period_start, period_end, status, notes, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, p.TenantID, p.InstructorID, run.ID, p.Amount,
				storage.FormatTime(p.PeriodStart), storage.FormatTime(p.PeriodEnd),
				p.Status, p.Notes, storage.FormatTime(p.CreatedAt))
			if err != nil {
				return fmt.Errorf("insert payout: %w", err)
			}

			for _, it := range p.Items {
				details, err := json.Marshal(it.Details)
				if err != nil {
					return fmt.Errorf("encode item details: %w", err)
				}
				_, err = tx.ExecContext(ctx,
					`INSERT INTO payroll_item (id, payout_id, type, reference_id, amount, details)
					 VALUES (?, ?, ?, ?, ?, ?)`,
					it.ID, p.ID, it.Type, it.ReferenceID, it.Amount, string(details))
				if err != nil {
					return fmt.Errorf("insert payroll item: %w", err)
				}
			}
		}
		return nil
	})
}

// List retrieves payouts whose period starts in [filter.Start, filter.End), newest period first.
// PRE: tenantID is non-empty
// POST: InstructorName is joined from member; Items are loaded when filter.WithItems is set
func (s *SQLitePayoutStore) List(ctx context.Context, tenantID string, filter PayoutFilter) ([]domain.Payout, error) {
	query := payoutColumns + ` WHERE p.tenant_id = ? AND p.period_start >= ? AND p.period_start < ?`
	args := []any{tenantID, storage.FormatTime(filter.Start), storage.FormatTime(filter.End)}
	if filter.InstructorID != "" {
		query += ` AND p.instructor_id = ?`
		args = append(args, filter.InstructorID)
	}
	query += ` ORDER BY p.period_start DESC, m.name, p.id`

	payouts, err := s.queryPayouts(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if filter.WithItems {
		if err := s.attachItems(ctx, payouts); err != nil {
			return nil, err
		}
	}
	return payouts, nil
}

// ListByIDs retrieves the tenant's payouts with the given IDs. Unknown IDs are skipped.
func (s *SQLitePayoutStore) ListByIDs(ctx context.Context, tenantID string, ids []string) ([]domain.Payout, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := []any{tenantID}
	for _, id := range ids {
		args = append(args, id)
	}
	return s.queryPayouts(ctx,
		payoutColumns+` WHERE p.tenant_id = ? AND p.id IN (`+placeholders(len(ids))+`) ORDER BY p.id`, args...)
}

// ApproveMany marks the tenant's payouts paid. Prior status is not checked.
// PRE: tenantID is non-empty
// POST: Returns the number of payouts updated
func (s *SQLitePayoutStore) ApproveMany(ctx context.Context, tenantID string, ids []string, paidAt time.Time, note string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := []any{domain.StatusPaid, storage.FormatTime(paidAt), note, tenantID}
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE payout SET status = ?, paid_at = ?, notes = ?
		 WHERE tenant_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SumByInstructor totals payout amounts per instructor for periods starting in [start, end).
func (s *SQLitePayoutStore) SumByInstructor(ctx context.Context, tenantID string, start, end time.Time) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT instructor_id, SUM(amount) FROM payout
		 WHERE tenant_id = ? AND period_start >= ? AND period_start < ?
		 GROUP BY instructor_id`,
		tenantID, storage.FormatTime(start), storage.FormatTime(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var id string
		var total int64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		sums[id] = total
	}
	return sums, rows.Err()
}

// queryPayouts drains the result set before returning so callers can issue follow-up queries
// on a single-connection pool.
func (s *SQLitePayoutStore) queryPayouts(ctx context.Context, query string, args ...any) ([]domain.Payout, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		var p domain.Payout
		var start, end, createdAt string
		var paidAt sql.NullString
		if err := rows.Scan(&p.ID, &p.TenantID, &p.InstructorID, &p.InstructorName, &p.RunID, &p.Amount,
			&start, &end, &p.Status, &paidAt, &p.Notes, &createdAt); err != nil {
			return nil, err
		}
		if p.PeriodStart, err = storage.ParseTime(start); err != nil {
			return nil, fmt.Errorf("payout %s period_start: %w", p.ID, err)
		}
		if p.PeriodEnd, err = storage.ParseTime(end); err != nil {
			return nil, fmt.Errorf("payout %s period_end: %w", p.ID, err)
		}
		if p.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("payout %s created_at: %w", p.ID, err)
		}
		if paidAt.Valid {
			t, err := storage.ParseTime(paidAt.String)
			if err != nil {
				return nil, fmt.Errorf("payout %s paid_at: %w", p.ID, err)
			}
			p.PaidAt = &t
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

func (s *SQLitePayoutStore) attachItems(ctx context.Context, payouts []domain.Payout) error {
	if len(payouts) == 0 {
		return nil
	}
	index := make(map[string]int, len(payouts))
	args := make([]any, 0, len(payouts))
	for i, p := range payouts {
		index[p.ID] = i
		args = append(args, p.ID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payout_id, type, reference_id, amount, details FROM payroll_item
		 WHERE payout_id IN (`+placeholders(len(payouts))+`) ORDER BY payout_id, rowid`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.Item
		var details string
		if err := rows.Scan(&it.ID, &it.PayoutID, &it.Type, &it.ReferenceID, &it.Amount, &details); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(details), &it.Details); err != nil {
			return fmt.Errorf("payroll item %s details: %w", it.ID, err)
		}
		i := index[it.PayoutID]
		payouts[i].Items = append(payouts[i].Items, it)
	}
	return rows.Err()
}

func placeholders(n int) string {
	return "?" + strings.Repeat(", ?", n-1)
}
