package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// TimeLayout is the canonical text encoding for timestamps. All times are stored in UTC
// with fixed-width nanoseconds so that lexical comparison matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime encodes t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime decodes a stored timestamp. Rows written without fractional seconds still parse.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// pragmas enable WAL, wait on locks instead of failing, and enforce foreign keys.
const pragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"

// Open opens the SQLite database at path with the service pragmas.
// The caller registers the driver (modernc.org/sqlite) and owns Close.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return db, nil
}

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{1, "studio_core", `
	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_member_tenant ON member(tenant_id);

	CREATE TABLE IF NOT EXISTS class_pack (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		price INTEGER NOT NULL,
		initial_credits INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS class_event (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		instructor_id TEXT NOT NULL,
		title TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		price INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active'
	);
	CREATE INDEX IF NOT EXISTS idx_class_event_instructor ON class_event(tenant_id, instructor_id, start_time);

	CREATE TABLE IF NOT EXISTS appointment (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		instructor_id TEXT NOT NULL,
		member_id TEXT NOT NULL DEFAULT '',
		service_name TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		price INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_appointment_instructor ON appointment(tenant_id, instructor_id, start_time);

	CREATE TABLE IF NOT EXISTS booking (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		class_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		status TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		used_pack_id TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (class_id) REFERENCES class_event(id)
	);
	CREATE INDEX IF NOT EXISTS idx_booking_class ON booking(class_id);
	`},
	{2, "payroll", `
	CREATE TABLE IF NOT EXISTS payroll_config (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		pay_model TEXT NOT NULL,
		rate INTEGER NOT NULL,
		payout_basis TEXT NOT NULL DEFAULT 'gross',
		active INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL,
		UNIQUE (tenant_id, member_id)
	);

	CREATE TABLE IF NOT EXISTS payroll_run (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		token TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payout (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		instructor_id TEXT NOT NULL,
		run_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_at TEXT,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		UNIQUE (tenant_id, instructor_id, period_start, period_end),
		FOREIGN KEY (run_id) REFERENCES payroll_run(id)
	);
	CREATE INDEX IF NOT EXISTS idx_payout_period ON payout(tenant_id, period_start);

	CREATE TABLE IF NOT EXISTS payroll_item (
		id TEXT PRIMARY KEY,
		payout_id TEXT NOT NULL,
		type TEXT NOT NULL,
		reference_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		details TEXT NOT NULL,
		UNIQUE (payout_id, type, reference_id),
		FOREIGN KEY (payout_id) REFERENCES payout(id) ON DELETE CASCADE
	);
	`},
	{3, "progress_metrics", `
	CREATE TABLE IF NOT EXISTS progress_metric (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		aggregation TEXT NOT NULL,
		visible_to_students INTEGER NOT NULL DEFAULT 1,
		active INTEGER NOT NULL DEFAULT 1,
		display_order INTEGER NOT NULL DEFAULT 99,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_progress_metric_tenant ON progress_metric(tenant_id, display_order);

	CREATE TABLE IF NOT EXISTS progress_entry (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		metric_definition_id TEXT NOT NULL,
		value REAL NOT NULL,
		source TEXT NOT NULL DEFAULT 'manual',
		recorded_at TEXT NOT NULL,
		FOREIGN KEY (metric_definition_id) REFERENCES progress_metric(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_progress_entry_member ON progress_entry(tenant_id, member_id, metric_definition_id, recorded_at);
	`},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, or 0 for an untracked database.
// PRE: db is a valid database connection
// POST: Returns the highest applied version
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid database connection
// POST: Schema is at LatestSchemaVersion; running it again is a no-op
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := WithTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, FormatTime(time.Now()))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		slog.Info("migration_applied", "version", m.version, "name", m.name)
	}
	return nil
}

// TxBeginner is satisfied by *sql.DB, *TimedDB and every SQLDB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn inside a transaction, committing on nil and rolling back otherwise.
// PRE: db is valid
// POST: Either every statement in fn is committed or none is
func WithTx(ctx context.Context, db TxBeginner, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("tx_rollback_failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// BoolToInt encodes a bool for an INTEGER column.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
