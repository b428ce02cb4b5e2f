package storage

import (
	"database/sql"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database pinned to one connection.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var expectedTables = []string{
	"appointment",
	"booking",
	"class_event",
	"class_pack",
	"member",
	"payout",
	"payroll_config",
	"payroll_item",
	"payroll_run",
	"progress_entry",
	"progress_metric",
	"schema_version",
}

// TestMigrateDB_Fresh verifies all migrations apply cleanly to an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion before migrate: %v", err)
	}
	if v != 0 {
		t.Errorf("initial version = %d, want 0", v)
	}

	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}

	v, err = SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", v, LatestSchemaVersion())
	}

	tables := getTableNames(t, db)
	if len(tables) != len(expectedTables) {
		t.Fatalf("got %d tables, want %d\ngot:  %v\nwant: %v", len(tables), len(expectedTables), tables, expectedTables)
	}
	for i, want := range expectedTables {
		if tables[i] != want {
			t.Errorf("table[%d] = %q, want %q", i, tables[i], want)
		}
	}
}

// TestMigrateDB_Idempotent verifies a second run is a no-op and keeps data.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatalf("first MigrateDB failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO member (id, tenant_id, name, role, created_at) VALUES ('m1', 't1', 'Ana', 'instructor', '2026-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("insert member: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM member WHERE id = 'm1'").Scan(&name); err != nil {
		t.Fatalf("member lost after re-migration: %v", err)
	}
	var applied int
	db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&applied)
	if applied != len(migrations) {
		t.Errorf("schema_version rows = %d, want %d", applied, len(migrations))
	}
}

// TestMigrateDB_PayoutUniquePeriod verifies the duplicate-period constraint.
func TestMigrateDB_PayoutUniquePeriod(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatal(err)
	}
	mustExec := func(q string) {
		t.Helper()
		if _, err := db.Exec(q); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}
	mustExec(`INSERT INTO payroll_run (id, tenant_id, period_start, period_end, token, created_at) VALUES ('r1', 't1', '2026-03-01T00:00:00Z', '2026-04-01T00:00:00Z', 'x', '2026-04-01T00:00:00Z')`)
	mustExec(`INSERT INTO payout (id, tenant_id, instructor_id, run_id, amount, period_start, period_end, status, created_at) VALUES ('p1', 't1', 'i1', 'r1', 100, '2026-03-01T00:00:00Z', '2026-04-01T00:00:00Z', 'processing', '2026-04-01T00:00:00Z')`)

	_, err := db.Exec(`INSERT INTO payout (id, tenant_id, instructor_id, run_id, amount, period_start, period_end, status, created_at) VALUES ('p2', 't1', 'i1', 'r1', 100, '2026-03-01T00:00:00Z', '2026-04-01T00:00:00Z', 'processing', '2026-04-01T00:00:00Z')`)
	if err == nil {
		t.Fatal("expected unique constraint violation for a duplicate payout period")
	}
}

// TestOpen_AppliesPragmas verifies file databases open in WAL mode with foreign keys on.
func TestOpen_AppliesPragmas(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "studio.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestFormatTime_SubSecondOrderAndRoundTrip(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(100 * time.Millisecond), base.Add(900 * time.Millisecond), base.Add(time.Second)}
	for i := 1; i < len(times); i++ {
		if FormatTime(times[i-1]) >= FormatTime(times[i]) {
			t.Errorf("%q should sort before %q", FormatTime(times[i-1]), FormatTime(times[i]))
		}
	}
	for _, tm := range times {
		got, err := ParseTime(FormatTime(tm))
		if err != nil {
			t.Fatalf("ParseTime: %v", err)
		}
		if !got.Equal(tm) {
			t.Errorf("round trip = %v, want %v", got, tm)
		}
	}
	if _, err := ParseTime("2024-03-01T10:00:00Z"); err != nil {
		t.Errorf("second-precision rows must still parse: %v", err)
	}
}
