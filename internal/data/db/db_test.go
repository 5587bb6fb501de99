package db

import (
	"strings"
	"testing"
)

func TestPostgresDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", Name: "disclosures"}
	want := "postgres://u:p@db:5432/disclosures?sslmode=disable"
	if got := cfg.postgresDSN(); got != want {
		t.Fatalf("postgresDSN: want=%q got=%q", want, got)
	}
	cfg.DSN = "postgres://override"
	if got := cfg.postgresDSN(); got != "postgres://override" {
		t.Fatalf("postgresDSN override: got=%q", got)
	}
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	if got := SQLiteDSN("file::memory:?cache=shared"); !strings.HasSuffix(got, "&_foreign_keys=on&_busy_timeout=5000") {
		t.Fatalf("SQLiteDSN: got=%q", got)
	}
	if got := SQLiteDSN(""); !strings.HasPrefix(got, "disclosures.db?") {
		t.Fatalf("SQLiteDSN default: got=%q", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(nopLogger(), Config{Driver: "oracle"})
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("Open: want unsupported driver error got=%v", err)
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	svc, err := Open(nopLogger(), Config{Driver: DriverSQLite, SQLitePath: "file:dbtest?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	// Second run must be a no-op.
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll again: %v", err)
	}
	var value int64
	if err := svc.DB().Raw(`SELECT value FROM docket_counter WHERE id = 1`).Scan(&value).Error; err != nil {
		t.Fatalf("read docket_counter: %v", err)
	}
	if value != 0 {
		t.Fatalf("docket_counter: want=0 got=%d", value)
	}
}
