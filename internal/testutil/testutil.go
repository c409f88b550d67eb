// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"caredash/internal/config"
	"caredash/internal/db"
)

// TestWarehouse creates a file-backed SQLite warehouse with the schema
// applied. The database is closed when the test ends.
func TestWarehouse(t *testing.T) *db.DB {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "warehouse.db"))
	if err != nil {
		t.Fatalf("failed to open test warehouse: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return database
}

// SeededWarehouse is TestWarehouse with the demo data set loaded. Figures
// are reported for the day before db.DemoReferenceDate.
func SeededWarehouse(t *testing.T) *db.DB {
	t.Helper()

	database := TestWarehouse(t)
	if err := database.SeedDemoData(context.Background()); err != nil {
		t.Fatalf("failed to seed test warehouse: %v", err)
	}
	return database
}

// Exec runs a statement against the test warehouse, failing the test on error.
func Exec(t *testing.T, database *db.DB, query string, args ...any) {
	t.Helper()

	if _, err := database.X.Exec(database.X.Rebind(query), args...); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
}
