package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/snowflakedb/gosnowflake"
	_ "modernc.org/sqlite"

	"caredash/internal/config"
	"caredash/internal/metrics"
	"caredash/migrations"
)

// DB wraps a sqlx handle on the data warehouse.
type DB struct {
	X      *sqlx.DB
	driver string
}

// New opens a warehouse connection for the configured driver and pings it.
func New(ctx context.Context, cfg *config.Config) (*DB, error) {
	dsn, err := dataSourceName(cfg)
	if err != nil {
		return nil, err
	}
	return Open(ctx, cfg.WarehouseDriver, dsn)
}

// Open connects to a warehouse with an explicit driver name and DSN.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	x, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if driver == config.DriverSQLite {
		// SQLite allows a single writer; the dashboard only reads, but the
		// bootstrap and tests write.
		x.SetMaxOpenConns(1)
	} else {
		x.SetMaxOpenConns(10)
		x.SetConnMaxIdleTime(5 * time.Minute)
	}

	return &DB{X: x, driver: driver}, nil
}

// dataSourceName builds the DSN for the configured driver.
func dataSourceName(cfg *config.Config) (string, error) {
	if cfg.WarehouseDSN != "" {
		return cfg.WarehouseDSN, nil
	}
	if cfg.WarehouseDriver != config.DriverSnowflake {
		return "", fmt.Errorf("WAREHOUSE_DSN is required for driver %q", cfg.WarehouseDriver)
	}

	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:   cfg.SnowflakeAccount,
		User:      cfg.SnowflakeUser,
		Password:  cfg.SnowflakePassword,
		Warehouse: cfg.SnowflakeWarehouse,
		Database:  cfg.SnowflakeDatabase,
		Schema:    cfg.SnowflakeSchema,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build snowflake dsn: %w", err)
	}
	return dsn, nil
}

// Driver returns the database/sql driver name.
func (d *DB) Driver() string {
	return d.driver
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.X.Close()
}

// Ping checks that the warehouse is reachable.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.X.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RunMigrations creates the warehouse tables from the embedded migrations.
// Only the pgx and sqlite drivers can be migrated.
func (d *DB) RunMigrations() error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	var (
		dbDriver database.Driver
		name     string
	)
	switch d.driver {
	case config.DriverPgx:
		name = "pgx5"
		dbDriver, err = migratepgx.WithInstance(d.X.DB, &migratepgx.Config{})
	case config.DriverSQLite:
		name = "sqlite"
		dbDriver, err = migratesqlite.WithInstance(d.X.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("%w: %s", ErrBootstrapUnsupported, d.driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, name, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// get runs a single-row query into dest. name labels the query in metrics and logs.
func (d *DB) get(ctx context.Context, name string, dest any, query string, args ...any) error {
	defer metrics.ObserveQuery(name, time.Now())

	if err := d.X.GetContext(ctx, dest, d.X.Rebind(query), args...); err != nil {
		if err == sql.ErrNoRows {
			return ErrNoRows
		}
		slog.Error("warehouse query failed", "query", name, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// selectAll runs a query and materializes every row into dest.
func (d *DB) selectAll(ctx context.Context, name string, dest any, query string, args ...any) error {
	defer metrics.ObserveQuery(name, time.Now())

	if err := d.X.SelectContext(ctx, dest, d.X.Rebind(query), args...); err != nil {
		slog.Error("warehouse query failed", "query", name, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// day formats a calendar day as a bind parameter. Text compares correctly
// against DATE columns on every supported engine.
func day(t time.Time) string {
	return t.Format("2006-01-02")
}
