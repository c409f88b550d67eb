package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"caredash/internal/metrics"
)

// Table is a fully materialized query result.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Query submits arbitrary SQL and reads every row into memory. Byte slices
// are converted to strings so the table can be rendered or encoded directly.
func (d *DB) Query(ctx context.Context, name, query string, args ...any) (*Table, error) {
	defer metrics.ObserveQuery(name, time.Now())

	rows, err := d.X.QueryxContext(ctx, d.X.Rebind(query), args...)
	if err != nil {
		slog.Error("warehouse query failed", "query", name, "error", err)
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	table := &Table{Columns: cols}
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return table, nil
}

// Bootstrap creates the schema and inserts the demo data set.
func (d *DB) Bootstrap(ctx context.Context) error {
	if err := d.RunMigrations(); err != nil {
		return err
	}
	return d.SeedDemoData(ctx)
}
