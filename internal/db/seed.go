package db

import (
	"context"
	"fmt"
	"time"
)

// DemoReferenceDate is the day the demo data set is built around. The
// dashboard reports on the day before it.
var DemoReferenceDate = time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC)

const demoOutlierReport = `<html><body style="font-family:sans-serif;background:#fff">
<h2>Ausreißer Bericht</h2>
<p>Zwei Bewohner*innen sind gestern trotz Termin nicht zum Mittag- oder Abendessen erschienen.</p>
</body></html>`

const demoForecastReport = `<html><body style="font-family:sans-serif;background:#fff">
<h2>Pflege Forecast</h2>
<p>Für die kommende Woche wird eine stabile Teilnahme an den Mahlzeiten erwartet.</p>
</body></html>`

// SeedDemoData inserts a small data set for development. Skips seeding when
// residents already exist.
func (d *DB) SeedDemoData(ctx context.Context) error {
	var existing int64
	if err := d.get(ctx, "seed_check", &existing, `SELECT COUNT(*) FROM person`); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	tx, err := d.X.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []struct {
		query string
		rows  [][]any
	}{
		{
			`INSERT INTO person (person_id, employee) VALUES (?, ?)`,
			[][]any{
				{1, "Employee A"}, {2, "Employee A"}, {3, "Employee A"}, {4, "Employee A"},
				{5, "Employee B"}, {6, "Employee B"},
			},
		},
		{
			`INSERT INTO mealplan (mealplan_id, meal_date) VALUES (?, ?)`,
			[][]any{
				{10, "2025-03-18"}, {11, "2025-03-18"}, {12, "2025-03-18"}, {10, "2025-03-17"},
			},
		},
		{
			`INSERT INTO historical_data (person_id, meal_date, mealtime, appeared, mealplan_id) VALUES (?, ?, ?, ?, ?)`,
			[][]any{
				{1, "2025-03-18", "breakfast", "No", 10},
				{1, "2025-03-18", "lunch", "No", 11},
				{1, "2025-03-18", "dinner", "Yes", 12},
				{2, "2025-03-18", "lunch", "No", 11},
				{2, "2025-03-18", "dinner", "No", 99},
				{3, "2025-03-18", "lunch", "Yes", 11},
				{3, "2025-03-18", "dinner", "No", 12},
				{4, "2025-03-18", "lunch", "No", 11},
				{5, "2025-03-18", "lunch", nil, 11},
				{6, "2025-03-18", "dinner", "Yes", 12},
				{1, "2025-03-17", "lunch", "No", 10},
			},
		},
		{
			`INSERT INTO outlier_detection (person_id, date_) VALUES (?, ?)`,
			[][]any{
				{1, "2025-03-18"}, {2, "2025-03-18"}, {3, "2025-03-18"}, {1, "2025-03-17"},
			},
		},
		{
			`INSERT INTO appointment (person_id, time_stamp) VALUES (?, ?)`,
			[][]any{
				{1, "2025-03-18"}, {2, "2025-03-18"}, {3, "2025-03-20"}, {1, "2025-03-17"},
			},
		},
		{
			`INSERT INTO openai_report (report_date, report_type, report) VALUES (?, ?, ?)`,
			[][]any{
				{"2025-03-19", "outlier", demoOutlierReport},
				{"2025-03-19", "forecast", demoForecastReport},
				{"2025-03-12", "outlier", "<p>Ältere Auswertung</p>"},
			},
		},
	}

	for _, st := range statements {
		query := tx.Rebind(st.query)
		for _, row := range st.rows {
			if _, err := tx.ExecContext(ctx, query, row...); err != nil {
				return fmt.Errorf("failed to seed row %v: %w", row, err)
			}
		}
	}

	return tx.Commit()
}
