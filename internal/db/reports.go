package db

import (
	"context"

	"caredash/internal/models"
)

// ListReports returns every generated report, newest first.
func (d *DB) ListReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := d.selectAll(ctx, "reports", &reports, `
		SELECT report_date AS "report_date", report_type AS "report_type", report AS "report"
		FROM openai_report
		ORDER BY report_date DESC
	`)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// CountReportsByType returns the number of stored reports per report type.
func (d *DB) CountReportsByType(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		ReportType string `db:"report_type"`
		Count      int64  `db:"count"`
	}
	err := d.selectAll(ctx, "report_counts", &rows, `
		SELECT report_type AS "report_type", COUNT(*) AS "count"
		FROM openai_report
		GROUP BY report_type
	`)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.ReportType] = r.Count
	}
	return counts, nil
}
