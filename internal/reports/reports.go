// Package reports picks the generated report to show on a dashboard page.
package reports

import (
	"errors"
	"fmt"
	"time"

	"caredash/internal/models"
)

var (
	ErrNoReports      = errors.New("no reports found")
	ErrReportNotFound = errors.New("report not found")
)

// Select returns the first report of reportType. When day is non-nil the
// report must also have been generated for that day. Callers pass reports
// newest first, so the first match is the most recent one.
func Select(all []models.Report, reportType string, day *time.Time) (models.Report, error) {
	if len(all) == 0 {
		return models.Report{}, ErrNoReports
	}
	for _, r := range all {
		if r.ReportType != reportType {
			continue
		}
		if day != nil && !r.IsOn(*day) {
			continue
		}
		return r, nil
	}
	return models.Report{}, ErrReportNotFound
}

// Placeholder returns the message shown instead of a report.
func Placeholder(err error, reportType string) string {
	if errors.Is(err, ErrNoReports) {
		return "No reports found."
	}
	return fmt.Sprintf("No %s report found.", reportType)
}
