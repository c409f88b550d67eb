package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caredash/internal/models"
)

func report(date, reportType, html string) models.Report {
	var d models.Date
	if err := d.Scan(date); err != nil {
		panic(err)
	}
	return models.Report{ReportDate: d, ReportType: reportType, Report: html}
}

func TestSelect(t *testing.T) {
	all := []models.Report{
		report("2025-03-19", "forecast", "<p>forecast 19</p>"),
		report("2025-03-19", "outlier", "<p>outlier 19</p>"),
		report("2025-03-12", "outlier", "<p>outlier 12</p>"),
	}
	march12 := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	march1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		reports    []models.Report
		reportType string
		day        *time.Time
		want       string
		wantErr    error
	}{
		{"first outlier", all, "outlier", nil, "<p>outlier 19</p>", nil},
		{"first forecast", all, "forecast", nil, "<p>forecast 19</p>", nil},
		{"outlier on a day", all, "outlier", &march12, "<p>outlier 12</p>", nil},
		{"no report on that day", all, "forecast", &march12, "", ErrReportNotFound},
		{"day without reports", all, "outlier", &march1, "", ErrReportNotFound},
		{"unknown type", all, "weekly", nil, "", ErrReportNotFound},
		{"type is case sensitive", all, "Outlier", nil, "", ErrReportNotFound},
		{"empty table", nil, "outlier", nil, "", ErrNoReports},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.reports, tt.reportType, tt.day)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Report)
			assert.Equal(t, tt.reportType, got.ReportType)
		})
	}
}

func TestSelectReturnsFirstMatch(t *testing.T) {
	all := []models.Report{
		report("2025-03-19", "outlier", "first"),
		report("2025-03-19", "outlier", "second"),
	}

	got, err := Select(all, "outlier", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Report)
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "No reports found.", Placeholder(ErrNoReports, "outlier"))
	assert.Equal(t, "No outlier report found.", Placeholder(ErrReportNotFound, "outlier"))
	assert.Equal(t, "No forecast report found.", Placeholder(ErrReportNotFound, "forecast"))
}
