package models

import "time"

// Report is a pre-rendered HTML document produced by the external report generator.
type Report struct {
	ReportDate Date   `db:"report_date" json:"report_date"`
	ReportType string `db:"report_type" json:"report_type"`
	Report     string `db:"report" json:"report"` // HTML, displayed verbatim
}

// IsOn returns true if the report was generated for the given day.
func (r Report) IsOn(day time.Time) bool {
	return r.ReportDate.Time().Equal(day)
}
