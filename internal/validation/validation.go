package validation

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used in query parameters and config.
const DateLayout = "2006-01-02"

// Report types produced by the report generator.
const (
	ReportTypeOutlier  = "outlier"
	ReportTypeForecast = "forecast"
)

var (
	ErrInvalidDate       = errors.New("date must use the YYYY-MM-DD format")
	ErrInvalidReportType = errors.New("report type must be outlier or forecast")
)

// ParseDate parses a YYYY-MM-DD day into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// NormalizeReportType lowercases a report type and checks it is known.
func NormalizeReportType(reportType string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(reportType))
	switch t {
	case ReportTypeOutlier, ReportTypeForecast:
		return t, nil
	default:
		return "", ErrInvalidReportType
	}
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}
