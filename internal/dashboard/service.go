// Package dashboard loads the figures shown on the dashboard pages, keeping
// warehouse results per session.
package dashboard

import (
	"context"
	"time"

	"caredash/internal/config"
	"caredash/internal/content"
	"caredash/internal/db"
	"caredash/internal/memo"
	"caredash/internal/models"
	"caredash/internal/reports"
	"caredash/internal/weather"
)

// Service combines the warehouse, weather and content sources.
type Service struct {
	db      *db.DB
	memo    *memo.Memo
	weather *weather.Client
	content *content.Store
	cfg     *config.Config
}

// NewService creates a dashboard service.
func NewService(database *db.DB, m *memo.Memo, w *weather.Client, c *content.Store, cfg *config.Config) *Service {
	return &Service{db: database, memo: m, weather: w, content: c, cfg: cfg}
}

// Summary returns the caretaker figures for the day before ref.
func (s *Service) Summary(ctx context.Context, scope string, ref time.Time) (models.Summary, error) {
	day := ref.AddDate(0, 0, -1)
	key := day.Format("2006-01-02")

	inCare, err := memo.Remember(ctx, s.memo, scope, "count_in_care", func(ctx context.Context) (int64, error) {
		return s.db.CountInCare(ctx, s.cfg.CaretakerEmployee)
	})
	if err != nil {
		return models.Summary{}, err
	}

	outliers, err := memo.Remember(ctx, s.memo, scope, "outlier_count:"+key, func(ctx context.Context) (int64, error) {
		return s.db.CountOutliers(ctx, day)
	})
	if err != nil {
		return models.Summary{}, err
	}

	attendance, err := memo.Remember(ctx, s.memo, scope, "attendance:"+key, func(ctx context.Context) (models.Attendance, error) {
		return s.db.Attendance(ctx, day)
	})
	if err != nil {
		return models.Summary{}, err
	}

	return models.Summary{
		ReferenceDate: ref,
		Day:           day,
		InCare:        inCare,
		Outliers:      outliers,
		Attendance:    attendance,
	}, nil
}

// Reports returns all generated reports, newest first.
func (s *Service) Reports(ctx context.Context, scope string) ([]models.Report, error) {
	return memo.Remember(ctx, s.memo, scope, "reports", s.db.ListReports)
}

// Report picks the report of reportType, optionally for a specific day.
// Errors from the reports package mean there is nothing to show.
func (s *Service) Report(ctx context.Context, scope, reportType string, day *time.Time) (models.Report, error) {
	all, err := s.Reports(ctx, scope)
	if err != nil {
		return models.Report{}, err
	}
	return reports.Select(all, reportType, day)
}

// Weather returns the current weather, fetched once per session.
func (s *Service) Weather(ctx context.Context, scope string) models.Weather {
	w, err := memo.Remember(ctx, s.memo, scope, "weather", func(ctx context.Context) (models.Weather, error) {
		return s.weather.Current(ctx), nil
	})
	if err != nil {
		// The request ended before the shared fetch finished
		return weather.Fallback(time.Now())
	}
	return w
}

// MealPlan returns the weekly menu with today marked.
func (s *Service) MealPlan(now time.Time) []models.MealPlanDay {
	return s.content.MealPlan(now.In(s.cfg.Location()))
}

// Events returns the calendar events that have not ended before now.
func (s *Service) Events(now time.Time) []models.Event {
	return s.content.Upcoming(now.In(s.cfg.Location()))
}

// AllEvents returns every calendar event.
func (s *Service) AllEvents() []models.Event {
	return s.content.Events()
}

// Refresh forgets everything memoized for a session.
func (s *Service) Refresh(scope string) error {
	return s.memo.Forget(scope)
}

// Ping checks the warehouse connection.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
