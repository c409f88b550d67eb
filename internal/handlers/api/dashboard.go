package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"caredash/internal/chart"
	"caredash/internal/config"
	"caredash/internal/dashboard"
	"caredash/internal/handlers"
	"caredash/internal/models"
	"caredash/internal/reports"
	"caredash/internal/validation"
	"caredash/internal/weather"
)

// DashboardHandler exposes the dashboard figures as JSON.
type DashboardHandler struct {
	svc *dashboard.Service
	cfg *config.Config
	now func() time.Time
}

// NewDashboardHandler creates a new API dashboard handler.
func NewDashboardHandler(svc *dashboard.Service, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{svc: svc, cfg: cfg, now: time.Now}
}

// summaryResponse adds the chart shares to the raw figures.
type summaryResponse struct {
	models.Summary
	Chart []chart.Slice `json:"chart"`
}

// Summary returns the caretaker figures for the day before the reference date.
func (h *DashboardHandler) Summary(c fiber.Ctx) error {
	ref, err := handlers.ReferenceDate(c, h.cfg, h.now())
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, validation.ErrInvalidDate.Error())
	}

	summary, err := h.svc.Summary(c.Context(), handlers.SessionScope(c), ref)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to query warehouse")
	}

	return jsonSuccess(c, summaryResponse{
		Summary: summary,
		Chart:   chart.AttendanceDonut(summary.Attendance).Slices,
	})
}

// Report returns the newest report of the requested type. ?date= restricts
// it to reports generated on that day.
func (h *DashboardHandler) Report(c fiber.Ctx) error {
	reportType, err := validation.NormalizeReportType(c.Params("type"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var day *time.Time
	if q := c.Query("date"); q != "" {
		d, err := validation.ParseDate(q)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		day = &d
	}

	report, err := h.svc.Report(c.Context(), handlers.SessionScope(c), reportType, day)
	if err != nil {
		if errors.Is(err, reports.ErrNoReports) || errors.Is(err, reports.ErrReportNotFound) {
			return jsonError(c, fiber.StatusNotFound, reports.Placeholder(err, reportType))
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to query warehouse")
	}

	return jsonSuccess(c, report)
}

// Weather returns the current weather. Upstream failures yield the fallback
// reading with "fallback": true rather than an error.
func (h *DashboardHandler) Weather(c fiber.Ctx) error {
	w := h.svc.Weather(c.Context(), handlers.SessionScope(c))
	return jsonSuccess(c, fiber.Map{
		"condition":   w.Condition,
		"temperature": w.Temperature,
		"fallback":    w.Fallback,
		"fetched_at":  w.FetchedAt,
		"display":     weather.Format(w),
	})
}

// MealPlan returns the weekly menu with today marked.
func (h *DashboardHandler) MealPlan(c fiber.Ctx) error {
	return jsonSuccess(c, h.svc.MealPlan(h.now()))
}

// Calendar returns calendar events as FullCalendar event objects. The
// start and end query parameters FullCalendar sends limit the result to
// events overlapping that range.
func (h *DashboardHandler) Calendar(c fiber.Ctx) error {
	from, err := rangeBound(c.Query("start"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "start: "+err.Error())
	}
	to, err := rangeBound(c.Query("end"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "end: "+err.Error())
	}

	events := []models.Event{}
	for _, e := range h.svc.AllEvents() {
		if !from.IsZero() && e.End.Time().Before(from) {
			continue
		}
		if !to.IsZero() && !e.Start.Time().Before(to) {
			continue
		}
		events = append(events, e)
	}

	return c.JSON(events)
}

// rangeBound accepts a plain day or a full ISO 8601 timestamp and keeps the day.
func rangeBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if len(s) > len(validation.DateLayout) {
		s = s[:len(validation.DateLayout)]
	}
	return validation.ParseDate(s)
}
