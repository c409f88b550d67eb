package handlers

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v3"

	"caredash/internal/chart"
	"caredash/internal/config"
	"caredash/internal/dashboard"
	"caredash/internal/models"
	"caredash/internal/reports"
	"caredash/internal/validation"
	"caredash/internal/weather"
)

// DashboardHandler renders the caretaker and resident pages.
type DashboardHandler struct {
	svc      *dashboard.Service
	cfg      *config.Config
	branding BrandingData
	now      func() time.Time
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc *dashboard.Service, cfg *config.Config, branding BrandingData) *DashboardHandler {
	return &DashboardHandler{
		svc:      svc,
		cfg:      cfg,
		branding: branding,
		now:      time.Now,
	}
}

// Caretaker renders the Pflege Dashboard: residents in care, outliers and
// cafeteria attendance for the day before the reference date, next to the
// outlier report of the reference date.
func (h *DashboardHandler) Caretaker(c fiber.Ctx) error {
	ref, err := ReferenceDate(c, h.cfg, h.now())
	if err != nil {
		return err
	}
	scope := SessionScope(c)

	summary, err := h.svc.Summary(c.Context(), scope, ref)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Title":         "Pflege Dashboard",
		"CaretakerName": h.caretakerName(c),
		"Summary":       summary,
		"Chart":         chart.AttendanceDonut(summary.Attendance),
		"Day":           summary.Day.Format(validation.DateLayout),
	}
	if err := h.addReport(c, data, scope, validation.ReportTypeOutlier, ref); err != nil {
		return err
	}

	return c.Render("caretaker", MergeBranding(c, data, h.branding))
}

// Forecast renders the Wochen Empfehlungen page with the forecast report.
func (h *DashboardHandler) Forecast(c fiber.Ctx) error {
	ref, err := ReferenceDate(c, h.cfg, h.now())
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Title":         "Wochen Empfehlungen",
		"CaretakerName": h.caretakerName(c),
	}
	if err := h.addReport(c, data, SessionScope(c), validation.ReportTypeForecast, ref); err != nil {
		return err
	}

	return c.Render("forecast", MergeBranding(c, data, h.branding))
}

// Resident renders the Bewohner Dashboard. It never touches the warehouse.
func (h *DashboardHandler) Resident(c fiber.Ctx) error {
	now := h.now()
	w := h.svc.Weather(c.Context(), SessionScope(c))

	return c.Render("resident", MergeBranding(c, fiber.Map{
		"Title":    "Bewohner Dashboard",
		"Weather":  weather.Format(w),
		"MealPlan": h.svc.MealPlan(now),
		"Events":   h.svc.Events(now),
	}, h.branding))
}

// Refresh drops the session's memoized results and sends the user back to
// the page they came from.
func (h *DashboardHandler) Refresh(c fiber.Ctx) error {
	if err := h.svc.Refresh(SessionScope(c)); err != nil {
		return err
	}

	return c.Redirect().Status(fiber.StatusSeeOther).To(localPage(c.FormValue("next")))
}

// addReport puts either the report HTML or a placeholder message into data.
// The report generated on ref is preferred, otherwise the newest one is shown
// and its date is visible in the title.
func (h *DashboardHandler) addReport(c fiber.Ctx, data fiber.Map, scope, reportType string, ref time.Time) error {
	report, err := h.svc.Report(c.Context(), scope, reportType, &ref)
	if errors.Is(err, reports.ErrReportNotFound) {
		report, err = h.svc.Report(c.Context(), scope, reportType, nil)
	}
	switch {
	case errors.Is(err, reports.ErrNoReports), errors.Is(err, reports.ErrReportNotFound):
		data["ReportPlaceholder"] = reports.Placeholder(err, reportType)
	case err != nil:
		return err
	default:
		data["Report"] = report.Report
		data["ReportTitle"] = "Bericht vom " + report.ReportDate.String()
		data["ReportOutdated"] = !report.IsOn(ref)
	}
	return nil
}

// localPage returns next when it points at a dashboard page on this site,
// keeping its query string, and "/" otherwise.
func localPage(next string) string {
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil || pageName(u.Path) == "" {
		return "/"
	}
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}

func (h *DashboardHandler) caretakerName(c fiber.Ctx) string {
	if user, ok := c.Locals("user").(*models.User); ok {
		if name := user.DisplayName(); name != "" {
			return name
		}
	}
	return h.cfg.CaretakerName
}
