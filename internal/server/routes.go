package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"caredash/internal/dashboard"
	"caredash/internal/handlers"
	"caredash/internal/handlers/api"
	"caredash/internal/middleware"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, svc *dashboard.Service) error {
	authMiddleware := middleware.NewAuthMiddleware(s.Cfg)

	dashboardHandler := handlers.NewDashboardHandler(svc, s.Cfg, s.Branding)
	healthHandler := handlers.NewHealthHandler(svc)
	apiHandler := api.NewDashboardHandler(svc, s.Cfg)

	// Auth routes, only when OIDC is configured
	if s.Cfg.IsOIDCEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg)
		if err != nil {
			return err
		}
		s.App.Get("/login", handlers.LoginPage(s.Branding))
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
	} else {
		log.Println("OIDC authentication is disabled. Set OIDC_ISSUER to require caretaker login.")
		s.App.Get("/login", func(c fiber.Ctx) error {
			return c.Redirect().To("/")
		})
	}

	// Probes and metrics
	s.App.Get("/healthz", healthHandler.Live)
	s.App.Get("/readyz", healthHandler.Ready)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Caretaker pages
	s.App.Get("/", authMiddleware.RequireAuth, dashboardHandler.Caretaker)
	s.App.Get("/forecast", authMiddleware.RequireAuth, dashboardHandler.Forecast)

	// Resident page is public
	s.App.Get("/resident", authMiddleware.OptionalAuth, dashboardHandler.Resident)
	s.App.Post("/refresh", authMiddleware.OptionalAuth, dashboardHandler.Refresh)

	// JSON API
	v1 := s.App.Group("/api/v1")
	v1.Get("/summary", authMiddleware.RequireAuth, apiHandler.Summary)
	v1.Get("/reports/:type", authMiddleware.RequireAuth, apiHandler.Report)
	v1.Get("/weather", apiHandler.Weather)
	v1.Get("/mealplan", apiHandler.MealPlan)
	v1.Get("/calendar", apiHandler.Calendar)

	return nil
}
