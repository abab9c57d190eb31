package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/wuyan/lifescope/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Data    *handlers.DataHandler
	Reports *handlers.ReportHandler
	Metrics nethttp.Handler
}

// RegisterRoutes wires HTTP routes. Access control is applied globally by the
// policy stage, so no group carries its own guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.Auth.Me)

	data := api.Group("/data")
	data.Post("/upload", cfg.Data.Upload)
	data.Post("/batch", cfg.Data.Batch)

	reports := api.Group("/reports")
	reports.Get("/daily/:date", cfg.Reports.Daily)
	reports.Get("/weekly", cfg.Reports.Weekly)
	reports.Get("/monthly", cfg.Reports.Monthly)
	reports.Get("/list", cfg.Reports.List)
	reports.Post("/generate", cfg.Reports.Generate)
	reports.Get("/top-apps/:targetDate", cfg.Reports.TopApps)

	api.Get("/badges", cfg.Reports.Badges)
	api.Get("/badges/all", cfg.Reports.AllBadges)
}
