package api

import (
	"github.com/bilgisen/aidigest/internal/config"
	"github.com/bilgisen/aidigest/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp creates the fiber app with the shared error handler and middleware.
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	return app
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, cfg *config.Config) {
	// API group with versioning
	api := app.Group("/api/v1")

	api.Get("/health", h.HealthCheck)
	api.Get("/sources", h.ListSources)
	api.Get("/sources/:name", h.GetSource)
	api.Get("/failures", h.Failures)

	articles := api.Group("/articles")
	{
		articles.Get("", middleware.ValidateQuery[ArticlesQuery](), h.ListArticles)
		articles.Get("/export.csv", middleware.ValidateQuery[ArticlesQuery](), h.ExportCSV)
		articles.Post("/summarize", middleware.ValidateBody[SummarizeRequest](), h.SummarizeArticle)
	}

	admin := api.Group("/admin", middleware.AdminOnly(cfg.AdminAPIKey))
	{
		admin.Post("/refresh", h.RefreshArticles)
		admin.Post("/cache/clear", h.ClearCache)
	}

	// Published digest editions and their index page
	if cfg.OutputDir != "" {
		app.Static("/digests", cfg.OutputDir, fiber.Static{Browse: false, Index: "index.html"})
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
