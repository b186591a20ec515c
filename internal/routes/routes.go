package routes

import (
	"time"

	"github.com/ouvidoriachain/denuncia-backend/internal/config"
	"github.com/ouvidoriachain/denuncia-backend/internal/handlers"
	"github.com/ouvidoriachain/denuncia-backend/internal/middleware"
	"github.com/ouvidoriachain/denuncia-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	credibilityHandler *handlers.CredibilityHandler,
	analysisHandler *handlers.AnalysisHandler,
	severityHandler *handlers.SeverityHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health
	api.Get("/health", healthHandler.Check)

	// Auth — public
	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Report submission — anonymous allowed, pseudonym stamped when a JWT is
	// present
	api.Post("/denuncias", middleware.JWTOptional(cfg), reportHandler.Create)

	// Report reads — restricted to police and admins
	police := api.Group("/denuncias",
		middleware.JWTProtected(cfg),
		middleware.RoleRequired(db, cfg, models.RolePolice, models.RoleAdmin),
	)
	police.Get("/", reportHandler.List)
	police.Get("/local", reportHandler.ListLocal)
	police.Get("/:id", reportHandler.GetByLedgerIndex)

	// Self credibility — any authenticated reporter
	api.Get("/credibilidade/me", middleware.JWTProtected(cfg), credibilityHandler.MyScore)

	// Ledger status — operators
	api.Get("/ledger/status",
		middleware.JWTProtected(cfg),
		middleware.AdminRequired(db, cfg),
		reportHandler.LedgerStatus,
	)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Put("/denuncias/:id/status", reportHandler.UpdateStatus)

	admin.Get("/credibilidade/ranking", credibilityHandler.Ranking)
	admin.Get("/credibilidade/baixa", credibilityHandler.LowCredibility)
	admin.Get("/credibilidade/alta", credibilityHandler.HighCredibility)
	admin.Get("/credibilidade/metricas", credibilityHandler.Metrics)

	admin.Get("/confiabilidade/ranking", analysisHandler.Ranking)
	admin.Get("/confiabilidade/overview", analysisHandler.Overview)
	admin.Get("/confiabilidade/:user_id", analysisHandler.UserReliability)

	admin.Post("/severidade/bulk", severityHandler.BulkAnalyze)
	admin.Get("/severidade/stats", severityHandler.Stats)
	admin.Get("/severidade/provider", severityHandler.ProviderInfo)
	admin.Post("/severidade/:id", severityHandler.Analyze)
}
