// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/config"
	"github.com/nash-team/bookforge/internal/costs"
	"github.com/nash-team/bookforge/internal/handler"
	"github.com/nash-team/bookforge/internal/lifecycle"
	"github.com/nash-team/bookforge/internal/middleware"
	"github.com/nash-team/bookforge/internal/registry"
	"github.com/nash-team/bookforge/internal/service"
	"github.com/nash-team/bookforge/internal/storage"
)

// Deps bundles the wired application services the routes need. Dependencies
// are passed explicitly — no DI container, no magic.
type Deps struct {
	BookService *service.BookService
	Lifecycle   *lifecycle.Service
	EbookRepo   storage.EbookRepository
	Calculator  *costs.Calculator
	Registry    *registry.Registry
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler()
	bookHandler := handler.NewBookHandler(deps.BookService, deps.Lifecycle, deps.EbookRepo, deps.Calculator, logger)
	adminHandler := handler.NewAdminHandler(deps.EbookRepo, deps.Registry, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)

	// CORS middleware applies to the entire API group.
	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Authenticated API endpoints
	authed := api.Group("")
	authed.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	authed.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		authed.POST("/books", bookHandler.Generate)
		authed.GET("/books", bookHandler.List)
		authed.GET("/books/:id", bookHandler.Get)
		authed.GET("/books/:id/cost", bookHandler.Cost)
		authed.POST("/books/:id/pages/:page/regenerate", bookHandler.RegeneratePage)
		authed.POST("/books/:id/submit", bookHandler.Submit)
	}

	// Admin endpoints (separate auth with admin keys); review decisions
	// live here because approval is an operator action.
	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/models", adminHandler.Models)
		admin.POST("/pricing/refresh", adminHandler.RefreshPricing)
		admin.POST("/books/:id/approve", bookHandler.Approve)
		admin.POST("/books/:id/reject", bookHandler.Reject)
	}
}
