// Package api assembles the gin router: public routes, authenticated route
// groups, admin gating, health and metrics endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Howards254/maathai-innovation-catalyst/internal/api/campaigns"
	"github.com/Howards254/maathai-innovation-catalyst/internal/api/challenges"
	"github.com/Howards254/maathai-innovation-catalyst/internal/api/dashboard"
	"github.com/Howards254/maathai-innovation-catalyst/internal/api/feed"
	"github.com/Howards254/maathai-innovation-catalyst/internal/api/innovations"
	"github.com/Howards254/maathai-innovation-catalyst/internal/api/middleware"
	"github.com/Howards254/maathai-innovation-catalyst/internal/config"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// HealthChecker reports the liveness of a backing store.
type HealthChecker interface {
	Health() error
}

// ContextHealthChecker reports liveness with a context deadline.
type ContextHealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers groups the per-area API handlers.
type Handlers struct {
	Dashboard   *dashboard.Handler
	Campaigns   *campaigns.Handler
	Feed        *feed.Handler
	Challenges  *challenges.Handler
	Innovations *innovations.Handler
}

// Deps carries the cross-cutting router dependencies.
type Deps struct {
	Config   *config.Config
	Sessions middleware.SessionStore
	Users    middleware.UserLoader
	DB       HealthChecker
	Cache    ContextHealthChecker
	Log      *logger.Logger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(handlers Handlers, deps Deps) *gin.Engine {
	if deps.Config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", healthHandler(deps))
	if deps.Config.Metrics.Enabled {
		router.GET(deps.Config.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	auth := middleware.Auth(deps.Sessions, deps.Users, deps.Log)
	admin := middleware.RequireAdmin()

	api := router.Group("/api/v1")

	// Public reads
	api.GET("/leaderboard", handlers.Dashboard.GetLeaderboard)
	api.GET("/badges", handlers.Dashboard.GetBadgeCatalog)
	api.GET("/users/:id/summary", handlers.Dashboard.GetUserSummary)
	api.GET("/users/:id/ledger", handlers.Dashboard.GetUserLedger)
	api.GET("/campaigns", handlers.Campaigns.List)
	api.GET("/campaigns/:id", handlers.Campaigns.GetReport)
	api.GET("/feed", handlers.Feed.List)
	api.GET("/feed/:id", handlers.Feed.Get)
	api.GET("/challenges", handlers.Challenges.List)

	// Authenticated writes
	authed := api.Group("", auth)
	authed.POST("/auth/logout", middleware.Logout(deps.Sessions, deps.Log))
	authed.POST("/campaigns/:id/join", handlers.Campaigns.Join)
	authed.POST("/campaigns/:id/submissions", handlers.Campaigns.SubmitTrees)
	authed.POST("/feed", handlers.Feed.Create)
	authed.POST("/feed/:id/comments", handlers.Feed.AddComment)
	authed.POST("/feed/:id/vote", handlers.Feed.Vote)
	authed.POST("/challenges/:id/join", handlers.Challenges.Join)
	authed.POST("/challenges/:id/progress", handlers.Challenges.UpdateProgress)
	authed.GET("/challenges/:id/status", handlers.Challenges.GetStatus)
	authed.POST("/innovations", handlers.Innovations.Submit)
	authed.GET("/innovations", handlers.Innovations.ListMine)
	authed.POST("/innovations/:id/resubmit", handlers.Innovations.Resubmit)

	// Admin-gated operations
	adminOnly := api.Group("", auth, admin)
	adminOnly.POST("/campaigns", handlers.Campaigns.Create)
	adminOnly.GET("/campaigns/:id/submissions", handlers.Campaigns.ListSubmissions)
	adminOnly.POST("/submissions/:id/review", handlers.Campaigns.ReviewSubmission)
	adminOnly.POST("/campaigns/:id/complete", handlers.Campaigns.Complete)
	adminOnly.POST("/challenges", handlers.Challenges.Create)
	adminOnly.GET("/innovations/pending", handlers.Innovations.ListPending)
	adminOnly.POST("/innovations/:id/review", handlers.Innovations.Review)

	return router
}

// healthHandler reports the health of the database and cache.
func healthHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{}

		if deps.DB != nil {
			if err := deps.DB.Health(); err != nil {
				status = http.StatusServiceUnavailable
				checks["database"] = err.Error()
			} else {
				checks["database"] = "ok"
			}
		}

		if deps.Cache != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Cache.Health(ctx); err != nil {
				status = http.StatusServiceUnavailable
				checks["cache"] = err.Error()
			} else {
				checks["cache"] = "ok"
			}
		}

		c.JSON(status, gin.H{
			"status":    http.StatusText(status),
			"checks":    checks,
			"timestamp": time.Now().UTC(),
		})
	}
}
