// Package server assembles the gin engine serving the webhook receiver and
// the dashboard API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/certifiedcode/memberguard/internal/container"
	"github.com/certifiedcode/memberguard/internal/database"
	"github.com/certifiedcode/memberguard/internal/handlers"
	"github.com/certifiedcode/memberguard/internal/metrics"
	"github.com/certifiedcode/memberguard/internal/middleware"
	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

const defaultServiceName = "memberguard"

// NewRouter builds the HTTP routes over the services in c
func NewRouter(c *container.Container) *gin.Engine {
	serviceName := defaultServiceName
	origins := []string{"*"}
	if cfg := c.Config(); cfg != nil {
		if cfg.Telemetry.ServiceName != "" {
			serviceName = cfg.Telemetry.ServiceName
		}
		if len(cfg.CORSOrigins) > 0 {
			origins = cfg.CORSOrigins
		}
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.TracingMiddleware(serviceName))
	r.Use(middleware.RequestLogger("/health", "/api/health", "/metrics"))
	r.Use(middleware.MetricsMiddleware())
	r.Use(cors.New(corsConfig(origins)))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	h := handlers.NewHandlers(c.Platform(), c.Toggles())
	h.SetWebhookProcessor(c.Guard())
	h.SetEmailChecker(c.EmailChecker())
	h.SetAlertSender(c.AlertSender())
	if repo := c.ActivityRepository(); repo != nil {
		h.SetActivityRepository(repo)
	}

	var counter middleware.WindowCounter
	if rc := c.Cache(); rc != nil {
		counter = rc
	}
	bulkLimit := middleware.BulkRateLimitConfig()
	bulkLimit.KeyFunc = func(gc *gin.Context) string {
		if id := util.InstanceID(gc); id != "" {
			return id
		}
		return gc.ClientIP()
	}

	r.GET("/health", handlers.Readiness(readinessChecks(c)))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.Health)

		// Wix deliveries, authenticated by their JWT signature
		api.POST("/webhook", h.Webhook)

		public := api.Group("")
		public.Use(middleware.RedisRateLimitMiddleware(counter, middleware.DefaultRateLimitConfig()))
		{
			public.GET("/check-email", h.CheckEmail)
			public.POST("/sendpulse-email", h.SendFakeMemberAlert)
		}

		dashboard := api.Group("")
		dashboard.Use(middleware.RedisRateLimitMiddleware(counter, middleware.DefaultRateLimitConfig()))
		dashboard.Use(middleware.InstanceMiddleware(c.Platform()))
		{
			dashboard.GET("/toggle-state", h.GetToggleState)
			dashboard.POST("/toggle-state", h.SetToggleState)
			dashboard.GET("/members", h.ListMembers)
			dashboard.POST("/bulk-update-avatars", middleware.RedisRateLimitMiddleware(counter, bulkLimit), h.BulkUpdateAvatars)
			dashboard.GET("/activity", h.GetActivity)
		}
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	cfg.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	cfg.MaxAge = 12 * time.Hour

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func readinessChecks(c *container.Container) map[string]handlers.DependencyCheck {
	checks := map[string]handlers.DependencyCheck{}
	if rc := c.Cache(); rc != nil {
		checks["redis"] = rc.Ping
	}
	if db := c.DB(); db != nil {
		checks["database"] = func(context.Context) error { return database.Health(db) }
	}
	return checks
}
