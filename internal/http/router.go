// Package httpapi wires the internal ops HTTP listener (Gin): liveness and
// Prometheus metrics for a bot whose real traffic arrives over the messaging
// platform, not HTTP. The listener is not meant to face the public internet,
// so there is no CORS, auth, or rate limiting here; it still gets tracing,
// correlation IDs, structured logs, and panic recovery.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-guard-bot/internal/config"
	"github.com/tbourn/go-guard-bot/internal/http/middleware"
)

// RegisterRoutes attaches middleware and the ops endpoints to the engine.
//
// Middleware order matters:
//  1. OpenTelemetry (when enabled): trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after the logger
//  5. Metrics
func RegisterRoutes(r *gin.Engine, cfg config.Config) {
	if cfg.OTEL.Enabled {
		r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "route not found"})
	})
}

// NewServer builds the ops http.Server around a configured engine.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Ops.Port,
		Handler:           handler,
		ReadTimeout:       cfg.Ops.ReadTimeout,
		ReadHeaderTimeout: cfg.Ops.ReadHeaderTimeout,
		WriteTimeout:      cfg.Ops.WriteTimeout,
		IdleTimeout:       cfg.Ops.IdleTimeout,
	}
}
