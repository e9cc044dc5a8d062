// Package routing assembles the HTTP server from its middleware and the
// versioned API routes.
package routing

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/api/v1"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/config"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/middleware"
)

// BuildRouter wires the gin engine: recovery, request logging, rate limiting,
// Prometheus metrics and the v1 API.
func BuildRouter(cfg *config.Config, api *v1.APIRouter, logger *log.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(middleware.RateLimitByIP(cfg.Server.RateLimitPerHr))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Printf("%s %s %d %s",
			c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
	}
}
