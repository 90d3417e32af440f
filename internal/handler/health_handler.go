package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store is reachable
type Pinger func(ctx context.Context) error

const (
	bannerText    = "Billing App API - Running"
	healthTimeout = 2 * time.Second
)

// RegisterHealthRoutes mounts the banner and the store-aware health check
func RegisterHealthRoutes(r gin.IRoutes, ping Pinger) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, bannerText)
	})

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})
}
