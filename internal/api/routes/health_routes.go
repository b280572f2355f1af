package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/Youngermaster/taskhub/internal/infrastructure/persistence/postgres/connection"
	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`
	Timestamp time.Time `json:"timestamp" example:"2026-09-01T02:00:00Z"`
}

// CachePinger is the slice of the cache client the health checks need.
type CachePinger interface {
	HealthCheck(ctx context.Context) error
}

const healthCheckTimeout = 2 * time.Second

// SetupHealthRoutes registers health check endpoints
func SetupHealthRoutes(router *gin.Engine, db *connection.Database, redis CachePinger) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
		})
	})

	// Readiness checks the backing stores, not just the process.
	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		sqlDB, err := db.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		if err := redis.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "cache unavailable"})
			return
		}

		c.JSON(http.StatusOK, HealthResponse{
			Status:    "ready",
			Timestamp: time.Now().UTC(),
		})
	})

	// Cache-only probe so operators can tell a redis outage apart from a
	// database one.
	router.GET("/health/cache", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := redis.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "cache unavailable"})
			return
		}

		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
		})
	})
}
