// Package httpapi serves a read-only JSON view of the local kcal store. Every
// request reads a fresh snapshot and recomputes its report.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/config"
)

type RouterDependencies struct {
	DB        *sqlx.DB
	Settings  config.Analytics
	Logger    *slog.Logger
	StartTime time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.StartTime.IsZero() {
		deps.StartTime = time.Now()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Logger))

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "connected"
		statusCode := http.StatusOK
		if err := deps.DB.Ping(); err != nil {
			dbStatus = "unreachable"
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	apiV1 := router.Group("/api/v1")
	NewHandler(deps.DB, deps.Settings, deps.Logger).RegisterRoutes(apiV1)
	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
