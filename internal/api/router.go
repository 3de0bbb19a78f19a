package api

import (
	"context"
	"net/http"
	"time"

	"coinx_trading/internal/accounts"
	"coinx_trading/internal/metrics"
	"coinx_trading/internal/middleware"
	"coinx_trading/internal/price"
	"coinx_trading/internal/trading"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the collaborators of the HTTP layer
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Accounts *accounts.Service
	Executor *trading.Executor
	Feed     *price.Feed
	Session  SessionOptions
	CacheTTL time.Duration

	// Optional; /metrics is only mounted when both are set.
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

// NewRouter builds the gin engine with every route of the service
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestIDMiddleware())
	if d.Metrics != nil && d.Registry != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Registry)))
	}

	r.GET("/healthz", HealthHandler(d.DB, d.Redis))

	apiGroup := r.Group("/api")
	apiGroup.POST("/init", InitHandler(d.Accounts))
	apiGroup.GET("/price", PriceHandler(d.Feed))

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", RegisterHandler(d.Accounts))
	authGroup.POST("/login", LoginHandler(d.Accounts, d.Session))
	authGroup.POST("/logout", LogoutHandler(d.Session.Secure))

	// Session routes
	session := middleware.JWTAuthMiddleware(d.Session.Secret)
	authGroup.GET("/me", session, MeHandler(d.Accounts, d.Redis, d.CacheTTL))
	authGroup.POST("/update", session, UpdateHandler(d.Accounts, d.Redis))
	authGroup.POST("/delete", session, DeleteHandler(d.Accounts, d.Redis, d.Session.Secure))
	apiGroup.POST("/trade", session, TradeHandler(d.Executor, d.Redis))

	return r
}

// HealthHandler reports whether the database and Redis answer
func HealthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "ok", "redis": "ok"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			status["redis"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
