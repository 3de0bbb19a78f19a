package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // Distinguish a clean server close
	"net/http"  // HTTP server
	"os"        // Process signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Server timeouts

	"coinx_trading/internal/accounts" // Account lifecycle service
	"coinx_trading/internal/api"      // HTTP handlers and router
	"coinx_trading/internal/config"   // Configuration
	"coinx_trading/internal/db"       // Database connection and schema
	"coinx_trading/internal/metrics"  // Prometheus collectors
	"coinx_trading/internal/price"    // Simulated price feed
	"coinx_trading/internal/trading"  // Trade executor

	"github.com/gin-gonic/gin"                       // Gin web framework
	"github.com/prometheus/client_golang/prometheus" // Metrics registry
	"github.com/redis/go-redis/v9"                   // Redis client
	"github.com/sirupsen/logrus"                     // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// Connect to the database and apply the schema
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	defer redisClient.Close()

	// Test Redis connection
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Price feed
	feed := price.NewFeed(price.NewGenerator(cfg.PriceMin, cfg.PriceMax), redisClient, cfg.CacheTTL)
	if cfg.PriceTick > 0 {
		go feed.Run(ctx, cfg.PriceTick) // Publish quotes in the background
	}

	// Metrics and trade executor
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	opts := []trading.Option{trading.WithMetrics(m)}
	if cfg.PriceMaxDeviation.IsPositive() {
		opts = append(opts, trading.WithPriceGuard(feed, cfg.PriceMaxDeviation))
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Deps{
		DB:       gdb,
		Redis:    redisClient,
		Accounts: accounts.NewService(gdb),
		Executor: trading.NewExecutor(gdb, opts...),
		Feed:     feed,
		Session:  api.SessionOptions{Secret: cfg.JWTSecret, TTL: cfg.SessionTTL, Secure: cfg.IsProd},
		CacheTTL: cfg.CacheTTL,
		Metrics:  m,
		Registry: registry,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("graceful shutdown failed: %v", err)
	}
}
