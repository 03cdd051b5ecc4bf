package main

import (
	// Standard library
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	// External dependencies
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Internal packages
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/api"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/collab"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/config"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/middleware"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/overview"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/submission"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/upload"
	"github.com/smallken/ff-pf-frondend-sub002/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logInstance, err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		WithSource:  !cfg.IsProduction(),
		FilePath:    cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	appLogger := logInstance.With("component", "web-server")

	// Validate configuration
	if err := config.ValidateConfig(cfg); err != nil {
		appLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	appLogger.Info("configuration loaded", "env", cfg.Server.Env, "port", cfg.Server.Port)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Build task catalog: built-in defaults, then file overrides, then remote config
	cat := catalog.Default()
	if cfg.Engine.CatalogFile != "" {
		if err := cat.LoadFile(cfg.Engine.CatalogFile); err != nil {
			appLogger.Warn("catalog file not applied, using defaults", "path", cfg.Engine.CatalogFile, "error", err)
		} else {
			appLogger.Info("catalog file applied", "path", cfg.Engine.CatalogFile)
		}
	}
	if cfg.Collab.ConfigURL != "" {
		configClient := collab.NewConfigClient(collab.Options{
			BaseURL: cfg.Collab.ConfigURL,
			Timeout: cfg.Collab.Timeout,
		})
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Collab.Timeout)
		if cat.ApplyRemote(ctx, configClient) {
			appLogger.Info("remote original-task config applied")
		} else {
			appLogger.Warn("remote config unavailable, keeping built-in defaults")
		}
		cancel()
	}

	// Collaborator clients
	uploadClient := collab.NewUploadClient(collab.Options{
		BaseURL: cfg.Collab.UploadURL,
		Timeout: cfg.Collab.Timeout,
	})
	submitClient := collab.NewSubmitClient(collab.Options{
		BaseURL: cfg.Collab.SubmitURL,
		Timeout: cfg.Collab.Timeout,
	})
	overviewClient := collab.NewOverviewClient(collab.Options{
		BaseURL: cfg.Collab.OverviewURL,
		Timeout: cfg.Collab.Timeout,
	})

	// Core engine wiring
	uploader := upload.NewUploader(uploadClient, logInstance.With("component", "uploader"))
	coordinator := submission.NewCoordinator(
		cat,
		uploader,
		submitClient,
		overviewClient,
		cfg.Engine.RefreshDelay,
		logInstance.With("component", "coordinator"),
	)
	editor := submission.NewEditor(submitClient, uploader, coordinator, logInstance.With("component", "editor"))
	aggregator := overview.NewAggregator(coordinator)

	// Warm the usage snapshot so eligibility is available from the first request
	{
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Collab.Timeout)
		if _, err := coordinator.RefreshSnapshot(ctx, "startup"); err != nil {
			appLogger.Warn("initial snapshot fetch failed, will retry on first overview request", "error", err)
		}
		cancel()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(corsMiddleware(cfg.Security.CORSAllowedOrigins))

	// Health, readiness and metrics endpoints (no authentication required)
	startTime := time.Now()
	r.GET("/health", healthCheckHandler(cfg, startTime))
	r.GET("/readiness", readinessCheckHandler(coordinator))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authenticated engine API
	v1 := r.Group("/api/v1")
	v1.Use(middleware.MemberAuth(cfg.Security.JWTSecret))
	{
		v1.GET("/cycle", api.HandleGetCycle(coordinator))
		v1.GET("/catalog", api.HandleGetCatalog(cat))
		v1.GET("/overview", api.HandleGetOverview(aggregator))
		v1.POST("/submissions", api.HandleCreateSubmission(coordinator))
		v1.PATCH("/original/:record_id", api.HandleUpdateOriginal(editor))
	}

	// Create HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.GetServerAddr(),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("server starting", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	appLogger.Info("shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	appLogger.Info("server shutdown complete")
}

// HealthCheckResponse represents the response from the health check endpoint
type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
	Env       string    `json:"env"`
}

// ReadinessCheckResponse represents the response from the readiness check endpoint
type ReadinessCheckResponse struct {
	Ready     bool      `json:"ready"`
	Snapshot  string    `json:"snapshot"`
	Timestamp time.Time `json:"timestamp"`
}

// healthCheckHandler returns the liveness probe handler
func healthCheckHandler(cfg *config.Config, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthCheckResponse{
			Status:    "healthy",
			Service:   "task-challenge-engine",
			Version:   "1.0.0",
			Uptime:    time.Since(startTime).String(),
			Timestamp: time.Now(),
			Env:       cfg.Server.Env,
		}
		c.JSON(http.StatusOK, response)
	}
}

// readinessCheckHandler 就绪探针：至少成功拉取过一次用量快照才算就绪
func readinessCheckHandler(coordinator *submission.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ready := coordinator.Snapshot()
		response := ReadinessCheckResponse{
			Ready:     ready,
			Snapshot:  "ok",
			Timestamp: time.Now(),
		}
		httpStatus := http.StatusOK
		if !ready {
			response.Snapshot = "usage snapshot not yet fetched"
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, response)
	}
}

// corsMiddleware 按配置的来源白名单回写 CORS 头
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimSpace(origin)] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
