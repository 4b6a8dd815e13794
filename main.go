package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abaevpavel/pdfer-base/config"
	"github.com/abaevpavel/pdfer-base/handler"
	"github.com/abaevpavel/pdfer-base/middleware"
	"github.com/abaevpavel/pdfer-base/pkg/logger"
	"github.com/abaevpavel/pdfer-base/render"
	"github.com/abaevpavel/pdfer-base/service"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully",
		"storage", cfg.Storage.Driver,
		"converter", cfg.Converter.APIURL != "",
		"auth", cfg.Auth.Enabled(),
	)

	// Initialize services
	storage, err := service.NewStorage(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		slog.Error("failed to initialize renderer", "error", err)
		os.Exit(1)
	}

	exporter := service.NewExporter(&cfg.Converter)

	service.InitReportStore(&cfg.Store)
	store := service.GetReportStore()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	scopeHandler := handler.NewScopeHandler(storage, exporter, renderer, store, cfg.Server.MaxBodyBytes)
	reportHandler := handler.NewReportHandler(storage, store)

	router := newRouter(cfg, authHandler, scopeHandler, reportHandler)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: time.Duration(cfg.Converter.TimeoutSeconds+30) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

func newRouter(cfg *config.Config, authHandler *handler.AuthHandler, scopeHandler *handler.ScopeHandler, reportHandler *handler.ReportHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.CacheControl(service.StaticPrefix))

	// Locally stored artifacts
	if cfg.Storage.Driver == config.StorageLocal {
		slog.Info("serving artifacts", "directory", cfg.Output.OutputDir)
		router.Static(service.StaticPrefix, cfg.Output.OutputDir)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	api.POST("/auth/login", middleware.RateLimitFromConfig(&cfg.Server), authHandler.Login)

	protected := api.Group("/")
	protected.Use(middleware.Authenticate(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.GET("/reports", reportHandler.List)
		protected.GET("/reports/:id", reportHandler.Get)
		protected.DELETE("/reports/:id", reportHandler.Delete)
	}

	// Report generation is limited per tenant, or per client IP without auth
	scope := protected.Group("/internal-scope")
	scope.Use(middleware.RateLimitFromConfig(&cfg.Server))
	{
		scope.POST("", scopeHandler.Generate)
		scope.POST("/preview", scopeHandler.Preview)
		scope.POST("/resolve", scopeHandler.Resolve)
	}

	return router
}
