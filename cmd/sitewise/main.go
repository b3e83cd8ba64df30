package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitewise-ai/sitewise/internal/api"
	"github.com/sitewise-ai/sitewise/internal/config"
	"github.com/sitewise-ai/sitewise/internal/gateway"
	"github.com/sitewise-ai/sitewise/internal/repository"
	"github.com/sitewise-ai/sitewise/internal/service"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database (widgets and content sources; conversations
	// are ephemeral and never stored)
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	widgetRepo := repository.NewWidgetRepository(db)
	contentRepo := repository.NewContentRepository(db)

	// Initialize the hosted LLM gateway client
	gatewayClient := gateway.NewClient(cfg.Gateway)
	if cfg.Gateway.APIKey == "" {
		logger.Warn("Gateway API key not configured, chat requests will be rejected upstream")
	}

	// Initialize services
	adminService := service.NewAdminService(cfg, widgetRepo, contentRepo)
	ingestService := service.NewIngestService(cfg, contentRepo, logger)
	widgetService := service.NewWidgetService(cfg, widgetRepo)
	chatService := service.NewChatService(cfg, contentRepo, gatewayClient, logger)

	// Setup router
	router := api.SetupRouter(adminService, ingestService, widgetService, chatService, logger, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: []string{"*"},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:        cfg.Address(),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// No write timeout: chat streams and widget sessions are long-lived
		IdleTimeout: 120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting SiteWise server",
			zap.String("address", cfg.Address()),
			zap.String("base_url", cfg.Server.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
