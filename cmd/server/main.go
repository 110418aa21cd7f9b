// Package main provides the news questionnaire LINE bot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/newspick/newspick-linebot-go/internal/bot"
	"github.com/newspick/newspick-linebot-go/internal/buildinfo"
	"github.com/newspick/newspick-linebot-go/internal/config"
	"github.com/newspick/newspick-linebot-go/internal/lineutil"
	"github.com/newspick/newspick-linebot-go/internal/logger"
	"github.com/newspick/newspick-linebot-go/internal/metrics"
	"github.com/newspick/newspick-linebot-go/internal/newsapi"
	"github.com/newspick/newspick-linebot-go/internal/sentry"
	"github.com/newspick/newspick-linebot-go/internal/storage"
	"github.com/newspick/newspick-linebot-go/internal/webhook"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, logger.Options{
		BetterstackToken:    cfg.BetterstackToken,
		BetterstackEndpoint: cfg.BetterstackEndpoint,
	})
	log.Infof("Starting NewsPick LineBot Server")

	// Initialize error tracking
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warnf("Failed to initialize Sentry, error tracking disabled")
	} else if sentry.IsEnabled() {
		log.Infof("Sentry error tracking enabled")
	}

	// Connect to the conversation store
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatalf("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Infof("Database connected")

	// Create Prometheus registry
	registry := prometheus.NewRegistry()

	// Register Go and process collectors
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	// Create metrics
	m := metrics.New(registry)
	log.Infof("Metrics initialized")

	// Create NewsAPI client
	newsClient := newsapi.NewClient(cfg.NewsAPIBaseURL, cfg.NewsAPIKey, cfg.Bot.LookupTimeout)
	log.Infof("NewsAPI client created")

	// Create reply dispatcher
	dispatcher, err := lineutil.NewDispatcher(cfg.LineChannelToken, cfg.Bot.EventTimeout, m, log)
	if err != nil {
		log.WithError(err).Fatalf("Failed to create reply dispatcher")
	}

	// Create questionnaire router
	router := bot.NewRouter(db, newsClient, dispatcher, m, log, cfg.Bot.LookupTimeout)

	// Create webhook handler
	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret: cfg.LineChannelSecret,
		BotConfig:     &cfg.Bot,
		Router:        router,
		Metrics:       m,
		Logger:        log,
	})
	log.Infof("Webhook handler created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	engine := gin.New()

	// Add middleware
	engine.Use(gin.Recovery())
	engine.Use(securityHeadersMiddleware())
	engine.Use(loggingMiddleware(log))
	engine.Use(sentryMiddleware())

	// Setup routes
	setupRoutes(engine, webhookHandler, db, registry)

	// Create HTTP server with timeouts sized for webhook traffic
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  config.WebhookHTTPRead,
		WriteTimeout: config.WebhookHTTPWrite,
		IdleTimeout:  config.WebhookHTTPIdle,
	}

	// Start background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Stale questionnaire run cleanup (every 12 hours)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Errorf("Panic in stale run cleanup goroutine")
			}
		}()
		cleanupStaleRuns(ctx, db, log)
	}()

	// Storage size metrics updater (every 5 minutes)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Errorf("Panic in storage metrics goroutine")
			}
		}()
		updateStorageMetrics(ctx, db, m, log)
	}()

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Infof("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatalf("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infof("Shutting down server...")

	// Cancel context to stop background goroutines
	cancel()

	// Wait for goroutines to finish (with timeout)
	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()

	select {
	case <-goDone:
		log.Infof("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warnf("Timeout waiting for goroutines to stop")
	}

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown server gracefully
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Errorf("Server forced to shutdown")
	}

	// Flush buffered error reports
	if sentry.IsEnabled() && !sentry.Flush(2*time.Second) {
		log.Warnf("Timeout flushing Sentry events")
	}

	// Close database connection
	if err := db.Close(); err != nil {
		log.WithError(err).Errorf("Failed to close database")
	}

	log.Infof("Server stopped")
}
