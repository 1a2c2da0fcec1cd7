// Package main provides the campusplan server entry point.
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

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/jheinrich-dev/campusplan/internal/bot"
	"github.com/jheinrich-dev/campusplan/internal/config"
	"github.com/jheinrich-dev/campusplan/internal/logger"
	"github.com/jheinrich-dev/campusplan/internal/markalert"
	"github.com/jheinrich-dev/campusplan/internal/metrics"
	"github.com/jheinrich-dev/campusplan/internal/sentry"
	"github.com/jheinrich-dev/campusplan/internal/timetable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeouts. Calendar rendering stays well below these even for
// large seminar groups.
const (
	httpReadTimeout  = 10 * time.Second
	httpWriteTimeout = 30 * time.Second
	httpIdleTimeout  = 120 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting Campusplan Server")

	// Initialize Sentry (no-op without a DSN)
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	} else if sentry.Enabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry initialized")
	}

	// Create Prometheus registry
	registry := prometheus.NewRegistry()

	// Register Go and process collectors
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	// Create metrics
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create stores and services
	timetableStore := timetable.NewStore(cfg.TimetablesDir())
	timetableService := timetable.NewService(timetableStore, log)
	alertStore := markalert.NewStore(cfg.MarkAlertsDir())
	log.WithField("data_dir", cfg.DataDir).Info("Stores created")

	poller := markalert.NewPoller(alertStore, cfg.FetchTimeout, m, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Launch the Telegram bot and its poll job unless disabled
	var pollCron stoppable
	if cfg.DisableBot {
		log.Info("Bot disabled")
	} else {
		conversations := bot.NewManager(cfg.ChatTTL, m)
		handler := bot.NewHandler(conversations, timetableService, alertStore, log)
		tgBot, err := bot.New(cfg.BotToken, handler, m, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to create bot")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("Panic in bot update loop")
				}
			}()
			tgBot.Run(ctx)
		}()

		pollCron, err = startPollJob(cfg.PollSpec, poller, tgBot, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to start poll job")
		}
		log.WithField("spec", cfg.PollSpec).Info("Poll job scheduled")
	}

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	if sentry.Enabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log, m))

	// Setup routes
	setupRoutes(router, newAPI(timetableService, log), registry, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Stop the poll job and the bot update loop
	if pollCron != nil {
		<-pollCron.Stop().Done()
	}
	cancel()

	// Wait for goroutines to finish (with timeout)
	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()

	select {
	case <-goDone:
		log.Info("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown server gracefully
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	sentry.Flush(2 * time.Second)
	log.Info("Server stopped")
}
