package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yt-addons/youtube-monitoring-go/internal/config"
	"github.com/yt-addons/youtube-monitoring-go/internal/fetch"
	"github.com/yt-addons/youtube-monitoring-go/internal/handler"
	"github.com/yt-addons/youtube-monitoring-go/internal/middleware"
	"github.com/yt-addons/youtube-monitoring-go/internal/service"
	"github.com/yt-addons/youtube-monitoring-go/internal/store"
	"github.com/yt-addons/youtube-monitoring-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck // best effort on shutdown

	loc, err := time.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		logger.Log.Warn("unknown timezone, falling back to UTC",
			zap.String("timezone", cfg.Display.Timezone),
			zap.Error(err),
		)
		loc = time.UTC
	}

	historyStore := store.NewHistoryStore(cfg.Storage.HistoryPath)
	subsStore := store.NewSubscriptionStore(cfg.Storage.SubscriptionsPath)

	fetcher := fetch.NewClient(cfg.Fetcher)
	ingest := service.NewIngestService(historyStore, cfg.Poller.DuplicateHorizon, loc)
	gate := service.NewRefreshGate(cfg.Poller.RefreshCooldown)
	poller := service.NewPoller(fetcher, ingest, subsStore, cfg.Poller)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.WarmUp(ctx)
	go poller.Run(ctx)

	historyHandler := handler.NewHistoryHandler(ingest, fetcher, subsStore, gate, cfg.Poller.FetchRecommended)
	ingestHandler := handler.NewIngestHandler(ingest)
	refreshHandler := handler.NewRefreshHandler(fetcher, gate)
	healthHandler := handler.NewHealthHandler(fetcher)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		api.GET("/history", historyHandler.HandleHistory)
		api.GET("/stats", historyHandler.HandleStats)
		api.GET("/health", healthHandler.HandleHealth)
		api.POST("/ingest", ingestHandler.HandleIngest)
		api.POST("/refresh/recommended", refreshHandler.HandleRefreshRecommended)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("timezone", cfg.Display.Timezone),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Fatal("server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Log.Error("failed to close server", zap.Error(err))
			}
			os.Exit(1)
		}

		logger.Log.Info("server stopped gracefully")
	}
}
