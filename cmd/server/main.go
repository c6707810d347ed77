package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waqf/internal/config"
	"waqf/internal/handlers"
	"waqf/internal/msx"
	"waqf/internal/service"
	"waqf/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "waqf.toml", "path to an optional TOML config file")
	flag.Parse()

	logger := logrus.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	setupLogger(logger, cfg)

	overrides := service.ChainOverrides{service.EnvOverrides{}}
	if cfg.Overrides.File != "" {
		m, err := service.LoadOverridesFile(cfg.Overrides.File)
		switch {
		case err == nil:
			logger.Infof("loaded %d manual prices from %s", len(m), cfg.Overrides.File)
			overrides = append(overrides, m)
		case errors.Is(err, os.ErrNotExist):
			logger.Debugf("no manual price file at %s", cfg.Overrides.File)
		default:
			logger.Warnf("read manual price file %s: %v", cfg.Overrides.File, err)
		}
	}

	client := msx.NewClient(cfg.MSX.BaseURL, cfg.MSX.Lang, logger)
	timeouts := service.StageTimeouts{
		SecurityInfo: cfg.MSX.SecurityInfoTimeout.Duration,
		Search:       cfg.MSX.SearchTimeout.Duration,
		Page:         cfg.MSX.PageTimeout.Duration,
	}
	resolver := service.NewResolver(logger, service.DefaultStrategies(client, overrides, timeouts, cfg.MSX.MarketBoard, logger)...)

	s := store.New(store.Seed(), logger)
	agg := service.NewAggregator(s, resolver, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service.NewWatcher(agg, logger).Start(ctx, cfg.WatchInterval.Duration)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	rg := gin.Default()
	rg.Use(handlers.RequestLogger(logger))
	handlers.NewHandler(agg, logger).Routes(rg)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", handlers.RequestIDHeader},
			ExposedHeaders:   []string{handlers.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		})(rg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("server starting on :%s (tracking %v)", cfg.Port, s.ActiveSymbols())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
}

func setupLogger(logger *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}
