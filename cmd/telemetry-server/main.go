package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tunehub/telemetry/pkg/api"
	"github.com/tunehub/telemetry/pkg/config"
	"github.com/tunehub/telemetry/pkg/observability"
	"github.com/tunehub/telemetry/pkg/ratelimit"
	"github.com/tunehub/telemetry/pkg/telemetry"
	"github.com/tunehub/telemetry/pkg/validation"
)

const serviceVersion = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	ctx := context.Background()
	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize OpenTelemetry")
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	limiter := ratelimit.New(ratelimit.Config{
		Window:      cfg.RateLimit.Window,
		Limit:       cfg.RateLimit.Limit,
		BurstWindow: cfg.RateLimit.BurstWindow,
		BurstLimit:  cfg.RateLimit.BurstLimit,
		SweepEvery:  cfg.RateLimit.SweepEvery,
	})
	store := telemetry.NewStore()
	validator := validation.NewWithBatchSize(cfg.Ingestion.MaxBatchSize)
	service := telemetry.NewServiceWithPlatform(limiter, store, validator, cfg.Ingestion.DefaultPlatform)

	handler := api.NewServer(service, api.ServerOptions{
		Metrics:     metrics,
		Logger:      logger,
		TracingOn:   cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.OTelServiceName,
	})

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthServer := newHealthServer(cfg, store, limiter, metrics)

	// Optional cron-driven sweep on top of the inline trigger, so expired
	// entries are collected even when traffic stops entirely.
	var sweeper *cron.Cron
	if schedule := cfg.RateLimit.SweepSchedule; schedule != "" {
		sweeper = cron.New()
		_, err := sweeper.AddFunc(schedule, func() {
			defer observability.RecoverPanic(logger, "rate limit sweep")
			removed := limiter.Sweep()
			logger.WithField("removed", removed).Debug("Rate limit sweep complete")
		})
		if err != nil {
			logger.WithError(err).Error("Invalid sweep schedule")
			os.Exit(1)
		}
		sweeper.Start()
		logger.Infof("Scheduled rate limit sweep: %s", schedule)
	}

	var stopWatch func()
	if path := cfg.RateLimit.OverridesFile; path != "" {
		stopWatch, err = config.WatchOverrides(cfg.RateLimit, path, logger, func(updated config.RateLimitConfig) {
			limiter.SetConfig(ratelimit.Config{
				Window:      updated.Window,
				Limit:       updated.Limit,
				BurstWindow: updated.BurstWindow,
				BurstLimit:  updated.BurstLimit,
				SweepEvery:  updated.SweepEvery,
			})
		})
		if err != nil {
			logger.WithError(err).Error("Failed to watch rate limit overrides")
			os.Exit(1)
		}
	}

	var group errgroup.Group
	group.Go(func() error {
		logger.Infof("Telemetry API listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		manager := observability.NewShutdownManager(logger, apiServer, cfg.Server.ShutdownTimeout)
		manager.RegisterShutdownFunc(healthServer.Shutdown)
		manager.RegisterShutdownFunc(func(shutdownCtx context.Context) error {
			if sweeper != nil {
				sweeper.Stop()
			}
			if stopWatch != nil {
				stopWatch()
			}
			return observability.ShutdownOTel(shutdownCtx, providers, logger)
		})
		return manager.WaitForShutdown()
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

func newHealthServer(cfg *config.Config, store *telemetry.Store, limiter *ratelimit.Limiter, metrics *observability.Metrics) *http.Server {
	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(store, limiter, serviceVersion)
	checker.RegisterHealthRoutes(healthMux)
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	return &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}
}
