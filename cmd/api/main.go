package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-tenancy/internal/api/router"
	"github.com/wolfman30/clinic-tenancy/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-tenancy/internal/config"
	httpmiddleware "github.com/wolfman30/clinic-tenancy/internal/http/middleware"
	"github.com/wolfman30/clinic-tenancy/internal/observability/metrics"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy/source"
	"github.com/wolfman30/clinic-tenancy/pkg/logging"
)

const adminLimiterIdle = 10 * time.Minute

func main() {
	// Local development reads a .env file when present.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic tenancy API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"registry_source", cfg.RegistrySource,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, cleanup, err := bootstrap.BuildRegistrySource(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build registry source", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	metricsHandler, tenancyMetrics := setupMetrics()

	// A server without a valid registry would route every host to nothing.
	resolver, err := loadResolver(ctx, src, bootstrap.BuildRules(cfg))
	if err != nil {
		logger.Error("failed to load tenant registry", "source", src.Name(), "error", err)
		os.Exit(1)
	}
	tenancyMetrics.SetRegistrySize(resolver.Registry().Len())
	logger.Info("tenant registry loaded",
		"source", src.Name(),
		"tenants", resolver.Registry().Len(),
		"root_host", resolver.Registry().RootHost(),
	)
	if uncovered := resolver.UncoveredHosts(); len(uncovered) > 0 {
		logger.Warn("registered clinic hosts outside TENANT_DOMAINS classify as unrecognized",
			"hosts", uncovered,
			"domains", resolver.Rules().Domains,
		)
	}

	reloader := source.NewReloader(src, resolver, tenancyMetrics, logger).
		WithInterval(cfg.RegistryReloadInterval)
	if cfg.RegistryReloadInterval > 0 {
		go reloader.Run(ctx)
	}

	adminLimiter := httpmiddleware.NewRateLimiter(1, 5)
	go evictIdleLimiters(ctx, adminLimiter, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:                 logger,
		Resolver:               resolver,
		TenantHandler:          tenancy.NewHandler(resolver, reloader, logger),
		Metrics:                tenancyMetrics,
		MetricsHandler:         metricsHandler,
		AdminAuthSecret:        cfg.AdminJWTSecret,
		AdminRateLimiter:       adminLimiter,
		CORSAllowedOrigins:     cfg.CORSAllowedOrigins,
		CORSAllowTenantOrigins: cfg.CORSAllowTenantOrigins,
		TrustForwardedHost:     cfg.TrustForwardedHost,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupMetrics() (http.Handler, *metrics.TenancyMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewTenancyMetrics(reg)
}

func loadResolver(ctx context.Context, src source.Source, rules tenancy.Rules) (*tenancy.Resolver, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reg, err := src.Load(loadCtx)
	if err != nil {
		return nil, err
	}
	return tenancy.NewResolver(reg, rules), nil
}

func evictIdleLimiters(ctx context.Context, limiter *httpmiddleware.RateLimiter, logger *logging.Logger) {
	ticker := time.NewTicker(adminLimiterIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Evict(adminLimiterIdle); n > 0 {
				logger.Debug("evicted idle rate limit buckets", "count", n)
			}
		}
	}
}
