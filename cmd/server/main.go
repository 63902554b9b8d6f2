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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"backoffice/internal/cache"
	"backoffice/internal/config"
	"backoffice/internal/db"
	httpapi "backoffice/internal/http"
	"backoffice/internal/logger"
	"backoffice/internal/metrics"
	"backoffice/internal/repository"
	"backoffice/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: cfg.ServiceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server.failed", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	httpapi.EncodeMoneyAsNumbers()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, db.PoolOptions{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
	})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		if version, err := db.MigrationVersion(ctx, pool); err == nil {
			log.Info(log.WithField(ctx, "version", version), "db.migrated")
		}
	}

	checks := []httpapi.HealthCheck{{
		Name:  "postgres",
		Check: func(ctx context.Context) error { return db.Ping(ctx, pool) },
	}}

	var reports cache.Store = cache.Noop{}
	if cfg.CacheEnabled() {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Error(ctx, "cache.unavailable", err)
		} else {
			defer rc.Close()
			reports = rc
			checks = append(checks, httpapi.HealthCheck{Name: "redis", Check: rc.Ping})
			log.Info(log.WithField(ctx, "ttl", cfg.ReportCacheTTL.String()), "cache.enabled")
		}
	}

	svc := service.New(repository.New(pool), service.Options{
		Cache:    reports,
		CacheTTL: cfg.ReportCacheTTL,
		Logger:   log,
		Location: cfg.Location,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	router := httpapi.NewRouter(httpapi.NewHandler(svc, log, checks...), log, metrics.NewHTTPMetrics(registry), cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(log.WithFields(ctx, map[string]any{
			"addr":     server.Addr,
			"timezone": cfg.ReportTimezone,
		}), "server.listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info(context.Background(), "server.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server.shutdown_failed", err)
		if closeErr := server.Close(); closeErr != nil {
			return fmt.Errorf("force close: %w", closeErr)
		}
	}
	log.Info(context.Background(), "server.stopped")
	return nil
}
