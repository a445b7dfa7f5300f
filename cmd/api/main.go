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

	apphttp "storelocator/internal/http"
	"storelocator/internal/http/router"
	"storelocator/internal/locatorapi"
	"storelocator/internal/mapview"
	"storelocator/internal/static"
	"storelocator/internal/stores"
	"storelocator/platform/config"
	"storelocator/platform/logger"
	"storelocator/platform/metrics"
	"storelocator/platform/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "staticDir", cfg.StaticDir)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	m := metrics.New()
	val := validator.New()

	repoOpts := []stores.Option{stores.WithMetrics(m)}
	var health apphttp.HealthChecker
	if cache, closeCache := initStoreCache(ctx, cfg, log); cache != nil {
		defer closeCache()
		repoOpts = append(repoOpts, stores.WithCache(cache, cfg.GetStoreCacheTTL()))
		health = cache
	}

	repo := stores.NewRepository(stores.NewClient(cfg, log), cfg, log, repoOpts...)
	mapLib := mapview.NewLibraryHandle(cfg, nil, log)

	// ========================================================================
	// Modules (Composition Root)
	// ========================================================================

	locatorModule := locatorapi.NewModule(repo, mapLib, cfg, val, log, m)
	staticModule := static.NewModule(cfg, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  health,
		Metrics: m,
		Modules: []apphttp.Module{
			locatorModule,
			staticModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr, "url", cfg.GetAppBaseURL())
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initStoreCache connects the optional Redis payload cache. A cache that
// cannot be reached is logged and skipped; the locator works without it.
func initStoreCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (*stores.RedisCache, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; store payload cache disabled")
		return nil, nil
	}

	cache, err := stores.NewRedisCache(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to initialize store cache", "error", err)
		return nil, nil
	}

	if err := withRetry(ctx, log, "redis connection", 3, time.Second, func() error {
		return cache.Ping(ctx)
	}); err != nil {
		log.Error("store cache unreachable; continuing without it", "error", err)
		_ = cache.Close()
		return nil, nil
	}
	log.Info("store payload cache enabled", "ttl", cfg.GetStoreCacheTTL())

	return cache, func() {
		_ = cache.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
