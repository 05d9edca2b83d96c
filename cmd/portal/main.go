package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/api"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/config"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/observability/metrics"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/portal"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/internal/session"
	"github.com/rao-hamza-sheharyar/healthcare-frontend-client/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting patient portal client",
		"env", cfg.Env,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
	)

	registry := prometheus.NewRegistry()
	clientMetrics := metrics.NewClientMetrics(registry)

	storage := newStorage(cfg, logger)
	store := session.NewStore(storage, session.WithLogger(logger))

	client := api.NewClient(cfg.APIBaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithLogger(logger),
		api.WithTokenSource(store),
		api.WithUnauthorizedHook(store.Invalidate),
		api.WithMetrics(clientMetrics),
	)
	store.SetClient(client)

	resolveSession(cfg, store, logger)

	roleRouter := portal.NewRouter(cfg.DoctorPortalURL, cfg.AdminPortalURL,
		portal.WithLogger(logger),
		portal.WithMetrics(clientMetrics),
	)
	handoff := portal.NewHandoffHandler(store, roleRouter, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	handoff.Mount(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newStorage picks the credential backend: redis when configured,
// otherwise a local file.
func newStorage(cfg *config.Config, logger *logging.Logger) session.Storage {
	if cfg.RedisAddr != "" {
		logger.Info("using redis credential storage", "addr", cfg.RedisAddr)
		return session.NewRedisStorage(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}))
	}
	logger.Info("using file credential storage", "path", cfg.TokenFile)
	return session.NewFileStorage(cfg.TokenFile)
}

// resolveSession restores the persisted session at startup. Transient
// backend failures are retried with doubling delays; the session stays
// unresolved if every attempt fails, and the next authenticated request
// settles it.
func resolveSession(cfg *config.Config, store *session.Store, logger *logging.Logger) {
	const maxDelay = 30 * time.Second

	delay := cfg.SessionRetryBaseDelay
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		err := store.Initialize(ctx)
		cancel()
		if err == nil {
			logger.Info("session resolved", "status", store.Status().String())
			return
		}
		if attempt >= cfg.SessionRetryAttempts {
			logger.Warn("session unresolved after retries", "attempts", attempt, "error", err)
			return
		}
		logger.Warn("session resolution failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		time.Sleep(delay)
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
