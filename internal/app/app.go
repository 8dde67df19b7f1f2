// Package app assembles the report server: router, middleware chain,
// HTTP server lifecycle and graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"embdash/internal/config"
	"embdash/internal/infrastructure"
	"embdash/internal/middleware"
	transporthttp "embdash/internal/transport/http"
)

// Version is stamped at build time.
var Version = "dev"

// Application owns the HTTP server and its dependencies.
type Application struct {
	Config *config.Config
	Paths  *config.Paths
	Logger *slog.Logger
	Server *http.Server

	providers *infrastructure.OTelProviders
	metrics   *infrastructure.PipelineMetrics
}

// NewApplication wires the server. providers and metrics may be nil;
// the corresponding routes and instruments degrade gracefully.
func NewApplication(cfg *config.Config, paths *config.Paths, logger *slog.Logger,
	providers *infrastructure.OTelProviders, metrics *infrastructure.PipelineMetrics) *Application {

	a := &Application{
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		providers: providers,
		metrics:   metrics,
	}

	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return a
}

// Router builds the route tree.
func (a *Application) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.StructuredLogger(a.Logger))
	r.Use(middleware.Recoverer(a.Logger))
	if a.Config.Server.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(a.Config.Server.RateLimitRPS, a.Config.Server.RateLimitBurst, a.Logger)
		r.Use(limiter.Handler)
	}

	reportHandler := transporthttp.NewReportHandler(a.Paths, a.Config, a.Logger)
	healthHandler := transporthttp.NewHealthHandler(a.Paths, Version)

	r.Get("/", reportHandler.Dashboard)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/countries", reportHandler.ListCountries)
		r.Get("/countries/{code}", reportHandler.GetCountry)
	})

	if a.providers != nil && a.providers.PrometheusHTTP != nil {
		r.Handle("/metrics", a.providers.PrometheusHTTP)
	}

	return r
}

// Run starts the server and blocks until the context is cancelled or
// the listener fails, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.Info("server shutting down",
		slog.Duration("timeout", a.Config.Server.ShutdownTimeout))
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if a.providers != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.providers.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
	return nil
}
