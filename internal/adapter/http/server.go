package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"thingstodo/internal/adapter/http/routes"
	"thingstodo/internal/core/telemetry"
	"thingstodo/pkg/config"
	"thingstodo/pkg/logger"
)

// StartServer serves the API until ctx is cancelled, then drains in-flight
// requests before returning.
func StartServer(ctx context.Context, cfg *config.AppConfig, container *Container, metrics *telemetry.AppMetrics, log *logger.LokiLogger) error {
	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		TodoHandler:   container.TodoHandler,
		HealthHandler: container.HealthHandler,
	}, metrics, log, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ImageSearchTimeout + 15*time.Second,
	}

	slog.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"cache_enabled", cfg.CacheEnabled,
		"database_driver", cfg.DatabaseDriver)

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
