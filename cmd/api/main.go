package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "thingstodo/internal/adapter/http"
	"thingstodo/internal/adapter/telemetry"
	"thingstodo/pkg/config"
	"thingstodo/pkg/logger"
)

const (
	serviceName    = "thingstodo"
	serviceVersion = "1.0.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	lokiLogger, err := logger.NewLokiLogger(serviceName, cfg.LokiURL)

	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	defer lokiLogger.Sync()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slogger)

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, slogger)

	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Telemetry shutdown failed", "error", err)
		}
	}()

	tel.AppMetrics.StartSystemMetrics(ctx)

	container, err := httpadapter.NewContainer(ctx, cfg, tel.NewTelemetryProbe(slogger), lokiLogger)

	if err != nil {
		return err
	}

	defer container.Close()

	if err := httpadapter.StartServer(ctx, cfg, container, tel.AppMetrics, lokiLogger); err != nil {
		return err
	}

	lokiLogger.Logger.Info("Shut down gracefully")

	return nil
}
