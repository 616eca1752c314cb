package http

import (
	"context"
	"fmt"
	"log/slog"

	"thingstodo/internal/adapter/database/postgres"
	pgrepository "thingstodo/internal/adapter/database/postgres/repository"
	"thingstodo/internal/adapter/database/sqlite"
	sqliterepository "thingstodo/internal/adapter/database/sqlite/repository"
	"thingstodo/internal/adapter/http/handler"
	"thingstodo/internal/adapter/imagesearch/pexels"
	"thingstodo/internal/core/port"
	"thingstodo/internal/core/service"
	"thingstodo/pkg/config"
	"thingstodo/pkg/logger"
)

type Container struct {
	TodoRepo    port.TodoRepository
	TodoService port.TodoService
	Images      port.ImageSearcher

	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler

	closers []func()
}

// NewContainer opens the configured store and wires the todo stack on top.
func NewContainer(ctx context.Context, cfg *config.AppConfig, probe port.Telemetry, log *logger.LokiLogger) (*Container, error) {
	container := &Container{}

	if cfg.UsePostgres() {
		db, err := postgres.NewDB(ctx, cfg.DatabaseURL)

		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		container.closers = append(container.closers, db.Close)
		container.TodoRepo = pgrepository.NewTodoRepository(db, probe)
	} else {
		db, err := sqlite.NewDB(sqlite.Options{Path: cfg.DatabasePath, LogQueries: cfg.LogQueries})

		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}

		container.closers = append(container.closers, func() { db.Close() })
		container.TodoRepo = sqliterepository.NewTodoRepository(db, probe)
	}

	slog.Info("Store ready", "driver", cfg.DatabaseDriver)

	container.Images = pexels.NewClient(pexels.Options{
		APIKey:  cfg.PexelsAPIKey,
		BaseURL: cfg.PexelsBaseURL,
		Timeout: cfg.ImageSearchTimeout,
	}, probe, nil)

	container.TodoService = service.NewTodoService(container.TodoRepo, container.Images, probe)
	container.TodoHandler = handler.NewTodoHandler(container.TodoService, log)
	container.HealthHandler = handler.NewHealthHandler(container.TodoRepo)

	return container, nil
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
