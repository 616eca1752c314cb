package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"thingstodo/internal/core/domain"
	"thingstodo/internal/core/model/request"
	"thingstodo/internal/core/port"
	tel "thingstodo/internal/core/telemetry"
)

type TodoService struct {
	repo      port.TodoRepository
	images    port.ImageSearcher
	telemetry port.Telemetry
	now       func() time.Time
}

type noImages struct{}

func (noImages) Search(ctx context.Context, title string) *domain.Image { return nil }

func NewTodoService(repo port.TodoRepository, images port.ImageSearcher, telemetry port.Telemetry) *TodoService {
	if images == nil {
		images = noImages{}
	}

	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoService{
		repo:      repo,
		images:    images,
		telemetry: telemetry,
		now:       time.Now,
	}
}

func (ts *TodoService) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "GetAll", nil)
	defer span.End()

	startTime := time.Now()

	todos, err := ts.repo.GetAll(ctx)

	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		ts.telemetry.RecordServiceOperation(ctx, "todo", "GetAll", time.Since(startTime), err)
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"todo.count": len(todos)})
	ts.telemetry.RecordServiceOperation(ctx, "todo", "GetAll", time.Since(startTime), nil)

	return todos, nil
}

// Create validates the request, looks up an image for the title and stores
// the todo. The image lookup cannot fail the creation.
func (ts *TodoService) Create(ctx context.Context, req request.CreateTodoRequest) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "Create", map[string]interface{}{
		"todo.has_due_date": req.DueDate != "",
	})
	defer span.End()

	startTime := time.Now()

	if err := domain.ValidateTitle(req.Title); err != nil {
		span.SetStatus("error", err.Error())
		return domain.Todo{}, err
	}

	dueDate, err := domain.ParseDueDate(req.DueDate)

	if err != nil {
		span.SetStatus("error", err.Error())
		slog.WarnContext(ctx, "Rejected due date", "due_date", req.DueDate)
		return domain.Todo{}, err
	}

	todo := domain.Todo{
		Title:     *req.Title,
		DueDate:   dueDate,
		CreatedAt: ts.now().UTC(),
	}

	todo.AttachImage(ts.images.Search(ctx, todo.Title))

	span.SetAttributes(map[string]interface{}{"todo.has_image": todo.HasImage()})

	saved, err := ts.repo.Create(ctx, todo)

	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		ts.telemetry.RecordServiceOperation(ctx, "todo", "Create", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	ts.telemetry.RecordServiceOperation(ctx, "todo", "Create", time.Since(startTime), nil)

	return saved, nil
}

func (ts *TodoService) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "todo", "DeleteByID", map[string]interface{}{
		"todo.id": id,
	})
	defer span.End()

	startTime := time.Now()

	err := ts.repo.DeleteByID(ctx, id)

	if errors.Is(err, domain.ErrTodoNotFound) {
		span.SetStatus("error", err.Error())
		return err
	}

	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		ts.telemetry.RecordServiceOperation(ctx, "todo", "DeleteByID", time.Since(startTime), err)
		return err
	}

	ts.telemetry.RecordServiceOperation(ctx, "todo", "DeleteByID", time.Since(startTime), nil)

	return nil
}
