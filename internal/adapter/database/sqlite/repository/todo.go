package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"thingstodo/internal/adapter/database/sqlite"
	"thingstodo/internal/core/domain"
	"thingstodo/internal/core/port"
	tel "thingstodo/internal/core/telemetry"
)

var todoColumns = []string{"id", "title", "created_at", "due_date", "image_url", "image_alt"}

type TodoRepository struct {
	db        *sqlite.DB
	scanner   *sqlite.Scanner
	telemetry port.Telemetry
}

func NewTodoRepository(db *sqlite.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		scanner:   sqlite.NewScanner(),
		telemetry: telemetry,
	}
}

func (tr *TodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetAll", "todo", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "todos",
		"db.operation": "SELECT",
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		OrderBy("created_at DESC", "id DESC").
		ToSql()

	if err != nil {
		tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), err)
		return nil, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "GetAll", "todo", query, args)

	rows, err := tr.db.QueryContext(ctx, query, args...)
	if err != nil {
		tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), err)
		return nil, err
	}
	defer rows.Close()

	todos := []domain.Todo{}

	if err := tr.scanner.ScanRowsToSlice(rows, &todos); err != nil {
		tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), err)
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"db.rows_returned": len(todos)})
	tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), nil)

	return todos, nil
}

func (tr *TodoRepository) GetByID(ctx context.Context, id int64) (domain.Todo, error) {
	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return domain.Todo{}, err
	}

	defer rows.Close()

	var todo domain.Todo
	err = tr.scanner.ScanRowToStruct(rows, &todo)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, fmt.Errorf("todo %d: %w", id, domain.ErrTodoNotFound)
	}

	if err != nil {
		slog.ErrorContext(ctx, "Error getting todo by id", "id", id, "error", err)
		return domain.Todo{}, err
	}

	return todo, nil
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "todo", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "todos",
		"db.operation": "INSERT",
		"todo.title":   todo.Title,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		SetMap(todo.ToMap()).
		ToSql()

	if err != nil {
		tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", "todo", query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)
	if err != nil {
		tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	saved, err := tr.GetByID(ctx, id)
	if err != nil {
		tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	tr.telemetry.RecordBusinessEvent(ctx, "created", "todo", strconv.FormatInt(saved.ID, 10), map[string]interface{}{
		"has_image":    saved.HasImage(),
		"has_due_date": saved.DueDate != nil,
	})

	tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), nil)

	return saved, nil
}

func (tr *TodoRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "DeleteByID", "todo", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "todos",
		"db.operation": "DELETE",
		"todo.id":      id,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		tr.telemetry.RecordRepositoryOperation(ctx, "DeleteByID", "todo", time.Since(startTime), err)
		return err
	}

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		tr.telemetry.RecordRepositoryOperation(ctx, "DeleteByID", "todo", time.Since(startTime), err)
		return err
	}

	rowsAffected, _ := result.RowsAffected()

	if rowsAffected == 0 {
		return fmt.Errorf("todo %d: %w", id, domain.ErrTodoNotFound)
	}

	tr.telemetry.RecordBusinessEvent(ctx, "deleted", "todo", strconv.FormatInt(id, 10), nil)
	tr.telemetry.RecordRepositoryOperation(ctx, "DeleteByID", "todo", time.Since(startTime), nil)

	return nil
}

func (tr *TodoRepository) Ping(ctx context.Context) error {
	return tr.db.PingContext(ctx)
}
