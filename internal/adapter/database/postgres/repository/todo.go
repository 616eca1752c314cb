package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"thingstodo/internal/adapter/database/postgres"
	"thingstodo/internal/core/domain"
	"thingstodo/internal/core/port"
	tel "thingstodo/internal/core/telemetry"
	"thingstodo/pkg/tracing"
)

const todoColumns = "id, title, created_at, due_date, image_url, image_alt"

type TodoRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *postgres.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{db: db, telemetry: telemetry}
}

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var todo domain.Todo

	err := row.Scan(&todo.ID, &todo.Title, &todo.CreatedAt, &todo.DueDate, &todo.ImageURL, &todo.ImageAlt)

	if err != nil {
		return domain.Todo{}, err
	}

	todo.CreatedAt = todo.CreatedAt.UTC()

	if todo.DueDate != nil {
		due := todo.DueDate.UTC()
		todo.DueDate = &due
	}

	return todo, nil
}

func (tr *TodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.GetAll", []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "SELECT"),
	})

	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns).
		From("todos").
		OrderBy("created_at DESC", "id DESC").
		ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := tr.db.Query(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.ErrorContext(ctx, "Error fetching todos", "error", err)
		tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), err)
		return nil, err
	}

	defer rows.Close()

	data := []domain.Todo{}

	for rows.Next() {
		todo, err := scanTodo(rows)

		if err != nil {
			tracing.AddSpanError(span, err)
			tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), err)
			return nil, err
		}

		data = append(data, todo)
	}

	if err := rows.Err(); err != nil {
		tracing.AddSpanError(span, err)
		tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(data)))
	tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), nil)

	return data, nil
}

func (tr *TodoRepository) GetByID(ctx context.Context, id int64) (domain.Todo, error) {
	query, args, err := tr.db.QueryBuilder.Select(todoColumns).
		From("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	var todo domain.Todo

	err = tracing.DatabaseSpanWrapper(ctx, "postgresql", "todos", "SELECT", query, func(ctx context.Context) error {
		todo, err = scanTodo(tr.db.QueryRow(ctx, query, args...))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Todo{}, fmt.Errorf("todo %d: %w", id, domain.ErrTodoNotFound)
	}

	return todo, err
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.Create", []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "INSERT"),
	})

	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		SetMap(todo.ToMap()).
		Suffix("RETURNING " + todoColumns).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	tracing.AddDatabaseAttributes(span, "todos", "INSERT", query)

	saved, err := scanTodo(tr.db.QueryRow(ctx, query, args...))

	if err != nil {
		tracing.AddSpanError(span, err)
		tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	tracing.AddSpanEvent(span, "todo.created", []attribute.KeyValue{attribute.Int64("todo.id", saved.ID)})

	tr.telemetry.RecordBusinessEvent(ctx, "created", "todo", strconv.FormatInt(saved.ID, 10), map[string]interface{}{
		"has_image":    saved.HasImage(),
		"has_due_date": saved.DueDate != nil,
	})
	tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), nil)

	return saved, nil
}

func (tr *TodoRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.DeleteByID", []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "DELETE"),
		attribute.Int64("todo.id", id),
	})

	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return err
	}

	tag, err := tr.db.Exec(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		tr.telemetry.RecordRepositoryOperation(ctx, "DeleteByID", "todo", time.Since(startTime), err)
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("todo %d: %w", id, domain.ErrTodoNotFound)
	}

	tr.telemetry.RecordBusinessEvent(ctx, "deleted", "todo", strconv.FormatInt(id, 10), nil)
	tr.telemetry.RecordRepositoryOperation(ctx, "DeleteByID", "todo", time.Since(startTime), nil)

	return nil
}

func (tr *TodoRepository) Ping(ctx context.Context) error {
	return tr.db.Pool.Ping(ctx)
}
