package handler

import (
	"errors"
	"net/http"
	"strconv"

	. "thingstodo/internal/adapter/http/helper"
	. "thingstodo/internal/adapter/http/validation"
	"thingstodo/internal/core/domain"
	"thingstodo/internal/core/model/request"
	"thingstodo/internal/core/model/response"
	"thingstodo/internal/core/port"
	"thingstodo/pkg/logger"
	. "thingstodo/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type TodoHandler struct {
	svc    port.TodoService
	Logger *logger.LokiLogger
}

func NewTodoHandler(todoService port.TodoService, log *logger.LokiLogger) *TodoHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &TodoHandler{
		svc:    todoService,
		Logger: log,
	}
}

func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetAllTodos", []attribute.KeyValue{
		attribute.String("handler.operation", "GetAllTodos"),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	defer span.End()

	todos, err := t.svc.GetAll(ctx)

	if err != nil {
		AddSpanError(span, err)
		logger.LogError(ctx, t.Logger, err, "Failed to get todos")

		SendInternalError(c, "Error fetching todos")
		return
	}

	span.SetAttributes(
		attribute.Int("http.status_code", http.StatusOK),
		attribute.Int("todo.count", len(todos)),
	)

	c.JSON(http.StatusOK, response.NewTodoListResponse(todos))
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.CreateTodo", []attribute.KeyValue{
		attribute.String("handler.operation", "CreateTodo"),
		attribute.String("handler.method", c.Request.Method),
	})

	defer span.End()

	var params request.CreateTodoRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		AddSpanError(span, err)
		t.Logger.WarnWithTrace(ctx, "Invalid create todo payload", zap.Error(err))

		SendBadRequestError(c, "Invalid request body")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, "Title is required", err)
		return
	}

	todo, err := t.svc.Create(ctx, params)

	switch {
	case errors.Is(err, domain.ErrTitleRequired):
		SendError(c, http.StatusBadRequest, "Title is required", "VALIDATION_ERROR",
			response.ValidationError{Field: "title", Message: "Title is required"})
		return
	case errors.Is(err, domain.ErrInvalidDueDate):
		SendError(c, http.StatusBadRequest, "Invalid due date", "VALIDATION_ERROR",
			response.ValidationError{Field: "dueDate", Message: "Invalid due date"})
		return
	case err != nil:
		AddSpanError(span, err)
		logger.LogError(ctx, t.Logger, err, "Failed to create todo")

		SendInternalError(c, "Error creating todo")
		return
	}

	span.SetAttributes(
		attribute.Int64("todo.id", todo.ID),
		attribute.Bool("todo.has_image", todo.HasImage()),
	)

	logger.LogInfo(ctx, t.Logger, "Todo created",
		zap.Int64("todo_id", todo.ID),
		zap.Bool("has_image", todo.HasImage()))

	c.JSON(http.StatusCreated, response.NewTodoResponse(todo))
}

func (t *TodoHandler) DeleteByID(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.DeleteByID", []attribute.KeyValue{
		attribute.String("handler.operation", "DeleteByID"),
		attribute.String("handler.method", c.Request.Method),
	})

	defer span.End()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		SendBadRequestError(c, "Invalid todo id")
		return
	}

	span.SetAttributes(attribute.Int64("todo.id", id))

	err = t.svc.DeleteByID(ctx, id)

	if errors.Is(err, domain.ErrTodoNotFound) {
		SendNotFoundError(c, "Todo not found")
		return
	}

	if err != nil {
		AddSpanError(span, err)
		logger.LogError(ctx, t.Logger, err, "Failed to delete todo", zap.Int64("todo_id", id))

		SendInternalError(c, "Error deleting todo")
		return
	}

	SendMessage(c, http.StatusOK, "Todo deleted successfully")
}
