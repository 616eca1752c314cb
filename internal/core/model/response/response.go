package response

import (
	"time"

	"thingstodo/internal/core/domain"
)

type TodoResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"createdAt"`
	DueDate   *time.Time `json:"dueDate"`
	ImageURL  *string    `json:"imageUrl"`
	ImageAlt  *string    `json:"imageAlt"`
}

func NewTodoResponse(todo domain.Todo) TodoResponse {
	return TodoResponse{
		ID:        todo.ID,
		Title:     todo.Title,
		CreatedAt: todo.CreatedAt,
		DueDate:   todo.DueDate,
		ImageURL:  todo.ImageURL,
		ImageAlt:  todo.ImageAlt,
	}
}

func NewTodoListResponse(todos []domain.Todo) []TodoResponse {
	data := make([]TodoResponse, 0, len(todos))

	for _, todo := range todos {
		data = append(data, NewTodoResponse(todo))
	}

	return data
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details []ValidationError `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
