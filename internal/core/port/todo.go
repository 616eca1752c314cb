package port

import (
	"context"

	"thingstodo/internal/core/domain"
	"thingstodo/internal/core/model/request"
)

type TodoRepository interface {
	GetAll(ctx context.Context) ([]domain.Todo, error)
	GetByID(ctx context.Context, id int64) (domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	DeleteByID(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type TodoService interface {
	GetAll(ctx context.Context) ([]domain.Todo, error)
	Create(ctx context.Context, req request.CreateTodoRequest) (domain.Todo, error)
	DeleteByID(ctx context.Context, id int64) error
}

// ImageSearcher finds one representative photo for a title. It never fails:
// a nil image means nothing usable was found.
type ImageSearcher interface {
	Search(ctx context.Context, title string) *domain.Image
}
