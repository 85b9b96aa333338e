package service

import (
	"context"
	"time"
	"todoTracker/internal/models/todo"
)

// TodoRepository is the only way the service reaches the store.
// Missing ids are reported as repository.ErrNotFound.
type TodoRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, t *todo.Todo) error
	GetByID(ctx context.Context, id int64) (*todo.Todo, error)
	Update(ctx context.Context, t *todo.Todo) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter todo.Filter, page todo.Page) ([]*todo.Todo, int, error)
	Stats(ctx context.Context, now time.Time) (todo.Counts, error)
}
