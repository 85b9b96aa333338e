package service

import (
	"context"
	"errors"
	"math"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"
	rep "todoTracker/internal/repository"

	"go.uber.org/zap"
)

// ListResult is one page of todos plus the size of the whole filtered set.
type ListResult struct {
	Items []*todo.Todo
	Total int
	Page  todo.Page
}

type TodoService struct {
	repo  TodoRepository
	clock func() time.Time
}

func NewTodoService(repo TodoRepository, opts ...Option) *TodoService {
	s := &TodoService{
		repo:  repo,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// now is UTC with microsecond precision, the finest the SQL stores keep,
// so a returned todo equals what a later read gives back.
func (s *TodoService) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

func normalize(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := t.UTC().Truncate(time.Microsecond)
	return &n
}

func (s *TodoService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return NewStoreUnavailable("health check", err)
	}
	return nil
}

// ListTodos clamps page numbers below 1 to 1 and rejects page sizes below 1.
func (s *TodoService) ListTodos(ctx context.Context, filter todo.Filter, page todo.Page) (*ListResult, error) {
	if page.Size < 1 {
		return nil, NewValidationFailed(todo.Violations{
			{Field: "pageSize", Reason: "must be at least 1"},
		})
	}
	if page.Number < 1 {
		page.Number = 1
	}

	items, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		logger.Error("Service: failed to list todos", err)
		return nil, NewStoreUnavailable("list todos", err)
	}

	return &ListResult{Items: items, Total: total, Page: page}, nil
}

func (s *TodoService) GetTodoByID(ctx context.Context, id int64) (*todo.Todo, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, "get todo", err)
	}
	return found, nil
}

func (s *TodoService) CreateTodo(ctx context.Context, in todo.CreateInput) (*todo.Todo, error) {
	if violations := todo.ValidateCreate(in); len(violations) > 0 {
		logger.Info("Service: todo rejected", zap.Strings("fields", violations.Fields()))
		return nil, NewValidationFailed(violations)
	}

	now := s.now()
	created := &todo.Todo{
		Title:       in.Title,
		Description: in.Description,
		IsCompleted: false,
		Priority:    in.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     normalize(in.DueDate),
	}

	if err := s.repo.Create(ctx, created); err != nil {
		logger.Error("Service: failed to create todo", err)
		return nil, NewStoreUnavailable("create todo", err)
	}

	logger.Info("Service: todo created", zap.Int64("todo_id", created.ID))
	return created, nil
}

// UpdateTodo looks the todo up before validating, so a missing id wins over
// a bad payload.
func (s *TodoService) UpdateTodo(ctx context.Context, id int64, in todo.UpdateInput) error {
	old, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.lookupError(id, "get todo", err)
	}

	if violations := todo.ValidateUpdate(in); len(violations) > 0 {
		logger.Info("Service: update rejected", zap.Int64("todo_id", id), zap.Strings("fields", violations.Fields()))
		return NewValidationFailed(violations)
	}

	now := s.now()
	if now.Before(old.CreatedAt) {
		now = old.CreatedAt
	}
	in.DueDate = normalize(in.DueDate)

	merged := todo.Merge(*old, in, now)
	if err := s.repo.Update(ctx, &merged); err != nil {
		return s.lookupError(id, "update todo", err)
	}
	return nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.lookupError(id, "delete todo", err)
	}
	logger.Info("Service: todo deleted", zap.Int64("todo_id", id))
	return nil
}

func (s *TodoService) GetStats(ctx context.Context) (*todo.Stats, error) {
	counts, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		logger.Error("Service: failed to count todos", err)
		return nil, NewStoreUnavailable("stats", err)
	}

	stats := &todo.Stats{
		Total:     counts.Total,
		Completed: counts.Completed,
		Pending:   counts.Total - counts.Completed,
		Overdue:   counts.Overdue,
	}
	if counts.Total > 0 {
		rate := float64(counts.Completed) / float64(counts.Total) * 100
		stats.CompletionRate = math.RoundToEven(rate*100) / 100
	}
	return stats, nil
}

func (s *TodoService) lookupError(id int64, op string, err error) error {
	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: todo not found", zap.Int64("todo_id", id))
		return NewNotFound(id)
	}
	logger.Error("Service: store call failed", err, zap.String("op", op), zap.Int64("todo_id", id))
	return NewStoreUnavailable(op, err)
}
