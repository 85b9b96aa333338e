package handlers

import (
	"context"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/service"
)

type Service interface {
	HealthCheck(ctx context.Context) error
	ListTodos(ctx context.Context, filter todo.Filter, page todo.Page) (*service.ListResult, error)
	GetTodoByID(ctx context.Context, id int64) (*todo.Todo, error)
	CreateTodo(ctx context.Context, in todo.CreateInput) (*todo.Todo, error)
	UpdateTodo(ctx context.Context, id int64, in todo.UpdateInput) error
	DeleteTodo(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (*todo.Stats, error)
}

var _ Service = (*service.TodoService)(nil)
