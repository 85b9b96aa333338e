package dto

import (
	"time"
	"todoTracker/internal/models/todo"
)

// CreateTodoRequest leaves Priority as a pointer so a missing field can be
// told apart from an explicit "".
type CreateTodoRequest struct {
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Priority    *todo.Priority `json:"priority"`
	DueDate     *time.Time     `json:"dueDate"`
}

func (r CreateTodoRequest) ToInput() todo.CreateInput {
	priority := todo.PriorityMedium
	if r.Priority != nil {
		priority = *r.Priority
	}
	return todo.CreateInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    priority,
		DueDate:     r.DueDate,
	}
}

// UpdateTodoRequest: a missing or null field means "leave as is".
type UpdateTodoRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	IsCompleted *bool          `json:"isCompleted,omitempty"`
	Priority    *todo.Priority `json:"priority,omitempty"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
}

func (r UpdateTodoRequest) ToInput() todo.UpdateInput {
	return todo.UpdateInput{
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
	}
}

type TodoResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

func FromTodo(t *todo.Todo) TodoResponse {
	utc := *t
	utc.ToUTC()

	return TodoResponse{
		ID:          utc.ID,
		Title:       utc.Title,
		Description: utc.Description,
		IsCompleted: utc.IsCompleted,
		CreatedAt:   utc.CreatedAt,
		CompletedAt: utc.CompletedAt,
		UpdatedAt:   utc.UpdatedAt,
		Priority:    string(utc.Priority),
		DueDate:     utc.DueDate,
	}
}

func FromTodoList(todos []*todo.Todo) []TodoResponse {
	result := make([]TodoResponse, len(todos))
	for i, t := range todos {
		result[i] = FromTodo(t)
	}
	return result
}

type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Service     string    `json:"service"`
}
