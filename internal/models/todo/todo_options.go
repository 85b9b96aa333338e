package todo

import (
	"time"
)

// TodoOption changes a single field of a todo copy.
type TodoOption func(*Todo)

func WithTitle(title string) TodoOption {
	return func(t *Todo) {
		t.Title = title
	}
}

func WithDescription(description string) TodoOption {
	return func(t *Todo) {
		t.Description = &description
	}
}

func WithPriority(priority Priority) TodoOption {
	return func(t *Todo) {
		t.Priority = priority
	}
}

func WithDueDate(dueDate time.Time) TodoOption {
	return func(t *Todo) {
		t.DueDate = &dueDate
	}
}

// WithCompleted keeps CompletedAt in step with IsCompleted.
func WithCompleted(completed bool, now time.Time) TodoOption {
	return func(t *Todo) {
		t.IsCompleted = completed
		if completed {
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	}
}

// Options converts the present fields of an update into options.
func (in UpdateInput) Options(now time.Time) []TodoOption {
	opts := []TodoOption{}
	if in.Title != nil {
		opts = append(opts, WithTitle(*in.Title))
	}
	if in.Description != nil {
		opts = append(opts, WithDescription(*in.Description))
	}
	if in.IsCompleted != nil {
		opts = append(opts, WithCompleted(*in.IsCompleted, now))
	}
	if in.Priority != nil {
		opts = append(opts, WithPriority(*in.Priority))
	}
	if in.DueDate != nil {
		opts = append(opts, WithDueDate(*in.DueDate))
	}
	return opts
}

// Merge returns a new todo: old with every present field of in applied and
// UpdatedAt set to now. old is not modified.
func Merge(old Todo, in UpdateInput, now time.Time) Todo {
	merged := old
	for _, opt := range in.Options(now) {
		opt(&merged)
	}
	merged.UpdatedAt = now
	return merged
}
