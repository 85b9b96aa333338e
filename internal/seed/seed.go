// Package seed fills an empty store with the example todos from seed.yml.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yml
var defaultSeed []byte

// Store is the part of the repository seeding needs.
type Store interface {
	Create(ctx context.Context, t *todo.Todo) error
	List(ctx context.Context, filter todo.Filter, page todo.Page) ([]*todo.Todo, int, error)
}

type entry struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Priority    todo.Priority `yaml:"priority"`
	Completed   bool          `yaml:"completed"`
	CreatedAgo  time.Duration `yaml:"created_ago"`
}

type file struct {
	Todos []entry `yaml:"todos"`
}

// Todos decodes the embedded seed set relative to now.
func Todos(now time.Time) ([]*todo.Todo, error) {
	return parse(defaultSeed, now)
}

func parse(raw []byte, now time.Time) ([]*todo.Todo, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	now = now.UTC().Truncate(time.Microsecond)
	todos := make([]*todo.Todo, 0, len(f.Todos))
	for i, e := range f.Todos {
		description := e.Description
		in := todo.CreateInput{Title: e.Title, Description: &description, Priority: e.Priority}
		if violations := todo.ValidateCreate(in); len(violations) > 0 {
			return nil, fmt.Errorf("seed entry %d: %w", i, violations)
		}

		t := &todo.Todo{
			Title:       e.Title,
			Description: &description,
			Priority:    e.Priority,
			CreatedAt:   now.Add(-e.CreatedAgo),
			UpdatedAt:   now,
		}
		if e.Completed {
			completedAt := now
			t.IsCompleted = true
			t.CompletedAt = &completedAt
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// Seed inserts the seed set only when the store holds no todos, so restarts
// against a persistent store do not duplicate it.
func Seed(ctx context.Context, store Store, now time.Time) error {
	_, total, err := store.List(ctx, todo.Filter{}, todo.Page{Number: 1, Size: 1})
	if err != nil {
		return fmt.Errorf("check store: %w", err)
	}
	if total > 0 {
		logger.Info("Seed: store already has data, skipping", zap.Int("todos", total))
		return nil
	}

	todos, err := Todos(now)
	if err != nil {
		return err
	}

	for _, t := range todos {
		if err := store.Create(ctx, t); err != nil {
			return fmt.Errorf("insert seed %q: %w", t.Title, err)
		}
	}

	logger.Info("Seed: example todos inserted", zap.Int("todos", len(todos)))
	return nil
}
