package seed

import (
	"context"
	"testing"
	"time"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/repository/todo/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestTodos(t *testing.T) {
	todos, err := Todos(now)
	require.NoError(t, err)
	require.Len(t, todos, 3)

	completed := 0
	for _, item := range todos {
		assert.True(t, item.Priority.Valid())
		assert.False(t, item.UpdatedAt.Before(item.CreatedAt))
		assert.Equal(t, item.IsCompleted, item.CompletedAt != nil)
		if item.IsCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, now.Add(-24*time.Hour), todos[2].CreatedAt)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "invalid priority", raw: "todos:\n  - title: x\n    priority: urgent\n"},
		{name: "empty title", raw: "todos:\n  - title: \"\"\n    priority: Low\n"},
		{name: "unknown field", raw: "todos:\n  - title: x\n    priority: Low\n    owner: bob\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse([]byte(tt.raw), now)
			assert.Error(t, err)
		})
	}
}

func TestSeed_OnlyIntoEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTodoStorage()

	require.NoError(t, Seed(ctx, store, now))
	require.NoError(t, Seed(ctx, store, now))

	items, total, err := store.List(ctx, todo.Filter{}, todo.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	// the completed one was created a day earlier, so it sorts last
	assert.Equal(t, "Write unit tests", items[2].Title)
}
