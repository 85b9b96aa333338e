package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/repository"
	"todoTracker/internal/repository/todo/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTodo(title string, priority todo.Priority, createdAt time.Time) *todo.Todo {
	return &todo.Todo{
		Title:     title,
		Priority:  priority,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestTodoStorage_HealthCheck(t *testing.T) {
	storage := inmemory.NewTodoStorage()
	assert.NoError(t, storage.HealthCheck(context.Background()))
}

func TestTodoStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	first := newTodo("First", todo.PriorityLow, base)
	second := newTodo("Second", todo.PriorityHigh, base)

	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Create(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	stored, err := storage.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, *second, *stored)
}

func TestTodoStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	created := newTodo("Original", todo.PriorityLow, base)
	require.NoError(t, storage.Create(ctx, created))

	created.Title = "changed after create"
	fetched, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	fetched.Title = "changed after get"

	again, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
}

func TestTodoStorage_GetByID_NotFound(t *testing.T) {
	storage := inmemory.NewTodoStorage()

	_, err := storage.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTodoStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	created := newTodo("Before", todo.PriorityLow, base)
	require.NoError(t, storage.Create(ctx, created))

	changed := *created
	changed.Title = "After"
	changed.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, storage.Update(ctx, &changed))

	stored, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", stored.Title)
	assert.Equal(t, base.Add(time.Hour), stored.UpdatedAt)

	missing := &todo.Todo{ID: 99, Title: "ghost"}
	assert.ErrorIs(t, storage.Update(ctx, missing), repository.ErrNotFound)

	_, err = storage.GetByID(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTodoStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	first := newTodo("First", todo.PriorityLow, base)
	second := newTodo("Second", todo.PriorityLow, base)
	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Create(ctx, second))

	require.NoError(t, storage.Delete(ctx, second.ID))
	assert.ErrorIs(t, storage.Delete(ctx, second.ID), repository.ErrNotFound)

	_, err := storage.GetByID(ctx, first.ID)
	require.NoError(t, err)

	// ids are not reused after a delete
	third := newTodo("Third", todo.PriorityLow, base)
	require.NoError(t, storage.Create(ctx, third))
	assert.Equal(t, int64(3), third.ID)
}

func TestTodoStorage_List(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	fixtures := []struct {
		title     string
		priority  todo.Priority
		completed bool
		createdAt time.Time
	}{
		{"oldest", todo.PriorityHigh, true, base.Add(-3 * time.Hour)},
		{"older", todo.PriorityLow, false, base.Add(-2 * time.Hour)},
		{"tie-a", todo.PriorityHigh, false, base},
		{"tie-b", todo.PriorityHigh, true, base},
		{"newest", todo.PriorityMedium, false, base.Add(time.Hour)},
	}
	for _, f := range fixtures {
		item := newTodo(f.title, f.priority, f.createdAt)
		item.IsCompleted = f.completed
		require.NoError(t, storage.Create(ctx, item))
	}

	completed := true

	tests := []struct {
		name           string
		filter         todo.Filter
		page           todo.Page
		expectedTitles []string
		expectedTotal  int
	}{
		{
			name:           "ordered by created_at desc then id desc",
			filter:         todo.Filter{},
			page:           todo.Page{Number: 1, Size: 10},
			expectedTitles: []string{"newest", "tie-b", "tie-a", "older", "oldest"},
			expectedTotal:  5,
		},
		{
			name:           "completed filter",
			filter:         todo.Filter{IsCompleted: &completed},
			page:           todo.Page{Number: 1, Size: 10},
			expectedTitles: []string{"tie-b", "oldest"},
			expectedTotal:  2,
		},
		{
			name:           "priority filter is case-insensitive",
			filter:         todo.Filter{Priority: "high"},
			page:           todo.Page{Number: 1, Size: 10},
			expectedTitles: []string{"tie-b", "tie-a", "oldest"},
			expectedTotal:  3,
		},
		{
			name:           "filters compose with AND",
			filter:         todo.Filter{IsCompleted: &completed, Priority: "HIGH"},
			page:           todo.Page{Number: 1, Size: 10},
			expectedTitles: []string{"tie-b", "oldest"},
			expectedTotal:  2,
		},
		{
			name:           "second page",
			filter:         todo.Filter{},
			page:           todo.Page{Number: 2, Size: 2},
			expectedTitles: []string{"tie-a", "older"},
			expectedTotal:  5,
		},
		{
			name:           "last partial page",
			filter:         todo.Filter{},
			page:           todo.Page{Number: 3, Size: 2},
			expectedTitles: []string{"oldest"},
			expectedTotal:  5,
		},
		{
			name:           "page past the end",
			filter:         todo.Filter{},
			page:           todo.Page{Number: 100, Size: 10},
			expectedTitles: []string{},
			expectedTotal:  5,
		},
		{
			name:           "unknown priority matches nothing",
			filter:         todo.Filter{Priority: "Urgent"},
			page:           todo.Page{Number: 1, Size: 10},
			expectedTitles: []string{},
			expectedTotal:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := storage.List(ctx, tt.filter, tt.page)
			require.NoError(t, err)

			titles := make([]string, 0, len(items))
			for _, item := range items {
				titles = append(titles, item.Title)
			}
			assert.Equal(t, tt.expectedTitles, titles)
			assert.Equal(t, tt.expectedTotal, total)
		})
	}
}

func TestTodoStorage_Stats(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()
	now := base

	counts, err := storage.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, todo.Counts{}, counts)

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	overdue := newTodo("overdue", todo.PriorityLow, base)
	overdue.DueDate = &past
	doneLate := newTodo("done late", todo.PriorityLow, base)
	doneLate.DueDate = &past
	doneLate.IsCompleted = true
	upcoming := newTodo("upcoming", todo.PriorityLow, base)
	upcoming.DueDate = &future
	noDue := newTodo("no due", todo.PriorityLow, base)

	for _, item := range []*todo.Todo{overdue, doneLate, upcoming, noDue} {
		require.NoError(t, storage.Create(ctx, item))
	}

	counts, err = storage.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, todo.Counts{Total: 4, Completed: 1, Overdue: 1}, counts)
}

func TestTodoStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()
	todoCount := 100
	goroutines := 10

	var wg sync.WaitGroup
	errs := make(chan error, todoCount)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < todoCount/goroutines; j++ {
				item := newTodo(fmt.Sprintf("Todo %d-%d", workerID, j), todo.PriorityMedium, time.Now())
				if err := storage.Create(ctx, item); err != nil {
					errs <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	items, total, err := storage.List(ctx, todo.Filter{}, todo.Page{Number: 1, Size: todoCount * 2})
	require.NoError(t, err)
	assert.Len(t, items, todoCount)
	assert.Equal(t, todoCount, total)

	seen := make(map[int64]bool, todoCount)
	for _, item := range items {
		assert.False(t, seen[item.ID], "duplicate id %d", item.ID)
		seen[item.ID] = true
	}
}
