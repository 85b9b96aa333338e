package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"
	repo "todoTracker/internal/repository"
)

// TodoStorage keeps todos by value so callers never share state with the store.
type TodoStorage struct {
	storage map[int64]todo.Todo
	mtx     *sync.RWMutex
	lastID  int64
}

func NewTodoStorage() *TodoStorage {
	return &TodoStorage{
		storage: make(map[int64]todo.Todo),
		mtx:     &sync.RWMutex{},
	}
}

func (s *TodoStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: in-memory storage is healthy")
	return nil
}

func (s *TodoStorage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.lastID++
	todoToCreate.ID = s.lastID
	s.storage[todoToCreate.ID] = *todoToCreate
	return nil
}

func (s *TodoStorage) GetByID(ctx context.Context, id int64) (*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &stored, nil
}

func (s *TodoStorage) Update(ctx context.Context, todoToUpdate *todo.Todo) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[todoToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}
	s.storage[todoToUpdate.ID] = *todoToUpdate
	return nil
}

func (s *TodoStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.storage, id)
	return nil
}

// List filters, orders by created_at desc then id desc, and cuts one page.
func (s *TodoStorage) List(ctx context.Context, filter todo.Filter, page todo.Page) ([]*todo.Todo, int, error) {
	s.mtx.RLock()
	matched := make([]todo.Todo, 0, len(s.storage))
	for _, t := range s.storage {
		if filter.IsCompleted != nil && t.IsCompleted != *filter.IsCompleted {
			continue
		}
		if filter.Priority != "" && !strings.EqualFold(string(t.Priority), filter.Priority) {
			continue
		}
		matched = append(matched, t)
	}
	s.mtx.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	res := []*todo.Todo{}

	offset, ok := page.Offset()
	if !ok || offset >= total {
		return res, total, nil
	}

	end := total
	if page.Size < total-offset {
		end = offset + page.Size
	}
	for i := offset; i < end; i++ {
		res = append(res, &matched[i])
	}
	return res, total, nil
}

func (s *TodoStorage) Stats(ctx context.Context, now time.Time) (todo.Counts, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	counts := todo.Counts{Total: len(s.storage)}
	for _, t := range s.storage {
		if t.IsCompleted {
			counts.Completed++
		}
		if t.IsOverdue(now) {
			counts.Overdue++
		}
	}
	return counts, nil
}
