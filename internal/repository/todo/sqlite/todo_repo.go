package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"
	repo "todoTracker/internal/repository"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// record is the table row. Timestamps are owned by the service, so gorm
// must not fill them in.
type record struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"size:200;not null"`
	Description *string    `gorm:"size:1000"`
	IsCompleted bool       `gorm:"not null;default:false;index"`
	Priority    string     `gorm:"size:50;not null"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime:false;index"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime:false"`
	CompletedAt *time.Time
	DueDate     *time.Time `gorm:"index"`
}

func (record) TableName() string {
	return "todos"
}

func toRecord(t *todo.Todo) record {
	rec := record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	if t.CompletedAt != nil {
		completedAt := t.CompletedAt.UTC()
		rec.CompletedAt = &completedAt
	}
	if t.DueDate != nil {
		dueDate := t.DueDate.UTC()
		rec.DueDate = &dueDate
	}
	return rec
}

func (r record) toTodo() *todo.Todo {
	t := &todo.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
		Priority:    todo.Priority(r.Priority),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CompletedAt: r.CompletedAt,
		DueDate:     r.DueDate,
	}
	t.ToUTC()
	return t
}

// Storage keeps todos in a SQLite file (or ":memory:") through gorm.
type Storage struct {
	db *gorm.DB
}

func New(path string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("Repository: failed to open sqlite database", err, zap.String("path", path))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// every connection to ":memory:" is a separate database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&record{}); err != nil {
		sqlDB.Close()
		logger.Error("Repository: sqlite migration failed", err)
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	logger.Info("Repository: connected to SQLite", zap.String("path", path))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	logger.Info("Repository: SQLite connection closed")
	return sqlDB.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	rec := toRecord(todoToCreate)
	rec.ID = 0

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		logger.Error("Repository: failed to insert todo", err)
		return fmt.Errorf("insert todo: %w", err)
	}

	todoToCreate.ID = rec.ID
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*todo.Todo, error) {
	var rec record
	if err := s.db.WithContext(ctx).Take(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get todo", err, zap.Int64("todo_id", id))
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return rec.toTodo(), nil
}

func (s *Storage) Update(ctx context.Context, todoToUpdate *todo.Todo) error {
	rec := toRecord(todoToUpdate)

	result := s.db.WithContext(ctx).
		Model(&record{}).
		Where("id = ?", rec.ID).
		Select("title", "description", "is_completed", "priority", "updated_at", "completed_at", "due_date").
		Updates(&rec)
	if err := result.Error; err != nil {
		logger.Error("Repository: failed to update todo", err, zap.Int64("todo_id", rec.ID))
		return fmt.Errorf("update todo: %w", err)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&record{}, "id = ?", id)
	if err := result.Error; err != nil {
		logger.Error("Repository: failed to delete todo", err, zap.Int64("todo_id", id))
		return fmt.Errorf("delete todo: %w", err)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) List(ctx context.Context, filter todo.Filter, page todo.Page) ([]*todo.Todo, int, error) {
	var (
		recs  []record
		total int64
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&record{}).Scopes(byFilter(filter)).Count(&total).Error; err != nil {
			return fmt.Errorf("count todos: %w", err)
		}

		offset, ok := page.Offset()
		if !ok || int64(offset) >= total {
			return nil
		}

		return tx.Scopes(byFilter(filter)).
			Order("created_at DESC").
			Order("id DESC").
			Limit(page.Size).
			Offset(offset).
			Find(&recs).Error
	})
	if err != nil {
		logger.Error("Repository: failed to list todos", err)
		return nil, 0, fmt.Errorf("list todos: %w", err)
	}

	items := make([]*todo.Todo, 0, len(recs))
	for _, rec := range recs {
		items = append(items, rec.toTodo())
	}
	return items, int(total), nil
}

func (s *Storage) Stats(ctx context.Context, now time.Time) (todo.Counts, error) {
	var row struct {
		Total     int
		Completed int
		Overdue   int
	}

	err := s.db.WithContext(ctx).Raw(`SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN NOT is_completed AND due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue
		FROM todos`, now.UTC()).Scan(&row).Error
	if err != nil {
		logger.Error("Repository: failed to count stats", err)
		return todo.Counts{}, fmt.Errorf("stats: %w", err)
	}

	return todo.Counts{Total: row.Total, Completed: row.Completed, Overdue: row.Overdue}, nil
}

func byFilter(filter todo.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.IsCompleted != nil {
			db = db.Where("is_completed = ?", *filter.IsCompleted)
		}
		if filter.Priority != "" {
			db = db.Where("LOWER(priority) = LOWER(?)", filter.Priority)
		}
		return db
	}
}
