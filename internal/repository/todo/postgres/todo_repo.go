package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/migrations"
	"todoTracker/internal/models/todo"
	repo "todoTracker/internal/repository"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const todoColumns = `id, title, description, is_completed, priority,
	created_at, updated_at, completed_at, due_date`

const slowQuery = 100 * time.Millisecond

type Config struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: failed to parse database config", err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: PostgreSQL connections closed")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Migrate applies the embedded schema; an up-to-date schema is not an error.
func (s *Storage) Migrate(ctx context.Context) error {
	m, closeDB, err := s.migrator(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: migrations failed", err)
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("Repository: schema is up to date")
	return nil
}

func (s *Storage) Down(ctx context.Context) error {
	m, closeDB, err := s.migrator(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: rollback failed", err)
		return fmt.Errorf("rollback migrations: %w", err)
	}
	logger.Info("Repository: migrations rolled back")
	return nil
}

func (s *Storage) migrator(ctx context.Context) (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("open migrations: %w", err)
	}

	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations connection: %w", err)
	}

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations instance: %w", err)
	}

	return m, func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Repository: closing migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
		db.Close()
	}, nil
}

func (s *Storage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	start := time.Now()

	query := `INSERT INTO todos
				(title, description, is_completed, priority, created_at, updated_at, completed_at, due_date)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id`

	err := s.pool.QueryRow(ctx, query,
		todoToCreate.Title,
		todoToCreate.Description,
		todoToCreate.IsCompleted,
		todoToCreate.Priority,
		todoToCreate.CreatedAt,
		todoToCreate.UpdatedAt,
		todoToCreate.CompletedAt,
		todoToCreate.DueDate,
	).Scan(&todoToCreate.ID)
	if err != nil {
		logger.Error("Repository: failed to insert todo", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("insert todo: %w", err)
	}

	warnIfSlow("create", start)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*todo.Todo, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to get todo", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("get todo: %w", err)
	}

	found, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[todo.Todo])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to scan todo", err, zap.Int64("todo_id", id))
		return nil, fmt.Errorf("scan todo: %w", err)
	}

	warnIfSlow("get", start)
	found.ToUTC()
	return found, nil
}

func (s *Storage) Update(ctx context.Context, todoToUpdate *todo.Todo) error {
	start := time.Now()

	query := `UPDATE todos
			SET title = $1,
				description = $2,
				is_completed = $3,
				priority = $4,
				updated_at = $5,
				completed_at = $6,
				due_date = $7
			WHERE id = $8`

	tag, err := s.pool.Exec(ctx, query,
		todoToUpdate.Title,
		todoToUpdate.Description,
		todoToUpdate.IsCompleted,
		todoToUpdate.Priority,
		todoToUpdate.UpdatedAt,
		todoToUpdate.CompletedAt,
		todoToUpdate.DueDate,
		todoToUpdate.ID,
	)
	if err != nil {
		logger.Error("Repository: failed to update todo", err, zap.Int64("todo_id", todoToUpdate.ID))
		return fmt.Errorf("update todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("update", start)
	return nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete todo", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("delete", start)
	return nil
}

// List counts and reads the page inside one read-only repeatable-read
// transaction so the total matches the page.
func (s *Storage) List(ctx context.Context, filter todo.Filter, page todo.Page) ([]*todo.Todo, int, error) {
	start := time.Now()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		logger.Error("Repository: failed to begin transaction", err)
		return nil, 0, fmt.Errorf("begin list: %w", err)
	}
	defer tx.Rollback(ctx)

	where, args := buildWhere(filter)

	var total int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM todos`+where, args...).Scan(&total); err != nil {
		logger.Error("Repository: failed to count todos", err, zap.Duration("ms", time.Since(start)))
		return nil, 0, fmt.Errorf("count todos: %w", err)
	}

	offset, ok := page.Offset()
	if !ok || offset >= total {
		return []*todo.Todo{}, total, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM todos%s
				ORDER BY created_at DESC, id DESC
				LIMIT $%d OFFSET $%d`, todoColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Size, offset)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: failed to list todos", err, zap.Duration("ms", time.Since(start)))
		return nil, 0, fmt.Errorf("list todos: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[todo.Todo])
	if err != nil {
		logger.Error("Repository: failed to scan todos", err)
		return nil, 0, fmt.Errorf("scan todos: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit list: %w", err)
	}

	for _, item := range items {
		item.ToUTC()
	}

	if time.Since(start) > slowQuery+time.Millisecond*time.Duration(len(items)) {
		logger.Warn("Repository: slow query", zap.String("op", "list"), zap.Duration("ms", time.Since(start)))
	}
	return items, total, nil
}

// Stats reads all three counters in a single statement.
func (s *Storage) Stats(ctx context.Context, now time.Time) (todo.Counts, error) {
	start := time.Now()

	query := `SELECT
				COUNT(*),
				COUNT(*) FILTER (WHERE is_completed),
				COUNT(*) FILTER (WHERE NOT is_completed AND due_date IS NOT NULL AND due_date < $1)
			FROM todos`

	var counts todo.Counts
	err := s.pool.QueryRow(ctx, query, now).Scan(&counts.Total, &counts.Completed, &counts.Overdue)
	if err != nil {
		logger.Error("Repository: failed to count stats", err, zap.Duration("ms", time.Since(start)))
		return todo.Counts{}, fmt.Errorf("stats: %w", err)
	}

	warnIfSlow("stats", start)
	return counts, nil
}

func buildWhere(filter todo.Filter) (string, []any) {
	conditions := []string{}
	args := []any{}

	if filter.IsCompleted != nil {
		args = append(args, *filter.IsCompleted)
		conditions = append(conditions, fmt.Sprintf("is_completed = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, fmt.Sprintf("LOWER(priority) = LOWER($%d)", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func warnIfSlow(op string, start time.Time) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: slow query", zap.String("op", op), zap.Duration("ms", time.Since(start)))
	}
}
