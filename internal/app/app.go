package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"todoTracker/internal/config"
	"todoTracker/internal/handlers"
	"todoTracker/internal/logger"
	"todoTracker/internal/repository/todo/inmemory"
	"todoTracker/internal/repository/todo/postgres"
	"todoTracker/internal/repository/todo/sqlite"
	"todoTracker/internal/seed"
	"todoTracker/internal/service"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     http.Handler
	repository service.TodoRepository
	service    handlers.Service
	shutdowns  []func(context.Context) error // run in reverse order
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(context.Context) error, 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.onShutdown(func(context.Context) error {
		logger.Info("App: flushing logs")
		logger.Sync()
		return nil
	})

	repo, err := a.initRepository(ctx)
	if err != nil {
		return err
	}
	a.repository = repo

	if a.config.Seed.Enabled {
		if err := seed.Seed(ctx, repo, time.Now()); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	a.service = service.NewTodoService(repo)
	handler := handlers.NewTodoHandler(a.service, a.config.Environment)
	a.router = NewRouter(handler, a.config.RateLimit.RPM)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "todo-tracker"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("App: initialized",
		zap.String("repository", a.config.Repository.Type),
		zap.String("environment", a.config.Environment))
	return nil
}

func (a *App) initRepository(ctx context.Context) (service.TodoRepository, error) {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		db := a.config.Database
		storage, err := postgres.New(ctx, postgres.Config{
			URL:             db.URL,
			MaxConns:        db.MaxConnections,
			MinConns:        db.MinConnections,
			MaxConnIdleTime: db.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.onShutdown(func(context.Context) error {
			storage.Close()
			return nil
		})

		if err := storage.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return storage, nil

	case config.RepositorySQLite:
		storage, err := sqlite.New(a.config.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.onShutdown(func(context.Context) error {
			return storage.Close()
		})
		return storage, nil

	default:
		return inmemory.NewTodoStorage(), nil
	}
}

func (a *App) onShutdown(fn func(context.Context) error) {
	a.shutdowns = append(a.shutdowns, fn)
}

// Handler exposes the instrumented root handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("App: server failed", err)
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	var err error
	if a.server != nil {
		err = multierr.Append(err, a.server.Shutdown(ctx))
	}
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i](ctx))
	}
	a.shutdowns = nil
	return err
}
