package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
	"todoTracker/internal/app"
	"todoTracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(repoType string) *config.Config {
	return &config.Config{
		Environment: "Testing",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Repository: config.RepositoryConfig{Type: repoType},
		Seed:       config.SeedConfig{Enabled: true},
	}
}

func TestApp_InitSeedsAndServes(t *testing.T) {
	tests := []struct {
		name   string
		config func(t *testing.T) *config.Config
	}{
		{
			name:   "inmemory",
			config: func(t *testing.T) *config.Config { return testConfig(config.RepositoryInMemory) },
		},
		{
			name: "sqlite",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(config.RepositorySQLite)
				cfg.SQLite.Path = filepath.Join(t.TempDir(), "todos.db")
				return cfg
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := app.New(tt.config(t))
			require.NoError(t, a.Init(context.Background()))
			t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

			w := httptest.NewRecorder()
			a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/todos", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "3", w.Header().Get("X-Total-Count"))
		})
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a := app.New(testConfig(config.RepositoryInMemory))
	require.NoError(t, a.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
