package app

import (
	"net/http"
	"todoTracker/internal/handlers"
	"todoTracker/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter serves the todo routes under both /todos and /api/todos.
func NewRouter(h *handlers.TodoHandler, rpm int) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Location", "X-Request-ID", "X-Total-Count", "X-Page", "X-Page-Size"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", middleware.MetricsHandler())

	// one limiter shared by both mounts
	limit := middleware.RateLimit(rpm)

	todoRoutes := func(r chi.Router) {
		r.Use(limit)

		r.Get("/", h.ListTodos)     // GET /todos
		r.Post("/", h.CreateTodo)   // POST /todos
		r.Get("/stats", h.GetStats) // GET /todos/stats

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTodoByID)       // GET /todos/{id}
			r.Put("/", h.UpdateTodoByID)    // PUT /todos/{id}
			r.Delete("/", h.DeleteTodoByID) // DELETE /todos/{id}
		})
	}

	r.Route("/todos", todoRoutes)
	r.Route("/api/todos", todoRoutes)

	return r
}
