package app_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"todoTracker/internal/app"
	"todoTracker/internal/handlers"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/repository/todo/inmemory"
	"todoTracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RouterTestSuite drives the full chi router over the in-memory store.
type RouterTestSuite struct {
	suite.Suite
	router http.Handler
}

func (s *RouterTestSuite) SetupTest() {
	svc := service.NewTodoService(inmemory.NewTodoStorage())
	s.router = app.NewRouter(handlers.NewTodoHandler(svc, "Testing"), 0)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) create(body string) dto.TodoResponse {
	w := s.do(http.MethodPost, "/todos", body)
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())

	var created dto.TodoResponse
	require.NoError(s.T(), json.NewDecoder(w.Body).Decode(&created))
	return created
}

func (s *RouterTestSuite) get(path string) (int, map[string]any) {
	w := s.do(http.MethodGet, path, "")
	var body map[string]any
	_ = json.NewDecoder(w.Body).Decode(&body)
	return w.Code, body
}

func (s *RouterTestSuite) TestLifecycle() {
	created := s.create(`{"title": "Buy milk", "priority": "Medium"}`)
	s.Greater(created.ID, int64(0))

	code, body := s.get("/todos/1")
	s.Equal(http.StatusOK, code)
	s.Equal(false, body["isCompleted"])
	s.Nil(body["completedAt"])

	w := s.do(http.MethodPut, "/todos/1", `{"isCompleted": true}`)
	s.Equal(http.StatusNoContent, w.Code)
	s.Empty(w.Body.String())

	code, body = s.get("/todos/1")
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["isCompleted"])
	s.NotNil(body["completedAt"])

	w = s.do(http.MethodDelete, "/todos/1", "")
	s.Equal(http.StatusNoContent, w.Code)

	code, body = s.get("/todos/1")
	s.Equal(http.StatusNotFound, code)
	s.Equal(service.CodeNotFound, body["error"])
}

func (s *RouterTestSuite) TestCreate_LocationAndPrefix() {
	w := s.do(http.MethodPost, "/api/todos", `{"title": "Prefixed"}`)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.Equal("/api/todos/1", w.Header().Get("Location"))

	code, body := s.get("/todos/1")
	s.Equal(http.StatusOK, code)
	s.Equal("Prefixed", body["title"])
	s.Equal("Medium", body["priority"])
}

func (s *RouterTestSuite) TestCreate_ValidationFailures() {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "lowercase priority", body: `{"title": "Buy milk", "priority": "high"}`, field: "priority"},
		{name: "empty title", body: `{"title": ""}`, field: "title"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/todos", tt.body)
			s.Equal(http.StatusBadRequest, w.Code)

			var response struct {
				Error   string `json:"error"`
				Details struct {
					Violations []struct {
						Field string `json:"field"`
					} `json:"violations"`
				} `json:"details"`
			}
			s.Require().NoError(json.NewDecoder(w.Body).Decode(&response))
			s.Equal(service.CodeValidation, response.Error)
			s.Require().Len(response.Details.Violations, 1)
			s.Equal(tt.field, response.Details.Violations[0].Field)
		})
	}

	w := s.do(http.MethodGet, "/todos", "")
	s.Equal("0", w.Header().Get("X-Total-Count"))
}

func (s *RouterTestSuite) TestList_FiltersAndPaging() {
	s.create(`{"title": "a", "priority": "High"}`)
	s.create(`{"title": "b", "priority": "High"}`)
	s.create(`{"title": "c", "priority": "Low"}`)
	s.Equal(http.StatusNoContent, s.do(http.MethodPut, "/todos/1", `{"isCompleted": true}`).Code)

	w := s.do(http.MethodGet, "/todos?isCompleted=true&priority=high", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var items []dto.TodoResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&items))
	s.Require().Len(items, 1)
	s.Equal("a", items[0].Title)
	s.Equal("1", w.Header().Get("X-Total-Count"))

	w = s.do(http.MethodGet, "/todos?page=1&pageSize=2", "")
	s.Require().Equal(http.StatusOK, w.Code)
	items = nil
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&items))
	s.Len(items, 2)
	s.Equal("3", w.Header().Get("X-Total-Count"))
	s.Equal("1", w.Header().Get("X-Page"))
	s.Equal("2", w.Header().Get("X-Page-Size"))

	w = s.do(http.MethodGet, "/todos?page=-3", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("1", w.Header().Get("X-Page"))

	w = s.do(http.MethodGet, "/todos?pageSize=0", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestStats() {
	code, body := s.get("/todos/stats")
	s.Equal(http.StatusOK, code)
	s.Equal(float64(0), body["totalTodos"])
	s.Equal(float64(0), body["completionRate"])

	s.create(`{"title": "a"}`)
	s.create(`{"title": "b", "dueDate": "2000-01-01T00:00:00Z"}`)
	s.Equal(http.StatusNoContent, s.do(http.MethodPut, "/todos/1", `{"isCompleted": true}`).Code)

	code, body = s.get("/todos/stats")
	s.Equal(http.StatusOK, code)
	s.Equal(float64(2), body["totalTodos"])
	s.Equal(float64(1), body["completedTodos"])
	s.Equal(float64(1), body["pendingTodos"])
	s.Equal(float64(1), body["overdueTodos"])
	s.Equal(float64(50), body["completionRate"])
}

func (s *RouterTestSuite) TestMissingIDs() {
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/todos/77", "").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPut, "/todos/77", `{"title": "x"}`).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/todos/77", "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/todos/seven", "").Code)
}

func (s *RouterTestSuite) TestHealthMetricsAndCORS() {
	code, body := s.get("/health")
	s.Equal(http.StatusOK, code)
	s.Equal("Healthy", body["status"])
	s.Equal("Testing", body["environment"])

	w := s.do(http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "todo_http_requests_total")

	req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(s.T(), "*", rec.Header().Get("Access-Control-Allow-Origin"))

	w = s.do(http.MethodGet, "/todos", "")
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}
