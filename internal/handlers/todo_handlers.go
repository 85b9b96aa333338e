package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"

	"go.uber.org/zap"
)

const serviceName = "todo-tracker"

type TodoHandler struct {
	service     Service
	environment string
}

func NewTodoHandler(svc Service, environment string) *TodoHandler {
	return &TodoHandler{
		service:     svc,
		environment: environment,
	}
}

func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	isCompleted, err := queryBool(r, "isCompleted")
	if err != nil {
		logger.Warn("HTTP: bad query parameter",
			zap.String("query", "isCompleted"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "isCompleted must be true or false")
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		logger.Warn("HTTP: bad query parameter",
			zap.String("query", "page"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "page must be an integer")
		return
	}

	pageSize, err := queryInt(r, "pageSize", todo.DefaultPageSize)
	if err != nil {
		logger.Warn("HTTP: bad query parameter",
			zap.String("query", "pageSize"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "pageSize must be an integer")
		return
	}

	filter := todo.Filter{
		IsCompleted: isCompleted,
		Priority:    r.URL.Query().Get("priority"),
	}

	result, err := h.service.ListTodos(r.Context(), filter, todo.Page{Number: page, Size: pageSize})
	if err != nil {
		handleServiceError(w, r, err, "list_todos")
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	w.Header().Set("X-Page", strconv.Itoa(result.Page.Number))
	w.Header().Set("X-Page-Size", strconv.Itoa(result.Page.Size))

	logger.Info("HTTP_OUT: todos listed",
		zap.Int("count", len(result.Items)),
		zap.Int("total", result.Total),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTodoList(result.Items))
}

func (h *TodoHandler) GetTodoByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := h.idFromPath(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetTodoByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_todo")
		return
	}

	logger.Info("HTTP_OUT: todo fetched",
		zap.Int64("todo_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTodo(found))
}

func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !h.jsonBody(w, r) {
		return
	}

	var request dto.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: failed to decode JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.service.CreateTodo(r.Context(), request.ToInput())
	if err != nil {
		handleServiceError(w, r, err, "create_todo")
		return
	}

	location := strings.TrimSuffix(r.URL.Path, "/") + "/" + strconv.FormatInt(created.ID, 10)
	w.Header().Set("Location", location)

	logger.Info("HTTP_OUT: todo created",
		zap.Int64("todo_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromTodo(created))
}

func (h *TodoHandler) UpdateTodoByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := h.idFromPath(w, r)
	if !ok {
		return
	}

	if !h.jsonBody(w, r) {
		return
	}

	var request dto.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: failed to decode JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.UpdateTodo(r.Context(), id, request.ToInput()); err != nil {
		handleServiceError(w, r, err, "update_todo")
		return
	}

	logger.Info("HTTP_OUT: todo updated",
		zap.Int64("todo_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (h *TodoHandler) DeleteTodoByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := h.idFromPath(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTodo(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_todo")
		return
	}

	logger.Info("HTTP_OUT: todo deleted",
		zap.Int64("todo_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (h *TodoHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "get_stats")
		return
	}

	logger.Info("HTTP_OUT: stats computed",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, stats)
}

func (h *TodoHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: health check")

	response := dto.HealthResponse{
		Status:      "Healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.environment,
		Service:     serviceName,
	}

	if err := h.service.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err)
		response.Status = "Unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *TodoHandler) idFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: bad id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

func (h *TodoHandler) jsonBody(w http.ResponseWriter, r *http.Request) bool {
	if checkContentType(r, "application/json") {
		return true
	}

	logger.Warn("HTTP: wrong content type",
		zap.String("expected", "application/json"),
		zap.String("received", r.Header.Get("Content-Type")),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
	return false
}
