package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"taskList/internal/handlers/dto"
	"taskList/internal/logger"
	"taskList/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type StatsProvider interface {
	Stats() worker.Stats
}

type TaskHandler struct {
	TaskService TaskListService
	Storage     HealthChecker
	Persistence StatsProvider
}

func NewTaskHandler(taskService TaskListService, storage HealthChecker, persistence StatsProvider) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
		Storage:     storage,
		Persistence: persistence,
	}
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	st := h.TaskService.State()
	writeJSON(w, http.StatusOK, dto.FromState(st))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN: Создание задачи")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	st, err := h.TaskService.Add(request.Description, request.EstimatedAt)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromState(st))
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	st := h.TaskService.ToggleDone(id)
	writeJSON(w, http.StatusOK, dto.FromState(st))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	st := h.TaskService.Delete(id)
	writeJSON(w, http.StatusOK, dto.FromState(st))
}

func (h *TaskHandler) PutFilter(w http.ResponseWriter, r *http.Request) {
	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.FilterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if request.ShowDoneTasks == nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "showDoneTasks"),
			zap.String("error", "empty_field"))
		responseWithError(w, http.StatusBadRequest, "поле showDoneTasks обязательно")
		return
	}

	st := h.TaskService.SetFilterPreference(*request.ShowDoneTasks)
	writeJSON(w, http.StatusOK, dto.FromState(st))
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var stats worker.Stats
	if h.Persistence != nil {
		stats = h.Persistence.Stats()
	}

	if h.Storage != nil {
		if err := h.Storage.HealthCheck(ctx); err != nil {
			logger.Error("HTTP: Хранилище недоступно", err)
			responseWithJSON(w, http.StatusServiceUnavailable,
				toPayload("status", "unavailable"),
				toPayload("error", err.Error()),
				toPayload("persistence", stats),
			)
			return
		}
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("persistence", stats),
	)
}

func parseTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("HTTP: Неверный идентификатор задачи",
			zap.String("id", raw),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверный идентификатор задачи")
		return uuid.Nil, false
	}
	return id, true
}
