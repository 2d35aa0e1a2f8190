package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

const serviceName = "task-manager"

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис недоступен", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
			toPayload("error", err.Error()))
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
		toPayload("time", time.Now().UTC()))
}

// ListTasks возвращает все задачи или, при ?status=, задачи в этом статусе.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var (
		tasks []*task.Task
		err   error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		tasks, err = h.TaskService.GetTasksByStatus(r.Context(), task.Status(status))
	} else {
		tasks, err = h.TaskService.GetAllTasks(r.Context())
	}
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))
	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) GetMyTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	status := task.Status(r.URL.Query().Get("status"))
	tasks, err := h.TaskService.GetMyTasks(r.Context(), caller(r), status)
	if err != nil {
		handleServiceError(w, r, err, "my_tasks")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) GetCreatedTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tasks, err := h.TaskService.GetTasksCreatedBy(r.Context(), caller(r))
	if err != nil {
		handleServiceError(w, r, err, "created_tasks")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.TaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.TaskService.CreateTask(r.Context(), request.ToService(), caller(r))
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))
	responseWithBody(w, http.StatusCreated, dto.FromTask(created))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var request dto.TaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.TaskService.UpdateTask(r.Context(), id, request.ToService(), caller(r))
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))
	responseWithBody(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), id, caller(r)); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	attachments, err := h.TaskService.GetAttachments(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "list_attachments")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromAttachmentList(attachments))
}

func (h *TaskHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var request dto.AttachmentRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	a, err := h.TaskService.AddAttachment(r.Context(), id, service.AttachmentRequest{
		FileName: request.FileName,
		URL:      request.URL,
		Size:     request.Size,
	}, caller(r))
	if err != nil {
		handleServiceError(w, r, err, "add_attachment")
		return
	}
	responseWithBody(w, http.StatusCreated, dto.FromAttachment(a))
}
