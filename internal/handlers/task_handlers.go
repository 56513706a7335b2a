package handlers

import (
	"fmt"
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"

	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{TaskService: taskService}
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	healthCheck(w, h.TaskService.HealthCheck(r.Context()))
}

// GetTasks returns every task visible to the caller as a JSON array.
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	tasks, err := h.TaskService.ListTasks(r.Context(), caller)
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	logger.Debug("HTTP_OUT: tasks listed",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))
	responseWithData(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.TaskService.CreateTask(r.Context(), caller, request.ToInput())
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	responseWithData(w, http.StatusCreated, dto.FromTask(created))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	t, err := h.TaskService.GetTask(r.Context(), caller, id)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.TaskService.UpdateTask(r.Context(), caller, id, request.ToInput())
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), caller, id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ShareTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var request dto.ShareTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	shared, added, err := h.TaskService.ShareTask(r.Context(), caller, id, request.UserIDs, request.Message)
	if err != nil {
		handleError(w, r, err, "share_task")
		return
	}

	responseWithData(w, http.StatusOK, dto.ShareTaskResponse{
		Success: true,
		Message: fmt.Sprintf("Task shared with %d new user(s)", added),
		Task:    dto.FromTask(shared),
	})
}

func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	stats, err := h.TaskService.Stats(r.Context(), caller)
	if err != nil {
		handleError(w, r, err, "task_stats")
		return
	}
	responseWithData(w, http.StatusOK, stats)
}
