package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-tracker/internal/service"
	"github.com/BuzzLyutic/todo-tracker/pkg/respond"
)

type taskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Deadline    string `json:"deadline"`
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

type TaskHandler struct {
	service *service.TodoService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TodoService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, _ := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "validation", "empty request body")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, "validation", fmt.Sprintf("invalid json: %v", err))
		return
	}

	task, err := h.service.CreateTask(r.Context(), projectID, req.Name, req.Description, req.Status, req.Deadline)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/projects/%d/tasks/%d", projectID, task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, _ := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)

	tasks, err := h.service.ListTasks(r.Context(), projectID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

// ListAll serves the global task listing across every project.
func (h *TaskHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListAllTasks(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, taskID := taskRefs(r)

	task, err := h.service.GetTask(r.Context(), projectID, taskID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, taskID := taskRefs(r)

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	task, err := h.service.EditTask(r.Context(), projectID, taskID, req.Name, req.Description, req.Status, req.Deadline)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	projectID, taskID := taskRefs(r)

	var req taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	task, err := h.service.EditTaskStatus(r.Context(), projectID, taskID, req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, taskID := taskRefs(r)

	if err := h.service.DeleteTask(r.Context(), projectID, taskID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskRefs(r *http.Request) (projectID, taskID int64) {
	projectID, _ = strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	taskID, _ = strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	return projectID, taskID
}
