package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/lemonqwest/lemonqwest/internal/model"
	"github.com/lemonqwest/lemonqwest/internal/service"
	"github.com/lemonqwest/lemonqwest/internal/store"
)

type TaskHandler struct {
	taskStore   *store.TaskStore
	userStore   *store.UserStore
	taskService *service.TaskService
	logger      *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, us *store.UserStore, tsvc *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{taskStore: ts, userStore: us, taskService: tsvc, logger: logger}
}

type taskRequest struct {
	Title      string             `json:"title"`
	Category   model.TaskCategory `json:"category"`
	AssignedTo int64              `json:"assigned_to"`
}

func (h *TaskHandler) validate(req *taskRequest) string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if !req.Category.Valid() {
		return "category must be personal_care, household, or homework"
	}
	if req.AssignedTo <= 0 {
		return "assigned_to is required"
	}
	return ""
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	assignee, err := h.userStore.GetUser(req.AssignedTo)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check assignee")
		return
	}
	if assignee == nil {
		writeError(w, http.StatusBadRequest, "assigned_to does not exist")
		return
	}

	task, err := h.taskStore.Create(req.Title, req.Category, req.AssignedTo)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// List returns all tasks, or one member's tasks with ?assigned_to=<id>.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		tasks []model.Task
		err   error
	)
	if v := r.URL.Query().Get("assigned_to"); v != "" {
		userID, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid assigned_to")
			return
		}
		tasks, err = h.taskStore.ListTasksByUser(userID)
	} else {
		tasks, err = h.taskStore.List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	task, err := h.taskStore.GetTask(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.taskStore.GetTask(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.taskStore.Update(id, req.Title, req.Category, req.AssignedTo)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.taskService.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Complete marks the task done and credits its reward to the assignee.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	res, err := h.taskService.Complete(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Undo reverts a completed task and claws the reward back, allowing debt.
func (h *TaskHandler) Undo(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	res, err := h.taskService.Undo(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Categories lists the task categories with display metadata.
func (h *TaskHandler) Categories(w http.ResponseWriter, r *http.Request) {
	type categoryView struct {
		Category model.TaskCategory `json:"category"`
		model.CategoryInfo
	}
	cats := model.Categories()
	views := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		views = append(views, categoryView{Category: c, CategoryInfo: c.Info()})
	}
	writeJSON(w, http.StatusOK, views)
}
