package task

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-study/internal/auth"
	"github.com/ovaphlow/pitchfork/service-study/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-study/internal/task/entity"
	taskrepo "github.com/ovaphlow/pitchfork/service-study/internal/task/repo"
)

// Handler exposes the task endpoints. Every route expects auth.Middleware in
// front of it.
type Handler struct {
	svc    *TaskService
	logger *zap.SugaredLogger
}

func NewHandler(svc *TaskService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Deadline    string `json:"deadline" validate:"required"`
	Description string `json:"description"`
}

type CreateTaskResponse struct {
	Message string `json:"message"`
	GoalID  int64  `json:"goal_id"`
}

// DayTask is the calendar view of a task.
type DayTask struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Deadline  string `json:"deadline"`
}

// RangeTask is the list view of a task.
type RangeTask struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	Completed bool   `json:"completed"`
	Deadline  string `json:"deadline"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, h.logger, auth.ErrMissingToken, "Unauthorized")
	}
	return id, ok
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	tasks, err := h.svc.Dashboard(r.Context(), uid)
	if err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to load dashboard")
		return
	}
	subjects := make([][]any, 0, len(tasks))
	for _, t := range tasks {
		subjects = append(subjects, []any{t.Subject, t.Completed, t.Title})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to create goal")
		return
	}
	id, err := h.svc.CreateTask(r.Context(), uid, NewTask{
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		Deadline:    req.Deadline,
	})
	if err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to create goal")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, CreateTaskResponse{Message: "Goal added", GoalID: id})
}

func (h *Handler) ListForDate(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	tasks, err := h.svc.ListTasksForDate(r.Context(), uid, r.PathValue("date"))
	if err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to fetch tasks")
		return
	}
	out := make([]DayTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, DayTask{ID: t.ID, Text: t.Title, Completed: t.Completed, Deadline: t.DeadlineString()})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tasks": out})
}

func (h *Handler) ListInRange(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	tasks, err := h.svc.ListTasksInRange(r.Context(), uid, q.Get("start"), q.Get("end"))
	if err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to fetch tasks")
		return
	}
	out := make([]RangeTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toRangeTask(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.WriteError(w, h.logger, taskrepo.ErrTaskNotFound, "Task not found")
		return
	}
	if err := h.svc.DeleteTask(r.Context(), uid, id); err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to delete task")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.MessageResponse{Message: "Task deleted successfully"})
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.WriteError(w, h.logger, taskrepo.ErrTaskNotFound, "Task not found")
		return
	}
	if err := h.svc.CompleteTask(r.Context(), uid, id); err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to update task")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.MessageResponse{Message: "Task marked as complete"})
}

func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	ns, err := h.svc.Notifications(r.Context(), uid)
	if err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to fetch notifications")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"notifications": ns})
}

func toRangeTask(t entity.Task) RangeTask {
	return RangeTask{
		ID:        t.ID,
		Title:     t.Title,
		Subject:   t.Subject,
		Completed: t.Completed,
		Deadline:  t.DeadlineString(),
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
