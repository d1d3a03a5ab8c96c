package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/taskbox/internal/apperror"
	"github.com/sakif/taskbox/internal/auth"
	"github.com/sakif/taskbox/internal/model"
	"github.com/sakif/taskbox/internal/service"
)

// TaskHandler serves the owner-scoped task endpoints. All routes sit
// behind RequireAuth, so every request arrives with a resolved identity in
// its context; the handler's only job beyond JSON plumbing is handing that
// identity's ID to the service, which scopes every query by it.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

func NewTaskHandler(tasks *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// taskRequest is the body for create and update. Any ownerId a client
// sends simply has no field to land in — ownership comes from the session.
type taskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      model.Status `json:"status"`
}

// owner pulls the authenticated identity's ID out of the context.
func owner(r *http.Request) (string, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return "", false
	}
	return identity.ID, true
}

// HandleList returns the caller's tasks, newest first.
//
// HTTP: GET /tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeError(w, apperror.Unauthenticated())
		return
	}

	tasks, err := h.tasks.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleCreate creates a task owned by the caller.
//
// HTTP: POST /tasks
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeError(w, apperror.Unauthenticated())
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "request body must be valid JSON"))
		return
	}

	task, err := h.tasks.Create(r.Context(), ownerID, req.Title, req.Description, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// HandleGet returns one of the caller's tasks.
//
// HTTP: GET /tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeError(w, apperror.Unauthenticated())
		return
	}

	task, err := h.tasks.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleUpdate applies a partial update to one of the caller's tasks.
//
// HTTP: PUT /tasks/{id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeError(w, apperror.Unauthenticated())
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "request body must be valid JSON"))
		return
	}

	task, err := h.tasks.Update(r.Context(), ownerID, chi.URLParam(r, "id"),
		req.Title, req.Description, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete removes one of the caller's tasks.
//
// HTTP: DELETE /tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeError(w, apperror.Unauthenticated())
		return
	}

	if err := h.tasks.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}
