package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/models"
	"github.com/xaenox/taskchat/internal/storage"
	"github.com/xaenox/taskchat/internal/tasks"
	"go.uber.org/zap"
)

// taskService builds the per-request service bound to the caller.
func (s *Server) taskService(r *http.Request) (*tasks.Service, bool) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return tasks.NewService(s.store, userID, s.logger), true
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	service, ok := s.taskService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	var input tasks.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	if err := s.validate.Struct(input); err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}

	task, err := service.Create(r.Context(), input)
	if err != nil {
		s.logger.Error("Failed to create task", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	service, ok := s.taskService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	query := r.URL.Query()
	filter := models.TaskFilter{
		Status:   models.TaskStatus(query.Get("status")),
		Priority: models.TaskPriority(query.Get("priority")),
	}
	if raw := query.Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "Invalid category_id format")
			return
		}
		filter.CategoryID = &categoryID
	}
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))
	filter.Offset, _ = strconv.Atoi(query.Get("offset"))

	list, err := service.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to list tasks", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	service, ok := s.taskService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid task id format")
		return
	}

	task, err := service.Get(r.Context(), taskID)
	if err != nil {
		s.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	service, ok := s.taskService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid task id format")
		return
	}

	var input tasks.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	if err := s.validate.Struct(input); err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}

	task, err := service.Update(r.Context(), taskID, input)
	if err != nil {
		s.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	service, ok := s.taskService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid task id format")
		return
	}

	if err := service.Delete(r.Context(), taskID); err != nil {
		s.writeTaskError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	service, ok := s.taskService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid task id format")
		return
	}

	task, err := service.Complete(r.Context(), taskID)
	if err != nil {
		s.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) writeTaskError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, codeNotFound, "Task not found")
		return
	}
	s.logger.Error("Task operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
}
