package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/categories"
	"github.com/xaenox/taskchat/internal/storage"
	"go.uber.org/zap"
)

func (s *Server) categoryService(r *http.Request) (*categories.Service, bool) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return categories.NewService(s.store, userID, s.logger), true
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	service, ok := s.categoryService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	var input categories.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	if err := s.validate.Struct(input); err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}

	category, err := service.Create(r.Context(), input)
	if err != nil {
		s.logger.Error("Failed to create category", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	service, ok := s.categoryService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := service.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("Failed to list categories", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	service, ok := s.categoryService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	categoryID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid category id format")
		return
	}

	category, err := service.Get(r.Context(), categoryID)
	if err != nil {
		s.writeCategoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	service, ok := s.categoryService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	categoryID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid category id format")
		return
	}

	var input categories.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	if err := s.validate.Struct(input); err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}

	category, err := service.Update(r.Context(), categoryID, input)
	if err != nil {
		s.writeCategoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	service, ok := s.categoryService(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
		return
	}

	categoryID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid category id format")
		return
	}

	if err := service.Delete(r.Context(), categoryID); err != nil {
		s.writeCategoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeCategoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, codeNotFound, "Category not found")
		return
	}
	s.logger.Error("Category operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
}
