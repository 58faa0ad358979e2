package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/chat"
	"go.uber.org/zap"
)

type chatRequest struct {
	ConversationID *int64 `json:"conversation_id"`
	Message        string `json:"message"`
}

// handleChat runs the chat pipeline for POST /api/{userID}/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	pathUserID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid user_id format")
		return
	}

	currentUserID, ok := userIDFromContext(r.Context())
	if !ok || currentUserID != pathUserID {
		writeError(w, http.StatusForbidden, codeForbidden, "User identity mismatch")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "Message cannot be empty")
		return
	}

	result, created, err := s.chat.ProcessMessage(r.Context(), currentUserID, req.ConversationID, message)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "Conversation not found")
			return
		}
		s.logger.Error("Chat request failed",
			zap.Error(err),
			zap.String("user_id", currentUserID.String()))
		writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}
