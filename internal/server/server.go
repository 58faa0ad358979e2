// Package server exposes the HTTP API: auth, task and category CRUD, and
// the chat endpoint.
package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/xaenox/taskchat/internal/auth"
	"github.com/xaenox/taskchat/internal/chat"
	"github.com/xaenox/taskchat/internal/storage"
	"go.uber.org/zap"
)

const serviceVersion = "1.0.0"

type Server struct {
	store          storage.Storage
	jwt            *auth.JWT
	chat           *chat.Service
	validate       *validator.Validate
	allowedOrigins string
	logger         *zap.Logger
}

func New(store storage.Storage, jwt *auth.JWT, chatService *chat.Service, allowedOrigins string, logger *zap.Logger) *Server {
	return &Server{
		store:          store,
		jwt:            jwt,
		chat:           chatService,
		validate:       validator.New(),
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Handler builds the route table wrapped in logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHealth)

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/v1/auth/session", s.handleSession)

	mux.Handle("POST /api/v1/tasks", s.requireAuth(http.HandlerFunc(s.handleCreateTask)))
	mux.Handle("GET /api/v1/tasks", s.requireAuth(http.HandlerFunc(s.handleListTasks)))
	mux.Handle("GET /api/v1/tasks/{id}", s.requireAuth(http.HandlerFunc(s.handleGetTask)))
	mux.Handle("PUT /api/v1/tasks/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdateTask)))
	mux.Handle("DELETE /api/v1/tasks/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteTask)))
	mux.Handle("POST /api/v1/tasks/{id}/complete", s.requireAuth(http.HandlerFunc(s.handleCompleteTask)))

	mux.Handle("POST /api/v1/categories", s.requireAuth(http.HandlerFunc(s.handleCreateCategory)))
	mux.Handle("GET /api/v1/categories", s.requireAuth(http.HandlerFunc(s.handleListCategories)))
	mux.Handle("GET /api/v1/categories/{id}", s.requireAuth(http.HandlerFunc(s.handleGetCategory)))
	mux.Handle("PUT /api/v1/categories/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdateCategory)))
	mux.Handle("DELETE /api/v1/categories/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteCategory)))

	mux.Handle("POST /api/{userID}/chat", s.requireAuth(http.HandlerFunc(s.handleChat)))

	return s.logRequests(s.cors(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "Todo Backend API",
		"version": serviceVersion,
	})
}
