package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/auth"
	"github.com/xaenox/taskchat/internal/models"
	"github.com/xaenox/taskchat/internal/storage"
	"go.uber.org/zap"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User      map[string]string `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt int64             `json:"expires_at"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
		return
	}

	user := &models.User{
		ID:             uuid.New(),
		Email:          req.Email,
		HashedPassword: hashed,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			s.logger.Warn("Registration failed: email already exists", zap.String("email", req.Email))
			writeError(w, http.StatusConflict, codeConflict, "Email already exists")
			return
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
		return
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	s.respondWithToken(w, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid email or password")
			return
		}
		s.logger.Error("Failed to query user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
		return
	}

	if !auth.VerifyPassword(req.Password, user.HashedPassword) {
		s.logger.Warn("Login failed: invalid password", zap.String("email", req.Email))
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid email or password")
		return
	}

	s.respondWithToken(w, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token := s.bearerOrCookieToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"session": nil})
		return
	}

	userID, claims, err := s.jwt.Parse(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"session": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session": map[string]any{
			"user": map[string]string{
				"id":    userID.String(),
				"email": claims.Email,
			},
			"token":      token,
			"expires_at": claims.ExpiresAt.Unix(),
		},
	})
}

// respondWithToken issues a JWT, mirrors it into the session cookie and
// writes the auth payload.
func (s *Server) respondWithToken(w http.ResponseWriter, user *models.User) {
	token, expiresAt, err := s.jwt.Sign(user.ID, user.Email)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.jwt.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	name := user.Email
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	writeJSON(w, http.StatusOK, authResponse{
		User: map[string]string{
			"id":    user.ID.String(),
			"email": user.Email,
			"name":  name,
		},
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
