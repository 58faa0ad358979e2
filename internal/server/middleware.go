package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/storage"
	"go.uber.org/zap"
)

type contextKey string

const userIDKey contextKey = "user_id"

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// bearerOrCookieToken extracts the credential from the Authorization
// header, falling back to the jwt_token cookie for browser clients.
func (s *Server) bearerOrCookieToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("jwt_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// requireAuth resolves the caller's identity from the token and verifies
// the account still exists before letting the request through.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.bearerOrCookieToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "Not authenticated")
			return
		}

		userID, _, err := s.jwt.Parse(token)
		if err != nil {
			s.logger.Warn("Token verification failed", zap.Error(err))
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid token")
			return
		}

		if _, err := s.store.GetUserByID(r.Context(), userID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "User session invalid. Please log in again.")
				return
			}
			s.logger.Error("Failed to verify user", zap.Error(err))
			writeError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred. Please try again later.")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	allowAll := s.allowedOrigins == "*"
	allowed := make(map[string]bool)
	for _, origin := range strings.Split(s.allowedOrigins, ",") {
		allowed[strings.TrimSpace(origin)] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(start)))
	})
}
