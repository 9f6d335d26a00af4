package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const callerIDKey contextKey = "caller_id"

// bearerAuth validates the Authorization header and stores the caller's
// identity in the request context. Handlers never read an owner from the
// request body or query; this is the only source of the scoping identity.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respondWithError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format. Use: Bearer <token>")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, "Token is required")
			return
		}

		callerID, err := s.authService.ValidateAccessToken(r.Context(), token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), callerIDKey, callerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerID returns the authenticated identity stored by bearerAuth.
func callerID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(callerIDKey).(uuid.UUID)
	return id, ok
}
