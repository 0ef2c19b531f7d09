package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vidstream/identity/internal/logger"
	"github.com/vidstream/identity/internal/model"
)

// accessTokenCookie mirrors the cookie name set by the login handler.
const accessTokenCookie = "access_token"

// TokenParser resolves user IDs from access tokens.
type TokenParser interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}

// Authenticate validates access tokens and injects the user ID into the
// request context. Guarded routes reject requests without a valid token.
type Authenticate struct {
	tokens         TokenParser
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokens TokenParser, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, contextManager: contextManager, logger: logger}
}

// Handle extracts the access token from the Authorization header or the
// session cookie, validates it and forwards the request with the user ID in
// context.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			writeFailure(w, http.StatusUnauthorized, "authorization token is required")
			return
		}

		userID, err := m.tokens.ParseAccessToken(tokenString)
		if err != nil || userID == uuid.Nil {
			m.logger.Info("request rejected: invalid access token",
				"path", r.URL.Path)
			writeFailure(w, http.StatusUnauthorized, "invalid authorization token")
			return
		}

		ctx := m.contextManager.SetUserIDToContext(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
