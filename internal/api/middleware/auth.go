package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bizdesk/bizdesk/internal/api/response"
	"github.com/bizdesk/bizdesk/internal/auth"
)

const identityKey contextKey = "identity"

// Auth is middleware that extracts the Bearer token from the Authorization
// header and resolves it to an Identity via the auth service. Each
// successful check refreshes the session's activity window; a missing,
// invalid, or expired session returns 401.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token := bearerToken(r)
			if token == "" {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
				return
			}

			identity, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrSessionInvalid) {
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session is invalid or expired", requestID)
					return
				}
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
