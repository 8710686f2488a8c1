package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ThonyMarckDEV/rci-backend/internal/auth"
	"github.com/ThonyMarckDEV/rci-backend/internal/token"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/api/login",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/",
}
var publicPrefixes = []string{
	"/api/catalog/",
}

// withAuth verifies the bearer token on every non-public route and attaches
// the authenticated identity and the raw token to the request context.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		raw, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := a.verifier.Parse(r.Context(), raw)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrInvalidToken):
				writeError(w, r, http.StatusUnauthorized, "invalid token")
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		role := auth.Role(claims.Role)
		if !role.Valid() {
			writeError(w, r, http.StatusForbidden, "unknown role")
			return
		}

		ctx := auth.ContextWithUser(r.Context(), claims.Subject, role)
		ctx = auth.ContextWithToken(ctx, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole gates a handler to specific roles. Returns false after writing
// the error response when the caller does not qualify.
func requireRole(w http.ResponseWriter, r *http.Request, allowed ...auth.Role) bool {
	role, ok := auth.RoleFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return false
	}
	for _, want := range allowed {
		if role == want {
			return true
		}
	}
	writeError(w, r, http.StatusForbidden, "insufficient role")
	return false
}

// authorizeSubject allows a caller to act on the given user id: either it is
// their own id, or they hold an administrative role.
func authorizeSubject(w http.ResponseWriter, r *http.Request, userID string) bool {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return false
	}
	if callerID == userID {
		return true
	}
	if role, ok := auth.RoleFromContext(r.Context()); ok && role.Administrative() {
		return true
	}
	writeError(w, r, http.StatusForbidden, "cannot act on another user's session")
	return false
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	raw := strings.TrimSpace(header[len(bearer):])
	if raw == "" {
		return "", errors.New("missing bearer token")
	}
	return raw, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
