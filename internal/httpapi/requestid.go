package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/ThonyMarckDEV/rci-backend/internal/audit"
	"github.com/ThonyMarckDEV/rci-backend/internal/ids"
)

type ridKey struct{}

const requestIDHeader = "X-Request-ID"

// RequestID attaches a request identifier to every request: reuses the
// client-supplied header when present, mints a ULID otherwise. The id is
// echoed back in the response and made available to audit logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if rid == "" || len(rid) > 64 {
			rid = ids.New()
		}
		w.Header().Set(requestIDHeader, rid)

		ctx := context.WithValue(r.Context(), ridKey{}, rid)
		ctx = audit.WithRequestID(ctx, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id attached by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ridKey{}).(string); ok {
		return v
	}
	return ""
}
