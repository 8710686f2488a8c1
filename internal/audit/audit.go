// Package audit persists the human-readable action log and mirrors each
// entry to the structured log stream.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ThonyMarckDEV/rci-backend/internal/auth"
	"github.com/ThonyMarckDEV/rci-backend/internal/ids"
	"github.com/ThonyMarckDEV/rci-backend/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// requestIDFromContext extracts the audit request id from context if present.
func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// Recorder stores action records. It implements auth.AuditSink and never
// fails the calling flow: persistence errors are logged and swallowed.
type Recorder struct {
	store auth.AuditStore
	now   func() time.Time
}

var _ auth.AuditSink = (*Recorder)(nil)

// NewRecorder builds a Recorder on top of the given store.
func NewRecorder(store auth.AuditStore) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// Record appends one entry describing an action by the given user.
func (r *Recorder) Record(ctx context.Context, actor *auth.User, action string) {
	if actor == nil || strings.TrimSpace(action) == "" {
		return
	}
	entry := &auth.AuditEntry{
		ID:         ids.New(),
		UserID:     actor.ID,
		UserName:   actor.FullName(),
		Role:       actor.Role,
		Action:     action,
		OccurredAt: r.now().UTC(),
	}
	if err := r.store.Append(ctx, entry); err != nil {
		_ = LogEvent(ctx, "audit.append_failed", map[string]any{
			"user_id": actor.ID,
			"action":  action,
			"error":   err.Error(),
		})
		return
	}
	_ = LogEvent(ctx, "audit.recorded", map[string]any{
		"user_id": actor.ID,
		"action":  action,
	})
}

// LogEvent writes an audit log entry enriched with request and user context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"type":  "audit",
		"event": event,
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	if userID, ok := auth.UserIDFromContext(ctx); ok {
		entry["user_id"] = userID
	}
	if len(fields) > 0 {
		copyFields := make(map[string]any, len(fields))
		for k, v := range fields {
			copyFields[k] = v
		}
		entry["fields"] = copyFields
	} else {
		entry["fields"] = map[string]any{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}
