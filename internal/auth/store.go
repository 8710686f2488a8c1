package auth

import (
	"context"
	"time"
)

// Store describes persistence operations required by the auth subsystem.
type Store interface {
	Users() UserStore
	Sessions() SessionStore
	Audit() AuditStore
}

// UserFilter narrows directory listings.
type UserFilter struct {
	Role          Role
	AccountStatus string
	Limit         int
}

// UserStore manages the user directory.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, error)
	Update(ctx context.Context, u *User) error
	SetAccountStatus(ctx context.Context, id, status string) error
	SetSessionStatus(ctx context.Context, id, status string) error
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// SessionStore manages the one-row-per-user session registry. All write
// operations are upserts keyed by user id so that the at-most-one-record
// invariant holds even when two logins race; the storage layer serializes
// concurrent writes to the same key.
type SessionStore interface {
	Find(ctx context.Context, userID string) (*Session, error)
	// Upsert replaces device, token and last-activity in one write.
	Upsert(ctx context.Context, s *Session) error
	// UpdateToken replaces only the token, creating the record if absent.
	UpdateToken(ctx context.Context, userID, token string) error
	// Touch replaces only the last-activity timestamp, creating the record
	// if absent.
	Touch(ctx context.Context, userID string, at time.Time) error
	// Logout atomically clears the stored token and flips the user's
	// session status to loggedOff. Either both take effect or neither does.
	Logout(ctx context.Context, userID string) error
}

// AuditStore appends and lists immutable log entries. List returns entries
// newest first; afterID resumes a page below the given entry id.
type AuditStore interface {
	Append(ctx context.Context, entry *AuditEntry) error
	List(ctx context.Context, limit int, afterID string) ([]*AuditEntry, error)
}
