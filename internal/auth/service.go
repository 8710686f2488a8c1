package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// TokenIssuer abstracts the component that signs, refreshes and revokes
// bearer tokens. The auth flows never inspect token internals beyond what
// this interface exposes.
type TokenIssuer interface {
	// Issue mints a token for the user. Failures map to an internal error.
	Issue(ctx context.Context, u *User) (string, error)
	// Refresh exchanges a currently valid token for a fresh one and returns
	// the new token together with the subject user id.
	Refresh(ctx context.Context, raw string) (newToken string, userID string, err error)
	// Invalidate bars a token from being refreshed ahead of its natural
	// expiry. Callers treat failures as non-fatal.
	Invalidate(ctx context.Context, raw string) error
}

// AuditSink receives best-effort action records. Implementations must not
// propagate their own failures.
type AuditSink interface {
	Record(ctx context.Context, actor *User, action string)
}

type nopSink struct{}

func (nopSink) Record(context.Context, *User, string) {}

// Service implements the session-activity and single-device-token
// reconciliation flows on top of a Store and a TokenIssuer.
type Service struct {
	store  Store
	tokens TokenIssuer
	audit  AuditSink
	now    func() time.Time
	logf   func(format string, args ...any)
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithAuditSink routes action records to the given sink.
func WithAuditSink(sink AuditSink) ServiceOption {
	return func(s *Service) error {
		if sink != nil {
			s.audit = sink
		}
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithLogf overrides the logger used for best-effort failures.
func WithLogf(fn func(format string, args ...any)) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.logf = fn
		}
		return nil
	}
}

// NewService constructs the auth flow service.
func NewService(store Store, tokens TokenIssuer, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token issuer is required")
	}
	svc := &Service{
		store:  store,
		tokens: tokens,
		audit:  nopSink{},
		now:    time.Now,
		logf:   log.Printf,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// Fingerprint derives the opaque device fingerprint from the client's
// declared identity string. The raw header is never stored.
func Fingerprint(clientIdentity string) string {
	id := strings.TrimSpace(clientIdentity)
	if id == "" {
		id = "unknown"
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// LoginResult carries the outcome of a successful login.
type LoginResult struct {
	Token       string
	Fingerprint string
	Superseded  bool // a session held by a different device was displaced
}

// Login authenticates email+password and reconciles the session registry.
//
// A user holds at most one valid session: logging in from a second device
// silently supersedes the first device's token. The superseded token keeps
// verifying cryptographically until it expires, but CheckStatus rejects it
// because it no longer matches the stored one.
func (s *Service) Login(ctx context.Context, email, password, clientIdentity string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return LoginResult{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(password) < MinPasswordLen {
		return LoginResult{}, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, MinPasswordLen)
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if user.AccountStatus != AccountActive {
		// Disabled accounts never reach the credential check or the issuer.
		return LoginResult{}, fmt.Errorf("%w: account is disabled", ErrForbidden)
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	fp := Fingerprint(clientIdentity)
	result := LoginResult{Token: token, Fingerprint: fp}

	sessions := s.store.Sessions()
	prev, err := sessions.Find(ctx, user.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		// First login for this user: create the record.
	case err != nil:
		return LoginResult{}, err
	default:
		if prev.Device != fp && prev.Token != "" {
			// Device changed: the stored token is stale. Invalidation only
			// bars refreshing it; the status check rejects it either way.
			if ierr := s.tokens.Invalidate(ctx, prev.Token); ierr != nil {
				s.logf("auth: invalidate superseded token for user %s: %v", user.ID, ierr)
			}
			result.Superseded = true
		}
	}

	if err := sessions.Upsert(ctx, &Session{
		UserID:       user.ID,
		Device:       fp,
		Token:        token,
		LastActivity: s.now().UTC(),
	}); err != nil {
		return LoginResult{}, err
	}
	if err := s.store.Users().SetSessionStatus(ctx, user.ID, SessionLoggedOn); err != nil {
		return LoginResult{}, err
	}

	s.audit.Record(ctx, user, fmt.Sprintf("%s logged in from device %s", user.FullName(), fp))
	return result, nil
}

// Logout clears the user's session token and flips session status to
// loggedOff as a single atomic unit. The fingerprint is retained so a
// subsequent same-device login is not treated as a device change.
func (s *Service) Logout(ctx context.Context, userID string) error {
	user, err := s.store.Users().Find(ctx, userID)
	if err != nil {
		return err
	}

	sessions := s.store.Sessions()
	if prev, err := sessions.Find(ctx, userID); err == nil && prev.Token != "" {
		if ierr := s.tokens.Invalidate(ctx, prev.Token); ierr != nil {
			s.logf("auth: invalidate token on logout for user %s: %v", userID, ierr)
		}
	}

	// Token clear and status flip commit together; a half-applied logout
	// would let a stale token keep passing the status check.
	if err := sessions.Logout(ctx, userID); err != nil {
		return err
	}

	s.audit.Record(ctx, user, fmt.Sprintf("%s logged out", user.FullName()))
	return nil
}

// Refresh exchanges the presented bearer token for a fresh one and records
// it as the session-of-record for the subject.
func (s *Service) Refresh(ctx context.Context, raw string) (string, error) {
	newToken, userID, err := s.tokens.Refresh(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if err := s.store.Sessions().UpdateToken(ctx, userID, newToken); err != nil {
		return "", err
	}
	return newToken, nil
}

// CheckStatus compares the presented bearer token bit-for-bit against the
// stored session token. This is the enforcement point for the single active
// device policy: a superseded token is rejected here even while it is still
// cryptographically valid and unexpired. Pure read, no mutation.
func (s *Service) CheckStatus(ctx context.Context, userID, presented string) (string, error) {
	sess, err := s.store.Sessions().Find(ctx, userID)
	if err != nil {
		return "", err
	}
	if sess.Token == "" || sess.Token != presented {
		return "", fmt.Errorf("%w: token does not match stored session", ErrForbidden)
	}
	return sess.Token, nil
}

// UpdateActivity bumps the session's last-activity timestamp, creating the
// record if absent. Token and fingerprint are untouched.
func (s *Service) UpdateActivity(ctx context.Context, userID string) error {
	if _, err := s.store.Users().Find(ctx, userID); err != nil {
		return err
	}
	return s.store.Sessions().Touch(ctx, userID, s.now().UTC())
}

// RecordAction loads the acting user and appends an audit entry on their
// behalf. Used by handlers for administrative actions.
func (s *Service) RecordAction(ctx context.Context, actorID, action string) {
	actor, err := s.store.Users().Find(ctx, actorID)
	if err != nil {
		s.logf("auth: audit actor %s lookup: %v", actorID, err)
		return
	}
	s.audit.Record(ctx, actor, action)
}
