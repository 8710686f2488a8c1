// Package token issues and verifies the HS256 bearer tokens used by the
// API. An in-process denylist keyed by token id blocks refreshing a token
// that was already rotated or logged out; presented tokens are rejected by
// the session registry's stored-token comparison, not here, so a superseded
// token keeps authenticating until it expires.
package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ThonyMarckDEV/rci-backend/internal/auth"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// issuer, expiry, malformed claims, or refreshing a revoked id.
var ErrInvalidToken = errors.New("token: invalid token")

// Claims is the signed payload. Field names match the wire contract the
// frontend already consumes.
type Claims struct {
	UserID string `json:"idUsuario"`
	Name   string `json:"nombres"`
	Email  string `json:"correo"`
	Role   string `json:"rol"`
	jwt.RegisteredClaims
}

// Service signs, parses, refreshes and revokes tokens.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

var _ auth.TokenIssuer = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService builds a token service. The secret must be non-empty.
func NewService(secret, issuer string, ttl time.Duration, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if issuer == "" {
		return nil, errors.New("token: issuer is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	svc := &Service{
		secret:  []byte(secret),
		issuer:  issuer,
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Issue mints a token for the user with a fresh random id.
func (s *Service) Issue(_ context.Context, u *auth.User) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		UserID: u.ID,
		Name:   u.FullName(),
		Email:  u.Email,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, issuer and expiry. The revocation list is not
// consulted: a revoked token stays parseable so the stored-token comparison
// can answer with its own status instead of a generic authentication error.
func (s *Service) Parse(_ context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// Refresh exchanges a valid token for a fresh one and revokes the old id.
// A token that was already refreshed or invalidated cannot be refreshed
// again.
func (s *Service) Refresh(ctx context.Context, raw string) (string, string, error) {
	claims, err := s.Parse(ctx, raw)
	if err != nil {
		return "", "", err
	}
	if s.isRevoked(claims.ID) {
		return "", "", fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	s.revoke(claims.ID, claims.ExpiresAt)

	u := &auth.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  auth.Role(claims.Role),
	}
	u.FirstName = claims.Name
	fresh, err := s.Issue(ctx, u)
	if err != nil {
		return "", "", err
	}
	return fresh, claims.Subject, nil
}

// Invalidate bars a token from future refresh ahead of its expiry. An
// already revoked or unparseable token is an error so callers can log it,
// though they treat it as non-fatal.
func (s *Service) Invalidate(ctx context.Context, raw string) error {
	claims, err := s.Parse(ctx, raw)
	if err != nil {
		return err
	}
	if s.isRevoked(claims.ID) {
		return fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	s.revoke(claims.ID, claims.ExpiresAt)
	return nil
}

func (s *Service) isRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}

func (s *Service) revoke(jti string, exp *jwt.NumericDate) {
	until := s.now().Add(s.ttl)
	if exp != nil {
		until = exp.Time
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Prune entries whose token would no longer verify anyway.
	now := s.now()
	for id, expiry := range s.revoked {
		if expiry.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[jti] = until
}
