package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ThonyMarckDEV/rci-backend/internal/ids"
)

// CreateUserInput carries the fields for registering a directory entry.
type CreateUserInput struct {
	Role          Role
	FirstName     string
	LastName      string
	Email         string
	Password      string
	AccountStatus string
}

// UserUpdate describes a partial update; nil fields are left untouched.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Role      *Role
}

// CreateUser validates input, hashes the password and stores the user. The
// email is normalized to lowercase and must be unique.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(in.Password) < MinPasswordLen {
		return nil, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, MinPasswordLen)
	}
	status := strings.TrimSpace(in.AccountStatus)
	if status == "" {
		status = AccountActive
	}
	if status != AccountActive && status != AccountInactive {
		return nil, fmt.Errorf("%w: unknown account status %q", ErrInvalidInput, status)
	}

	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email %s is taken", ErrConflict, email)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:            ids.New(),
		Role:          in.Role,
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		PasswordHash:  hash,
		AccountStatus: status,
		SessionStatus: SessionLoggedOff,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser loads a single directory entry.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.store.Users().Find(ctx, id)
}

// ListUsers returns directory entries matching the filter.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]*User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, filter.Role)
	}
	return s.store.Users().List(ctx, filter)
}

// UpdateUser applies a partial update to the directory entry. Changing the
// email re-checks uniqueness.
func (s *Service) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	user, err := s.store.Users().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		name := strings.TrimSpace(*upd.FirstName)
		if name == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", ErrInvalidInput)
		}
		user.FirstName = name
	}
	if upd.LastName != nil {
		name := strings.TrimSpace(*upd.LastName)
		if name == "" {
			return nil, fmt.Errorf("%w: last name cannot be empty", ErrInvalidInput)
		}
		user.LastName = name
	}
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
		}
		if email != user.Email {
			if other, err := s.store.Users().FindByEmail(ctx, email); err == nil && other.ID != user.ID {
				return nil, fmt.Errorf("%w: email %s is taken", ErrConflict, email)
			} else if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *upd.Role)
		}
		user.Role = *upd.Role
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleAccountStatus flips the account between active and inactive and
// returns the new status. Deactivating an account also logs its session out
// so the stored token stops matching immediately.
func (s *Service) ToggleAccountStatus(ctx context.Context, id string) (string, error) {
	user, err := s.store.Users().Find(ctx, id)
	if err != nil {
		return "", err
	}
	next := AccountInactive
	if user.AccountStatus == AccountInactive {
		next = AccountActive
	}
	if err := s.store.Users().SetAccountStatus(ctx, id, next); err != nil {
		return "", err
	}
	if next == AccountInactive {
		if err := s.store.Sessions().Logout(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return next, nil
}

// ChangePassword replaces the stored hash. Unless force is set, the current
// password must verify first.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string, force bool) error {
	user, err := s.store.Users().Find(ctx, id)
	if err != nil {
		return err
	}
	if len(next) < MinPasswordLen {
		return fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, MinPasswordLen)
	}
	if !force {
		if err := VerifyPassword(user.PasswordHash, current); err != nil {
			return fmt.Errorf("%w: current password does not match", ErrUnauthorized)
		}
	}
	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.Users().SetPasswordHash(ctx, id, hash)
}
