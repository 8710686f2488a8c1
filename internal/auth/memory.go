package auth

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and as the fallback
// backend when no database DSN is configured. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*User
	byEmail  map[string]string
	sessions map[string]*Session
	audit    []*AuditEntry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*User),
		byEmail:  make(map[string]string),
		sessions: make(map[string]*Session),
	}
}

func (m *MemoryStore) Users() UserStore       { return (*memoryUsers)(m) }
func (m *MemoryStore) Sessions() SessionStore { return (*memorySessions)(m) }
func (m *MemoryStore) Audit() AuditStore      { return (*memoryAudit)(m) }

type memoryUsers MemoryStore

func (m *memoryUsers) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return fmt.Errorf("%w: user %s", ErrConflict, u.ID)
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return fmt.Errorf("%w: email %s", ErrConflict, u.Email)
	}
	cp := *u
	m.users[u.ID] = &cp
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *memoryUsers) Find(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("%w: email %s", ErrNotFound, email)
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *memoryUsers) List(_ context.Context, filter UserFilter) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.AccountStatus != "" && u.AccountStatus != filter.AccountStatus {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memoryUsers) Update(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.users[u.ID]
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, u.ID)
	}
	if u.Email != prev.Email {
		if other, taken := m.byEmail[u.Email]; taken && other != u.ID {
			return fmt.Errorf("%w: email %s", ErrConflict, u.Email)
		}
		delete(m.byEmail, prev.Email)
		m.byEmail[u.Email] = u.ID
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryUsers) SetAccountStatus(_ context.Context, id, status string) error {
	return m.setField(id, func(u *User) { u.AccountStatus = status })
}

func (m *memoryUsers) SetSessionStatus(_ context.Context, id, status string) error {
	return m.setField(id, func(u *User) { u.SessionStatus = status })
}

func (m *memoryUsers) SetPasswordHash(_ context.Context, id, hash string) error {
	return m.setField(id, func(u *User) { u.PasswordHash = hash })
}

func (m *memoryUsers) setField(id string, apply func(*User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	apply(u)
	return nil
}

type memorySessions MemoryStore

func (m *memorySessions) Find(_ context.Context, userID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, fmt.Errorf("%w: session for user %s", ErrNotFound, userID)
	}
	cp := *s
	return &cp, nil
}

func (m *memorySessions) Upsert(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.UserID] = &cp
	return nil
}

func (m *memorySessions) UpdateToken(_ context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		m.sessions[userID] = &Session{UserID: userID, Token: token}
		return nil
	}
	s.Token = token
	return nil
}

func (m *memorySessions) Touch(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		m.sessions[userID] = &Session{UserID: userID, LastActivity: at}
		return nil
	}
	s.LastActivity = at
	return nil
}

func (m *memorySessions) Logout(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	u.SessionStatus = SessionLoggedOff
	if s, ok := m.sessions[userID]; ok {
		s.Token = ""
	}
	return nil
}

type memoryAudit MemoryStore

func (m *memoryAudit) Append(_ context.Context, entry *AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.audit = append(m.audit, &cp)
	return nil
}

// List returns entries newest first. The after cursor is the last id of the
// previous page; older entries follow it.
func (m *memoryAudit) List(_ context.Context, limit int, afterID string) ([]*AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*AuditEntry, 0, len(m.audit))
	for _, e := range m.audit {
		if afterID != "" && e.ID >= afterID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
