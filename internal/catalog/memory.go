package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by tests and as the fallback
// backend when no database DSN is configured. Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[string]*Category
	products   map[string]*Product
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[string]*Category),
		products:   make(map[string]*Product),
	}
}

func (m *MemoryStore) Categories() CategoryStore { return (*memoryCategories)(m) }
func (m *MemoryStore) Products() ProductStore    { return (*memoryProducts)(m) }

type memoryCategories MemoryStore

func (m *memoryCategories) Create(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return fmt.Errorf("%w: category %s", ErrConflict, c.Name)
		}
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memoryCategories) Find(_ context.Context, id string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

func (m *memoryCategories) List(_ context.Context, status string) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Category, 0, len(m.categories))
	for _, c := range m.categories {
		if status != "" && c.Status != status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryCategories) Update(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return fmt.Errorf("%w: category %s", ErrNotFound, c.ID)
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

type memoryProducts MemoryStore

func (m *memoryProducts) Create(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; ok {
		return fmt.Errorf("%w: product %s", ErrConflict, p.ID)
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memoryProducts) Find(_ context.Context, id string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (m *memoryProducts) List(_ context.Context, filter ProductFilter) ([]*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Product, 0, len(m.products))
	for _, p := range m.products {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memoryProducts) Update(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return fmt.Errorf("%w: product %s", ErrNotFound, p.ID)
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}
