// Package catalog manages product categories and products for the public
// storefront and the administrative catalog endpoints.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThonyMarckDEV/rci-backend/internal/ids"
)

var (
	ErrNotFound     = errors.New("catalog: not found")
	ErrConflict     = errors.New("catalog: already exists")
	ErrInvalidInput = errors.New("catalog: invalid input")
)

// Publication status values shared by categories and products.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Category groups products.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is one sellable item. Price is stored in minor currency units.
type Product struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int64     `json:"stock"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Service implements catalog operations on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

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

// NewService builds the catalog service.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("catalog: store is required")
	}
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateCategory registers a category, unique by name.
func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	cat := &Category{
		ID:        ids.New(),
		Name:      name,
		Status:    StatusActive,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Categories().Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// ListCategories returns categories, optionally filtered by status.
func (s *Service) ListCategories(ctx context.Context, status string) ([]*Category, error) {
	if status != "" && status != StatusActive && status != StatusInactive {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.store.Categories().List(ctx, status)
}

// RenameCategory changes a category's display name.
func (s *Service) RenameCategory(ctx context.Context, id, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	cat, err := s.store.Categories().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	cat.Name = name
	if err := s.store.Categories().Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// ToggleCategoryStatus flips a category between active and inactive.
// Products keep their category; an inactive category just hides them from
// the storefront listing.
func (s *Service) ToggleCategoryStatus(ctx context.Context, id string) (string, error) {
	cat, err := s.store.Categories().Find(ctx, id)
	if err != nil {
		return "", err
	}
	next := StatusInactive
	if cat.Status == StatusInactive {
		next = StatusActive
	}
	cat.Status = next
	if err := s.store.Categories().Update(ctx, cat); err != nil {
		return "", err
	}
	return next, nil
}

// CreateProductInput carries the fields for registering a product.
type CreateProductInput struct {
	CategoryID  string
	Name        string
	Description string
	PriceCents  int64
	Stock       int64
}

// CreateProduct validates input and stores the product. The category must
// exist and be active.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if in.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	cat, err := s.store.Categories().Find(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat.Status != StatusActive {
		return nil, fmt.Errorf("%w: category %s is inactive", ErrInvalidInput, cat.ID)
	}

	p := &Product{
		ID:          ids.New(),
		CategoryID:  cat.ID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		Status:      StatusActive,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Products().Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct loads a single product.
func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.store.Products().Find(ctx, id)
}

// ListProducts returns products matching the filter.
func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error) {
	if filter.Status != "" && filter.Status != StatusActive && filter.Status != StatusInactive {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	return s.store.Products().List(ctx, filter)
}

// ProductUpdate describes a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Stock       *int64
	CategoryID  *string
}

// UpdateProduct applies a partial update to a product.
func (s *Service) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*Product, error) {
	p, err := s.store.Products().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: product name cannot be empty", ErrInvalidInput)
		}
		p.Name = name
	}
	if upd.Description != nil {
		p.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.PriceCents != nil {
		if *upd.PriceCents < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
		}
		p.PriceCents = *upd.PriceCents
	}
	if upd.Stock != nil {
		if *upd.Stock < 0 {
			return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
		}
		p.Stock = *upd.Stock
	}
	if upd.CategoryID != nil {
		cat, err := s.store.Categories().Find(ctx, *upd.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat.Status != StatusActive {
			return nil, fmt.Errorf("%w: category %s is inactive", ErrInvalidInput, cat.ID)
		}
		p.CategoryID = cat.ID
	}
	if err := s.store.Products().Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ToggleProductStatus flips a product between active and inactive.
func (s *Service) ToggleProductStatus(ctx context.Context, id string) (string, error) {
	p, err := s.store.Products().Find(ctx, id)
	if err != nil {
		return "", err
	}
	next := StatusInactive
	if p.Status == StatusInactive {
		next = StatusActive
	}
	p.Status = next
	if err := s.store.Products().Update(ctx, p); err != nil {
		return "", err
	}
	return next, nil
}

// Storefront returns only active products in active categories, the view
// served to unauthenticated clients.
func (s *Service) Storefront(ctx context.Context, categoryID string, limit int) ([]*Product, error) {
	if categoryID != "" {
		cat, err := s.store.Categories().Find(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		if cat.Status != StatusActive {
			return []*Product{}, nil
		}
	}
	products, err := s.store.Products().List(ctx, ProductFilter{
		CategoryID: categoryID,
		Status:     StatusActive,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	if categoryID != "" {
		return products, nil
	}
	active, err := s.activeCategorySet(ctx)
	if err != nil {
		return nil, err
	}
	out := products[:0]
	for _, p := range products {
		if active[p.CategoryID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) activeCategorySet(ctx context.Context) (map[string]bool, error) {
	cats, err := s.store.Categories().List(ctx, StatusActive)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(cats))
	for _, c := range cats {
		set[c.ID] = true
	}
	return set, nil
}
