package catalog

import "context"

// Store describes persistence operations required by the catalog.
type Store interface {
	Categories() CategoryStore
	Products() ProductStore
}

// CategoryStore manages product categories.
type CategoryStore interface {
	Create(ctx context.Context, c *Category) error
	Find(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, status string) ([]*Category, error)
	Update(ctx context.Context, c *Category) error
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID string
	Status     string
	Limit      int
}

// ProductStore manages products.
type ProductStore interface {
	Create(ctx context.Context, p *Product) error
	Find(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
}
