package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(NewMemoryStore(),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateCategory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "  Shoes  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cat.Name != "Shoes" {
		t.Fatalf("name not trimmed: %q", cat.Name)
	}
	if cat.Status != StatusActive {
		t.Fatalf("new category status = %q", cat.Status)
	}

	if _, err := svc.CreateCategory(ctx, "shoes"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate name: got %v, want ErrConflict", err)
	}
	if _, err := svc.CreateCategory(ctx, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank name: got %v, want ErrInvalidInput", err)
	}
}

func TestCreateProductRequiresActiveCategory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, CreateProductInput{CategoryID: "ghost", Name: "X"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing category: got %v, want ErrNotFound", err)
	}

	cat, err := svc.CreateCategory(ctx, "Shoes")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := svc.ToggleCategoryStatus(ctx, cat.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, CreateProductInput{CategoryID: cat.ID, Name: "X"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("inactive category: got %v, want ErrInvalidInput", err)
	}

	if _, err := svc.ToggleCategoryStatus(ctx, cat.ID); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	p, err := svc.CreateProduct(ctx, CreateProductInput{
		CategoryID:  cat.ID,
		Name:        "Runner",
		Description: "mesh upper",
		PriceCents:  7999,
		Stock:       10,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if p.Status != StatusActive || p.CategoryID != cat.ID {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cat, _ := svc.CreateCategory(ctx, "Shoes")

	cases := []struct {
		name string
		in   CreateProductInput
	}{
		{"blank name", CreateProductInput{CategoryID: cat.ID, Name: " "}},
		{"negative price", CreateProductInput{CategoryID: cat.ID, Name: "X", PriceCents: -1}},
		{"negative stock", CreateProductInput{CategoryID: cat.ID, Name: "X", Stock: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateProduct(ctx, tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cat, _ := svc.CreateCategory(ctx, "Shoes")
	p, _ := svc.CreateProduct(ctx, CreateProductInput{CategoryID: cat.ID, Name: "Runner", PriceCents: 7999})

	price := int64(8999)
	got, err := svc.UpdateProduct(ctx, p.ID, ProductUpdate{PriceCents: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.PriceCents != 8999 {
		t.Fatalf("price = %d", got.PriceCents)
	}
	if got.Name != "Runner" {
		t.Fatal("untouched fields must survive")
	}

	bad := int64(-5)
	if _, err := svc.UpdateProduct(ctx, p.ID, ProductUpdate{PriceCents: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative price: got %v, want ErrInvalidInput", err)
	}
	ghost := "ghost"
	if _, err := svc.UpdateProduct(ctx, p.ID, ProductUpdate{CategoryID: &ghost}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ghost category: got %v, want ErrNotFound", err)
	}
}

func TestStorefrontHidesInactive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	shoes, _ := svc.CreateCategory(ctx, "Shoes")
	bags, _ := svc.CreateCategory(ctx, "Bags")
	visible, _ := svc.CreateProduct(ctx, CreateProductInput{CategoryID: shoes.ID, Name: "Runner"})
	hiddenProduct, _ := svc.CreateProduct(ctx, CreateProductInput{CategoryID: shoes.ID, Name: "Retired"})
	inBags, _ := svc.CreateProduct(ctx, CreateProductInput{CategoryID: bags.ID, Name: "Tote"})

	if _, err := svc.ToggleProductStatus(ctx, hiddenProduct.ID); err != nil {
		t.Fatalf("toggle product: %v", err)
	}
	if _, err := svc.ToggleCategoryStatus(ctx, bags.ID); err != nil {
		t.Fatalf("toggle category: %v", err)
	}

	out, err := svc.Storefront(ctx, "", 0)
	if err != nil {
		t.Fatalf("storefront: %v", err)
	}
	if len(out) != 1 || out[0].ID != visible.ID {
		t.Fatalf("storefront = %+v, want only %s", out, visible.ID)
	}

	// Filtering by an inactive category yields an empty page, not an error.
	out, err = svc.Storefront(ctx, bags.ID, 0)
	if err != nil {
		t.Fatalf("storefront by category: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("inactive category leaked %d products (%s)", len(out), inBags.ID)
	}
}
