package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PGStore is the PostgreSQL-backed Store. It shares the pool opened by the
// auth store.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

// NewPGStore wraps an existing pool.
func NewPGStore(db *sql.DB) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Categories() CategoryStore { return &pgCategories{db: s.db} }
func (s *PGStore) Products() ProductStore    { return &pgProducts{db: s.db} }

type pgCategories struct {
	db *sql.DB
}

func (p *pgCategories) Create(ctx context.Context, c *Category) error {
	var exists bool
	err := p.db.QueryRowContext(ctx,
		`select exists(select 1 from categories where lower(name)=lower($1))`, c.Name).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: category %s", ErrConflict, c.Name)
	}
	_, err = p.db.ExecContext(ctx, `
		insert into categories(id, name, status, created_at) values ($1,$2,$3,$4)
	`, c.ID, c.Name, c.Status, c.CreatedAt)
	return err
}

func (p *pgCategories) Find(ctx context.Context, id string) (*Category, error) {
	var c Category
	err := p.db.QueryRowContext(ctx, `
		select id, name, status, created_at from categories where id=$1
	`, id).Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *pgCategories) List(ctx context.Context, status string) ([]*Category, error) {
	q := `select id, name, status, created_at from categories`
	var args []any
	if status != "" {
		args = append(args, status)
		q += " where status=$1"
	}
	q += " order by id"

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (p *pgCategories) Update(ctx context.Context, c *Category) error {
	res, err := p.db.ExecContext(ctx, `
		update categories set name=$2, status=$3 where id=$1
	`, c.ID, c.Name, c.Status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type pgProducts struct {
	db *sql.DB
}

const productColumns = `id, category_id, name, description, price_cents, stock, status, created_at`

func (p *pgProducts) Create(ctx context.Context, prod *Product) error {
	_, err := p.db.ExecContext(ctx, `
		insert into products(id, category_id, name, description, price_cents, stock, status, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, prod.ID, prod.CategoryID, prod.Name, prod.Description, prod.PriceCents, prod.Stock, prod.Status, prod.CreatedAt)
	return err
}

func (p *pgProducts) Find(ctx context.Context, id string) (*Product, error) {
	var prod Product
	err := p.db.QueryRowContext(ctx,
		`select `+productColumns+` from products where id=$1`, id,
	).Scan(&prod.ID, &prod.CategoryID, &prod.Name, &prod.Description,
		&prod.PriceCents, &prod.Stock, &prod.Status, &prod.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

func (p *pgProducts) List(ctx context.Context, filter ProductFilter) ([]*Product, error) {
	q := `select ` + productColumns + ` from products`
	var (
		args  []any
		where []string
	)
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			q += " where " + cond
		} else {
			q += " and " + cond
		}
	}
	q += " order by id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(" limit $%d", len(args))
	}

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Product
	for rows.Next() {
		var prod Product
		if err := rows.Scan(&prod.ID, &prod.CategoryID, &prod.Name, &prod.Description,
			&prod.PriceCents, &prod.Stock, &prod.Status, &prod.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &prod)
	}
	return out, rows.Err()
}

func (p *pgProducts) Update(ctx context.Context, prod *Product) error {
	res, err := p.db.ExecContext(ctx, `
		update products set category_id=$2, name=$3, description=$4, price_cents=$5, stock=$6, status=$7 where id=$1
	`, prod.ID, prod.CategoryID, prod.Name, prod.Description, prod.PriceCents, prod.Stock, prod.Status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
