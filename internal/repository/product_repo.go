package repository

import (
	"context"
	"fmt"

	"github.com/catalogomaker/backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	ListByCatalogs(ctx context.Context, catalogIDs []string) (map[string][]model.Product, error)
	GetByIDs(ctx context.Context, catalogID string, productIDs []string) (map[string]model.Product, error)
	Delete(ctx context.Context, catalogID, productID string) (bool, error)
}

type productRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) ProductRepository {
	return &productRepo{pool: pool}
}

const productColumns = `id, catalog_id, owner_account_id, name, price_cents, description, image_url, attributes, created_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.CatalogID, &p.OwnerAccountID, &p.Name, &p.PriceCents, &p.Description, &p.ImageURL, &p.Attributes, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	attrs := p.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	q := `
		INSERT INTO products (id, catalog_id, owner_account_id, name, price_cents, description, image_url, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns
	created, err := scanProduct(r.pool.QueryRow(ctx, q, p.ID, p.CatalogID, p.OwnerAccountID, p.Name, p.PriceCents, p.Description, p.ImageURL, attrs))
	if err != nil {
		return fmt.Errorf("insert product %s: %w", p.ID, err)
	}
	*p = *created
	return nil
}

// ListByCatalogs groups the products of the given catalogs by catalog id.
func (r *productRepo) ListByCatalogs(ctx context.Context, catalogIDs []string) (map[string][]model.Product, error) {
	out := make(map[string][]model.Product, len(catalogIDs))
	if len(catalogIDs) == 0 {
		return out, nil
	}
	q := `SELECT ` + productColumns + ` FROM products WHERE catalog_id = ANY($1) ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, catalogIDs)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.CatalogID] = append(out[p.CatalogID], *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// GetByIDs returns the requested products of one catalog keyed by id. Unknown ids are absent from the map.
func (r *productRepo) GetByIDs(ctx context.Context, catalogID string, productIDs []string) (map[string]model.Product, error) {
	out := make(map[string]model.Product, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	q := `SELECT ` + productColumns + ` FROM products WHERE catalog_id = $1 AND id = ANY($2)`
	rows, err := r.pool.Query(ctx, q, catalogID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch products of catalog %s: %w", catalogID, err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = *p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch products of catalog %s: %w", catalogID, err)
	}
	return out, nil
}

func (r *productRepo) Delete(ctx context.Context, catalogID, productID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE catalog_id = $1 AND id = $2`, catalogID, productID)
	if err != nil {
		return false, fmt.Errorf("delete product %s: %w", productID, err)
	}
	return tag.RowsAffected() > 0, nil
}
