package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/catalogomaker/backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository persists catalogs.
type CatalogRepository interface {
	Create(ctx context.Context, c *model.Catalog) error
	GetByID(ctx context.Context, id string) (*model.Catalog, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Catalog, error)
	// Update applies a partial update and returns the stored catalog, or nil when the id is unknown.
	Update(ctx context.Context, id string, patch model.CatalogPatch) (*model.Catalog, error)
}

type catalogRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogRepo(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepo{pool: pool}
}

const catalogColumns = `id, owner_account_id, name, banner_url, store_description, whatsapp_phone, created_at, updated_at`

func scanCatalog(row pgx.Row) (*model.Catalog, error) {
	var c model.Catalog
	err := row.Scan(&c.ID, &c.OwnerAccountID, &c.Name, &c.BannerURL, &c.StoreDescription, &c.WhatsAppPhone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepo) Create(ctx context.Context, c *model.Catalog) error {
	q := `
		INSERT INTO catalogs (id, owner_account_id, name, banner_url, store_description, whatsapp_phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + catalogColumns
	created, err := scanCatalog(r.pool.QueryRow(ctx, q, c.ID, c.OwnerAccountID, c.Name, c.BannerURL, c.StoreDescription, c.WhatsAppPhone))
	if err != nil {
		return fmt.Errorf("insert catalog %s: %w", c.ID, err)
	}
	*c = *created
	return nil
}

func (r *catalogRepo) GetByID(ctx context.Context, id string) (*model.Catalog, error) {
	q := `SELECT ` + catalogColumns + ` FROM catalogs WHERE id = $1`
	c, err := scanCatalog(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch catalog %s: %w", id, err)
	}
	return c, nil
}

func (r *catalogRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Catalog, error) {
	q := `SELECT ` + catalogColumns + ` FROM catalogs WHERE owner_account_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list catalogs for %s: %w", ownerID, err)
	}
	defer rows.Close()

	catalogs := []model.Catalog{}
	for rows.Next() {
		c, err := scanCatalog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog: %w", err)
		}
		catalogs = append(catalogs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list catalogs for %s: %w", ownerID, err)
	}
	return catalogs, nil
}

func (r *catalogRepo) Update(ctx context.Context, id string, patch model.CatalogPatch) (*model.Catalog, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(column string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("name", patch.Name)
	add("banner_url", patch.BannerURL)
	add("store_description", patch.StoreDescription)
	add("whatsapp_phone", patch.WhatsAppPhone)

	q := `UPDATE catalogs SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + catalogColumns
	c, err := scanCatalog(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update catalog %s: %w", id, err)
	}
	return c, nil
}
