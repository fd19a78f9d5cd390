package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/catalogomaker/backend/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository persists orders placed on public catalogs.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error)
}

type orderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) OrderRepository {
	return &orderRepo{pool: pool}
}

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	const q = `
		INSERT INTO orders (id, catalog_id, catalog_owner_account_id, customer_name, customer_phone, items, total_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err = r.pool.QueryRow(ctx, q, o.ID, o.CatalogID, o.CatalogOwnerAccountID, o.CustomerName, o.CustomerPhone, items, o.TotalCents, o.Status).
		Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}
	return nil
}

func (r *orderRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	const q = `
		SELECT id, catalog_id, catalog_owner_account_id, customer_name, customer_phone, items, total_cents, status, created_at
		FROM orders
		WHERE catalog_owner_account_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", ownerID, err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		var rawItems []byte
		if err := rows.Scan(&o.ID, &o.CatalogID, &o.CatalogOwnerAccountID, &o.CustomerName, &o.CustomerPhone, &rawItems, &o.TotalCents, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(rawItems, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items of order %s: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", ownerID, err)
	}
	return orders, nil
}
