package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// Order is placed by a customer on a public catalog and read by the catalog owner.
type Order struct {
	ID                    string      `db:"id" json:"id"`
	CatalogID             string      `db:"catalog_id" json:"catalog_id"`
	CatalogOwnerAccountID string      `db:"catalog_owner_account_id" json:"catalog_owner_account_id"`
	CustomerName          string      `db:"customer_name" json:"customer_name"`
	CustomerPhone         string      `db:"customer_phone" json:"customer_phone"`
	Items                 []OrderItem `db:"items" json:"items"`
	TotalCents            int64       `db:"total_cents" json:"total_cents"`
	Status                OrderStatus `db:"status" json:"status"`
	CreatedAt             time.Time   `db:"created_at" json:"created_at"`
}

// OrderItem snapshots the product name and price at order time.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}
