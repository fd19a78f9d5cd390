package dto

import "time"

type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0,lte=1000"`
}

type OrderCreateRequest struct {
	CustomerName  string             `json:"customer_name" validate:"required,max=120"`
	CustomerPhone string             `json:"customer_phone" validate:"required,max=32"`
	Items         []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderItemResponse struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	CatalogID     string              `json:"catalog_id"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Items         []OrderItemResponse `json:"items"`
	TotalCents    int64               `json:"total_cents"`
	Status        string              `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
}
