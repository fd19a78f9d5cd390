package model

import "time"

// Catalog is a merchant's public storefront.
type Catalog struct {
	ID               string    `db:"id" json:"id"`
	OwnerAccountID   string    `db:"owner_account_id" json:"owner_account_id"`
	Name             string    `db:"name" json:"name"`
	BannerURL        string    `db:"banner_url" json:"banner_url"`
	StoreDescription string    `db:"store_description" json:"store_description"`
	WhatsAppPhone    string    `db:"whatsapp_phone" json:"whatsapp_phone"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// CatalogPatch carries the fields of a partial catalog update. Nil means unchanged.
type CatalogPatch struct {
	Name             *string
	BannerURL        *string
	StoreDescription *string
	WhatsAppPhone    *string
}

// Empty reports whether the patch changes nothing.
func (p CatalogPatch) Empty() bool {
	return p.Name == nil && p.BannerURL == nil && p.StoreDescription == nil && p.WhatsAppPhone == nil
}

// Product belongs to one catalog. OwnerAccountID is denormalized for owner queries.
type Product struct {
	ID             string         `db:"id" json:"id"`
	CatalogID      string         `db:"catalog_id" json:"catalog_id"`
	OwnerAccountID string         `db:"owner_account_id" json:"owner_account_id"`
	Name           string         `db:"name" json:"name"`
	PriceCents     int64          `db:"price_cents" json:"price_cents"`
	Description    string         `db:"description" json:"description"`
	ImageURL       string         `db:"image_url" json:"image_url"`
	Attributes     map[string]any `db:"attributes" json:"attributes,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// CatalogWithProducts is a catalog with its products embedded.
type CatalogWithProducts struct {
	Catalog
	Products []Product `json:"products"`
}
