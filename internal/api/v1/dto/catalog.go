package dto

import "time"

type CatalogCreateRequest struct {
	UID              string `json:"uid" validate:"required"`
	Name             string `json:"name" validate:"required,max=120"`
	StoreDescription string `json:"store_description" validate:"max=2000"`
	WhatsAppPhone    string `json:"whatsapp_phone" validate:"omitempty,max=32"`
}

// CatalogUpdateRequest is a partial update; omitted fields stay unchanged.
type CatalogUpdateRequest struct {
	Name             *string `json:"name" validate:"omitempty,max=120"`
	BannerURL        *string `json:"banner_url" validate:"omitempty,url"`
	StoreDescription *string `json:"store_description" validate:"omitempty,max=2000"`
	WhatsAppPhone    *string `json:"whatsapp_phone" validate:"omitempty,max=32"`
}

type BannerUploadRequest struct {
	ContentType string `json:"content_type" validate:"required,oneof=image/jpeg image/png image/webp"`
}

type ProductCreateRequest struct {
	Name        string         `json:"name" validate:"required,max=200"`
	PriceCents  int64          `json:"price_cents" validate:"gte=0"`
	Description string         `json:"description" validate:"max=4000"`
	ImageURL    string         `json:"image_url" validate:"omitempty,url"`
	Attributes  map[string]any `json:"attributes"`
}

type ProductResponse struct {
	ID          string         `json:"id"`
	CatalogID   string         `json:"catalog_id"`
	Name        string         `json:"name"`
	PriceCents  int64          `json:"price_cents"`
	Description string         `json:"description"`
	ImageURL    string         `json:"image_url"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type CatalogResponse struct {
	ID               string            `json:"id"`
	OwnerAccountID   string            `json:"owner_account_id"`
	Name             string            `json:"name"`
	BannerURL        string            `json:"banner_url"`
	StoreDescription string            `json:"store_description"`
	WhatsAppPhone    string            `json:"whatsapp_phone"`
	Products         []ProductResponse `json:"products"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

type BannerUploadResponse struct {
	UploadURL string `json:"upload_url"`
	BannerURL string `json:"banner_url"`
}
