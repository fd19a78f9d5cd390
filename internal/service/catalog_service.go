package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/catalogomaker/backend/internal/model"
	"github.com/catalogomaker/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

type CatalogInput struct {
	Name             string
	StoreDescription string
	WhatsAppPhone    string
}

type ProductInput struct {
	Name        string
	PriceCents  int64
	Description string
	ImageURL    string
	Attributes  map[string]any
}

type BannerUpload struct {
	UploadURL string `json:"upload_url"`
	BannerURL string `json:"banner_url"`
}

// CatalogService manages catalogs and their products. Mutations are owner-only.
type CatalogService interface {
	GetPublic(ctx context.Context, catalogID string) (*model.CatalogWithProducts, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.CatalogWithProducts, error)
	Create(ctx context.Context, ownerID string, in CatalogInput) (*model.Catalog, error)
	Update(ctx context.Context, ownerID, catalogID string, patch model.CatalogPatch) (*model.Catalog, error)
	AddProduct(ctx context.Context, ownerID, catalogID string, in ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, ownerID, catalogID, productID string) error
	BannerUploadURL(ctx context.Context, ownerID, catalogID, contentType string) (*BannerUpload, error)
}

type catalogService struct {
	accounts repository.AccountRepository
	catalogs repository.CatalogRepository
	products repository.ProductRepository
	banners  BannerStorage
	logger   zerolog.Logger
}

// NewCatalogService creates a catalog service. banners may be nil when storage is not configured.
func NewCatalogService(accounts repository.AccountRepository, catalogs repository.CatalogRepository, products repository.ProductRepository, banners BannerStorage, logger zerolog.Logger) CatalogService {
	return &catalogService{
		accounts: accounts,
		catalogs: catalogs,
		products: products,
		banners:  banners,
		logger:   logger.With().Str("service", "CatalogService").Logger(),
	}
}

func (s *catalogService) GetPublic(ctx context.Context, catalogID string) (*model.CatalogWithProducts, error) {
	c, err := s.catalogs.GetByID(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("catalog %s: %w", catalogID, ErrNotFound)
	}
	byCatalog, err := s.products.ListByCatalogs(ctx, []string{c.ID})
	if err != nil {
		return nil, err
	}
	return &model.CatalogWithProducts{Catalog: *c, Products: nonNilProducts(byCatalog[c.ID])}, nil
}

func (s *catalogService) ListByOwner(ctx context.Context, ownerID string) ([]model.CatalogWithProducts, error) {
	catalogs, err := s.catalogs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]model.CatalogWithProducts, 0, len(catalogs))
	if len(catalogs) == 0 {
		return out, nil
	}

	ids := make([]string, len(catalogs))
	for i, c := range catalogs {
		ids[i] = c.ID
	}
	byCatalog, err := s.products.ListByCatalogs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range catalogs {
		out = append(out, model.CatalogWithProducts{Catalog: c, Products: nonNilProducts(byCatalog[c.ID])})
	}
	return out, nil
}

func (s *catalogService) Create(ctx context.Context, ownerID string, in CatalogInput) (*model.Catalog, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationErrorf("catalog name is required")
	}
	acc, err := s.accounts.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("account %s: %w", ownerID, ErrNotFound)
	}
	if !acc.Premium {
		return nil, ErrPremiumRequired
	}

	c := &model.Catalog{
		ID:               newCatalogID(name),
		OwnerAccountID:   ownerID,
		Name:             name,
		StoreDescription: strings.TrimSpace(in.StoreDescription),
		WhatsAppPhone:    strings.TrimSpace(in.WhatsAppPhone),
	}
	if err := s.catalogs.Create(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("user_id", ownerID).Msg("Failed to create catalog")
		return nil, err
	}
	s.logger.Info().Str("user_id", ownerID).Str("catalog_id", c.ID).Msg("Catalog created")
	return c, nil
}

// newCatalogID builds a shareable id such as "loja-da-ana-1a2b3c4d".
func newCatalogID(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	base := slug.Make(name)
	if len(base) > 48 {
		base = strings.Trim(base[:48], "-")
	}
	if base == "" {
		return "catalogo-" + suffix
	}
	return base + "-" + suffix
}

func (s *catalogService) Update(ctx context.Context, ownerID, catalogID string, patch model.CatalogPatch) (*model.Catalog, error) {
	if patch.Empty() {
		return nil, validationErrorf("nothing to update")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, validationErrorf("catalog name cannot be empty")
	}
	if _, err := s.ownedCatalog(ctx, ownerID, catalogID); err != nil {
		return nil, err
	}
	updated, err := s.catalogs.Update(ctx, catalogID, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("catalog %s: %w", catalogID, ErrNotFound)
	}
	return updated, nil
}

func (s *catalogService) AddProduct(ctx context.Context, ownerID, catalogID string, in ProductInput) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationErrorf("product name is required")
	}
	if in.PriceCents < 0 {
		return nil, validationErrorf("price cannot be negative")
	}
	if _, err := s.ownedCatalog(ctx, ownerID, catalogID); err != nil {
		return nil, err
	}
	p := &model.Product{
		ID:             uuid.NewString(),
		CatalogID:      catalogID,
		OwnerAccountID: ownerID,
		Name:           name,
		PriceCents:     in.PriceCents,
		Description:    in.Description,
		ImageURL:       in.ImageURL,
		Attributes:     in.Attributes,
	}
	if err := s.products.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("catalog_id", catalogID).Msg("Failed to create product")
		return nil, err
	}
	return p, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, ownerID, catalogID, productID string) error {
	if _, err := s.ownedCatalog(ctx, ownerID, catalogID); err != nil {
		return err
	}
	deleted, err := s.products.Delete(ctx, catalogID, productID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	return nil
}

func (s *catalogService) BannerUploadURL(ctx context.Context, ownerID, catalogID, contentType string) (*BannerUpload, error) {
	if s.banners == nil {
		return nil, ErrUnavailable
	}
	if _, err := s.ownedCatalog(ctx, ownerID, catalogID); err != nil {
		return nil, err
	}
	uploadURL, publicURL, err := s.banners.PresignBannerUpload(ctx, catalogID, contentType)
	if err != nil {
		return nil, err
	}
	return &BannerUpload{UploadURL: uploadURL, BannerURL: publicURL}, nil
}

func (s *catalogService) ownedCatalog(ctx context.Context, ownerID, catalogID string) (*model.Catalog, error) {
	c, err := s.catalogs.GetByID(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("catalog %s: %w", catalogID, ErrNotFound)
	}
	if c.OwnerAccountID != ownerID {
		s.logger.Warn().Str("user_id", ownerID).Str("catalog_id", catalogID).Msg("Catalog access by non-owner")
		return nil, ErrUnauthorized
	}
	return c, nil
}

func nonNilProducts(p []model.Product) []model.Product {
	if p == nil {
		return []model.Product{}
	}
	return p
}
