package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/catalogomaker/backend/internal/middleware"
	"github.com/catalogomaker/backend/internal/model"
	"github.com/catalogomaker/backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalogs struct {
	service.CatalogService
	catalogs  map[string]model.CatalogWithProducts
	createErr error
	bannerErr error
	deleted   []string
}

func (s *stubCatalogs) GetPublic(_ context.Context, id string) (*model.CatalogWithProducts, error) {
	c, ok := s.catalogs[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &c, nil
}

func (s *stubCatalogs) ListByOwner(_ context.Context, owner string) ([]model.CatalogWithProducts, error) {
	var out []model.CatalogWithProducts
	for _, c := range s.catalogs {
		if c.OwnerAccountID == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCatalogs) Create(_ context.Context, owner string, in service.CatalogInput) (*model.Catalog, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &model.Catalog{ID: "loja-abc12345", OwnerAccountID: owner, Name: in.Name}, nil
}

func (s *stubCatalogs) DeleteProduct(_ context.Context, owner, catalogID, productID string) error {
	c, ok := s.catalogs[catalogID]
	if !ok {
		return service.ErrNotFound
	}
	if c.OwnerAccountID != owner {
		return service.ErrUnauthorized
	}
	s.deleted = append(s.deleted, productID)
	return nil
}

func (s *stubCatalogs) BannerUploadURL(_ context.Context, _, _, _ string) (*service.BannerUpload, error) {
	if s.bannerErr != nil {
		return nil, s.bannerErr
	}
	return &service.BannerUpload{UploadURL: "https://s3/put", BannerURL: "https://cdn/b.png"}, nil
}

type stubOrders struct {
	placeErr error
}

func (s *stubOrders) ListByOwner(context.Context, string) ([]model.Order, error) {
	return nil, nil
}

func (s *stubOrders) Place(_ context.Context, catalogID string, in service.PlaceOrderInput) (*model.Order, error) {
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return &model.Order{ID: "ord_1", CatalogID: catalogID, CustomerName: in.CustomerName, Status: model.OrderStatusPending}, nil
}

func catalogServer(catalogs *stubCatalogs, orders *stubOrders) *testServer {
	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	authMw := middleware.RequireIdentity(tokenVerifier{"tok-u1": "u1"}, logger)
	r := chi.NewRouter()
	NewCatalogHandler(catalogs, validate, logger).RegisterRoutes(r, authMw)
	NewOrderHandler(orders, validate, logger).RegisterRoutes(r)
	return &testServer{router: r}
}

func TestGetCatalog(t *testing.T) {
	s := catalogServer(&stubCatalogs{catalogs: map[string]model.CatalogWithProducts{
		"loja": {Catalog: model.Catalog{ID: "loja", OwnerAccountID: "u1", Name: "Loja"}},
	}}, &stubOrders{})

	rec := s.do(t, http.MethodGet, "/catalogs/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Recurso não encontrado"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/catalogs/loja", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":[]`)
}

func TestEmptyListsAreArrays(t *testing.T) {
	s := catalogServer(&stubCatalogs{catalogs: map[string]model.CatalogWithProducts{}}, &stubOrders{})

	rec := s.do(t, http.MethodGet, "/accounts/u1/catalogs", "tok-u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/accounts/u1/orders", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListCatalogsOfAnotherAccount(t *testing.T) {
	s := catalogServer(&stubCatalogs{}, &stubOrders{})
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/accounts/u2/catalogs", "tok-u1", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/accounts/u1/catalogs", "", nil).Code)
}

func TestCreateCatalogStatusMapping(t *testing.T) {
	body := map[string]string{"uid": "u1", "name": "Loja da Ana"}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"created", nil, http.StatusCreated},
		{"premium required", service.ErrPremiumRequired, http.StatusForbidden},
		{"validation", fmt.Errorf("%w: name", service.ErrValidation), http.StatusBadRequest},
		{"store failure", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := catalogServer(&stubCatalogs{createErr: tc.err}, &stubOrders{})
			assert.Equal(t, tc.want, s.do(t, http.MethodPost, "/catalogs", "tok-u1", body).Code)
		})
	}
}

func TestBannerUploadStatusMapping(t *testing.T) {
	body := map[string]string{"content_type": "image/png"}

	s := catalogServer(&stubCatalogs{}, &stubOrders{})
	rec := s.do(t, http.MethodPost, "/catalogs/loja/banner-upload-url", "tok-u1", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"upload_url":"https://s3/put","banner_url":"https://cdn/b.png"}`, rec.Body.String())

	s = catalogServer(&stubCatalogs{bannerErr: service.ErrUnavailable}, &stubOrders{})
	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodPost, "/catalogs/loja/banner-upload-url", "tok-u1", body).Code)

	s = catalogServer(&stubCatalogs{bannerErr: &service.UpstreamError{Op: "presign", Err: errors.New("boom")}}, &stubOrders{})
	assert.Equal(t, http.StatusBadGateway, s.do(t, http.MethodPost, "/catalogs/loja/banner-upload-url", "tok-u1", body).Code)

	rec = s.do(t, http.MethodPost, "/catalogs/loja/banner-upload-url", "tok-u1", map[string]string{"content_type": "image/gif"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	catalogs := &stubCatalogs{catalogs: map[string]model.CatalogWithProducts{
		"loja":  {Catalog: model.Catalog{ID: "loja", OwnerAccountID: "u1"}},
		"outra": {Catalog: model.Catalog{ID: "outra", OwnerAccountID: "u2"}},
	}}
	s := catalogServer(catalogs, &stubOrders{})

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/catalogs/loja/products/p1", "tok-u1", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, "/catalogs/outra/products/p1", "tok-u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/catalogs/nope/products/p1", "tok-u1", nil).Code)
	assert.Equal(t, []string{"p1"}, catalogs.deleted)
}

func TestPlaceOrder(t *testing.T) {
	body := map[string]any{
		"customer_name":  "Bia",
		"customer_phone": "+55 11 99999-0000",
		"items":          []map[string]any{{"product_id": "p1", "quantity": 2}},
	}

	s := catalogServer(&stubCatalogs{}, &stubOrders{})
	rec := s.do(t, http.MethodPost, "/catalogs/loja/orders", "", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	s = catalogServer(&stubCatalogs{}, &stubOrders{placeErr: service.ErrNotFound})
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/catalogs/nope/orders", "", body).Code)

	rec = s.do(t, http.MethodPost, "/catalogs/loja/orders", "", map[string]any{"customer_name": "Bia"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
