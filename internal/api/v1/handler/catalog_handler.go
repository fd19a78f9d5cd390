package handler

import (
	"net/http"

	"github.com/catalogomaker/backend/internal/api/v1/dto"
	"github.com/catalogomaker/backend/internal/middleware"
	"github.com/catalogomaker/backend/internal/model"
	"github.com/catalogomaker/backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type CatalogHandler struct {
	svc      service.CatalogService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewCatalogHandler(svc service.CatalogService, v *validator.Validate, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, validate: v, logger: logger.With().Str("handler", "CatalogHandler").Logger()}
}

// RegisterRoutes mounts v1 catalog routes. Only the single-catalog read is public.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Get("/catalogs/{catalogId}", h.getCatalog)

	r.Group(func(r chi.Router) {
		r.Use(authMw)
		r.Get("/accounts/{uid}/catalogs", h.listCatalogs)
		r.Post("/catalogs", h.createCatalog)
		r.Patch("/catalogs/{catalogId}", h.updateCatalog)
		r.Post("/catalogs/{catalogId}/banner-upload-url", h.bannerUploadURL)
		r.Post("/catalogs/{catalogId}/products", h.createProduct)
		r.Delete("/catalogs/{catalogId}/products/{productId}", h.deleteProduct)
	})
}

// getCatalog godoc
// @Summary Get a public catalog with its products
// @Tags catalogs
// @Produce json
// @Param catalogId path string true "Catalog ID"
// @Success 200 {object} dto.CatalogResponse
// @Failure 404 {object} errorResponse
// @Router /catalogs/{catalogId} [get]
func (h *CatalogHandler) getCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetPublic(r.Context(), chi.URLParam(r, "catalogId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toCatalogResponse(c.Catalog, c.Products))
}

// listCatalogs godoc
// @Summary List the caller's catalogs with embedded products
// @Tags catalogs
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Account ID"
// @Success 200 {array} dto.CatalogResponse
// @Failure 401 {object} errorResponse
// @Router /accounts/{uid}/catalogs [get]
func (h *CatalogHandler) listCatalogs(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if err := requireSelf(r, uid); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	list, err := h.svc.ListByOwner(r.Context(), uid)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	resp := make([]dto.CatalogResponse, 0, len(list))
	for _, c := range list {
		resp = append(resp, toCatalogResponse(c.Catalog, c.Products))
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// createCatalog godoc
// @Summary Create a catalog
// @Description Requires an active premium subscription.
// @Tags catalogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param catalog body dto.CatalogCreateRequest true "Catalog"
// @Success 201 {object} dto.CatalogResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /catalogs [post]
func (h *CatalogHandler) createCatalog(w http.ResponseWriter, r *http.Request) {
	var req dto.CatalogCreateRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, msgInvalidParams)
		return
	}
	if err := requireSelf(r, req.UID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	c, err := h.svc.Create(r.Context(), req.UID, service.CatalogInput{
		Name:             req.Name,
		StoreDescription: req.StoreDescription,
		WhatsAppPhone:    req.WhatsAppPhone,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, toCatalogResponse(*c, nil))
}

// updateCatalog godoc
// @Summary Partially update a catalog
// @Tags catalogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param catalogId path string true "Catalog ID"
// @Param catalog body dto.CatalogUpdateRequest true "Fields to change"
// @Success 200 {object} dto.CatalogResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /catalogs/{catalogId} [patch]
func (h *CatalogHandler) updateCatalog(w http.ResponseWriter, r *http.Request) {
	var req dto.CatalogUpdateRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, msgInvalidParams)
		return
	}
	c, err := h.svc.Update(r.Context(), callerID(r), chi.URLParam(r, "catalogId"), model.CatalogPatch{
		Name:             req.Name,
		BannerURL:        req.BannerURL,
		StoreDescription: req.StoreDescription,
		WhatsAppPhone:    req.WhatsAppPhone,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toCatalogResponse(*c, nil))
}

// bannerUploadURL godoc
// @Summary Get a presigned URL to upload the catalog banner
// @Description The URL accepts a single PUT for 15 minutes. Save banner_url with PATCH afterwards.
// @Tags catalogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param catalogId path string true "Catalog ID"
// @Param upload body dto.BannerUploadRequest true "Image content type"
// @Success 200 {object} dto.BannerUploadResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /catalogs/{catalogId}/banner-upload-url [post]
func (h *CatalogHandler) bannerUploadURL(w http.ResponseWriter, r *http.Request) {
	var req dto.BannerUploadRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, msgInvalidParams)
		return
	}
	up, err := h.svc.BannerUploadURL(r.Context(), callerID(r), chi.URLParam(r, "catalogId"), req.ContentType)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.BannerUploadResponse{UploadURL: up.UploadURL, BannerURL: up.BannerURL})
}

// createProduct godoc
// @Summary Add a product to a catalog
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param catalogId path string true "Catalog ID"
// @Param product body dto.ProductCreateRequest true "Product"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /catalogs/{catalogId}/products [post]
func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductCreateRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, msgInvalidParams)
		return
	}
	p, err := h.svc.AddProduct(r.Context(), callerID(r), chi.URLParam(r, "catalogId"), service.ProductInput{
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Attributes:  req.Attributes,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, toProductResponse(*p))
}

// deleteProduct godoc
// @Summary Remove a product
// @Tags products
// @Security BearerAuth
// @Param catalogId path string true "Catalog ID"
// @Param productId path string true "Product ID"
// @Success 204
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /catalogs/{catalogId}/products/{productId} [delete]
func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteProduct(r.Context(), callerID(r), chi.URLParam(r, "catalogId"), chi.URLParam(r, "productId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func callerID(r *http.Request) string {
	id, _ := middleware.IdentityFromContext(r.Context())
	return id.UID
}
