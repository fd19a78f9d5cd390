package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/catalogomaker/backend/internal/api/v1/dto"
	"github.com/catalogomaker/backend/internal/auth"
	"github.com/catalogomaker/backend/internal/middleware"
	"github.com/catalogomaker/backend/internal/model"
	"github.com/catalogomaker/backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Client-facing messages are generic on purpose; details go to the log.
const (
	msgInvalidParams   = "Parâmetros inválidos"
	msgUnauthorized    = "Acesso não autorizado"
	msgPremiumRequired = "Assinatura premium necessária"
	msgNotFound        = "Recurso não encontrado"
	msgUpstream        = "Falha ao comunicar com serviço externo"
	msgUnavailable     = "Serviço indisponível"
	msgInternal        = "Erro interno do servidor"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, status int, msg string) {
	writeJSON(w, logger, status, errorResponse{Error: msg})
}

// writeServiceError maps service error kinds to status codes.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var upErr *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, logger, http.StatusBadRequest, msgInvalidParams)
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, auth.ErrUnauthorized):
		writeError(w, logger, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, service.ErrPremiumRequired):
		writeError(w, logger, http.StatusForbidden, msgPremiumRequired)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, logger, http.StatusNotFound, msgNotFound)
	case errors.Is(err, service.ErrUnavailable):
		writeError(w, logger, http.StatusServiceUnavailable, msgUnavailable)
	case errors.As(err, &upErr):
		logger.Error().Err(err).Msg("upstream call failed")
		writeError(w, logger, http.StatusBadGateway, msgUpstream)
	default:
		logger.Error().Err(err).Msg("internal error")
		writeError(w, logger, http.StatusInternalServerError, msgInternal)
	}
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func decodeAndValidate(r *http.Request, v *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return v.Struct(dst)
}

// requireSelf checks that the verified caller is the account the request targets.
func requireSelf(r *http.Request, uid string) error {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok || id.UID != uid {
		return service.ErrUnauthorized
	}
	return nil
}

func toAccountResponse(a *model.Account) dto.AccountResponse {
	return dto.AccountResponse{
		UID:                a.ID,
		Email:              a.Email,
		Username:           a.Username,
		Premium:            a.Premium,
		LastSubscriptionID: a.LastSubscriptionID,
	}
}

func toProductResponse(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		CatalogID:   p.CatalogID,
		Name:        p.Name,
		PriceCents:  p.PriceCents,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Attributes:  p.Attributes,
		CreatedAt:   p.CreatedAt,
	}
}

func toCatalogResponse(c model.Catalog, products []model.Product) dto.CatalogResponse {
	resp := dto.CatalogResponse{
		ID:               c.ID,
		OwnerAccountID:   c.OwnerAccountID,
		Name:             c.Name,
		BannerURL:        c.BannerURL,
		StoreDescription: c.StoreDescription,
		WhatsAppPhone:    c.WhatsAppPhone,
		Products:         make([]dto.ProductResponse, 0, len(products)),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	for _, p := range products {
		resp.Products = append(resp.Products, toProductResponse(p))
	}
	return resp
}

func toOrderResponse(o model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:            o.ID,
		CatalogID:     o.CatalogID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Items:         make([]dto.OrderItemResponse, 0, len(o.Items)),
		TotalCents:    o.TotalCents,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ProductID:      it.ProductID,
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	return resp
}
