package handler

import (
	"net/http"

	"github.com/catalogomaker/backend/internal/api/v1/dto"
	"github.com/catalogomaker/backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type OrderHandler struct {
	svc      service.OrderService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewOrderHandler(svc service.OrderService, v *validator.Validate, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, validate: v, logger: logger.With().Str("handler", "OrderHandler").Logger()}
}

// RegisterRoutes mounts v1 order routes. Both are public.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/accounts/{uid}/orders", h.listOrders)
	r.Post("/catalogs/{catalogId}/orders", h.placeOrder)
}

// listOrders godoc
// @Summary List orders received by an account
// @Tags orders
// @Produce json
// @Param uid path string true "Account ID"
// @Success 200 {array} dto.OrderResponse
// @Router /accounts/{uid}/orders [get]
func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListByOwner(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	resp := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// placeOrder godoc
// @Summary Place an order on a public catalog
// @Description Prices come from the stored products. The merchant is notified on WhatsApp.
// @Tags orders
// @Accept json
// @Produce json
// @Param catalogId path string true "Catalog ID"
// @Param order body dto.OrderCreateRequest true "Order"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /catalogs/{catalogId}/orders [post]
func (h *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderCreateRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, msgInvalidParams)
		return
	}
	in := service.PlaceOrderInput{CustomerName: req.CustomerName, CustomerPhone: req.CustomerPhone}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	o, err := h.svc.Place(r.Context(), chi.URLParam(r, "catalogId"), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, toOrderResponse(*o))
}
