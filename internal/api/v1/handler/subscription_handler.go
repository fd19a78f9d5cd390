package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/catalogomaker/backend/internal/api/v1/dto"
	"github.com/catalogomaker/backend/internal/config"
	"github.com/catalogomaker/backend/internal/idempotency"
	"github.com/catalogomaker/backend/internal/model"
	"github.com/catalogomaker/backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxWebhookBody = 64 << 10

// BillingEventApplier applies a verified billing event to account state.
type BillingEventApplier interface {
	Apply(ctx context.Context, ev model.BillingEvent) (service.Outcome, error)
}

// SubscriptionHandler handles payment links and billing webhooks.
type SubscriptionHandler struct {
	billing    service.BillingGateway
	reconciler BillingEventApplier
	ledger     idempotency.Ledger
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(billing service.BillingGateway, reconciler BillingEventApplier, ledger idempotency.Ledger, v *validator.Validate, logger zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		billing:    billing,
		reconciler: reconciler,
		ledger:     ledger,
		validate:   v,
		logger:     logger.With().Str("handler", "SubscriptionHandler").Logger(),
	}
}

// RegisterRoutes registers the subscription endpoints.
func (h *SubscriptionHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.With(authMw).Post("/payment-links", h.PaymentLink)
	r.Post("/webhook", h.Webhook)
}

// PaymentLink godoc
// @Summary Get a Stripe payment link for a plan
// @Description Reuses the account's active link for the same plan when one exists.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PaymentLinkRequest true "Plan (1 monthly, 2 quarterly, 3 annual)"
// @Success 200 {object} dto.PaymentLinkResponse "reused link"
// @Success 201 {object} dto.PaymentLinkResponse "new link"
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /payment-links [post]
func (h *SubscriptionHandler) PaymentLink(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentLinkRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, msgInvalidParams)
		return
	}
	if err := requireSelf(r, req.UID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	url, reused, err := h.billing.CreateOrReusePaymentLink(r.Context(), req.UID, config.PlanTier(req.RecurrenceType))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	status := http.StatusCreated
	if reused {
		status = http.StatusOK
	}
	writeJSON(w, h.logger, status, dto.PaymentLinkResponse{PaymentLink: url})
}

// Webhook godoc
// @Summary Stripe webhook receiver
// @Description Verifies the Stripe-Signature header and applies the event once per event id.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookResponse
// @Failure 400 {object} errorResponse "invalid signature"
// @Failure 409 {object} errorResponse "same event still being processed"
// @Failure 500 {object} errorResponse
// @Router /webhook [post]
func (h *SubscriptionHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, msgInvalidParams)
		return
	}

	ev, err := h.billing.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			writeError(w, h.logger, http.StatusBadRequest, "Assinatura inválida")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	log := h.logger.With().Str("event_id", ev.EventID()).Str("event_type", ev.EventType()).Logger()

	outcome := service.Ignored
	already, err := h.ledger.Do(r.Context(), ev.EventID(), func(ctx context.Context) error {
		var applyErr error
		outcome, applyErr = h.reconciler.Apply(ctx, ev)
		return applyErr
	})
	switch {
	case errors.Is(err, idempotency.ErrInFlight):
		log.Info().Msg("Event already in flight, asking sender to retry")
		writeError(w, h.logger, http.StatusConflict, "Evento em processamento")
		return
	case err != nil:
		log.Error().Err(err).Msg("Failed to apply billing event")
		writeError(w, h.logger, http.StatusInternalServerError, msgInternal)
		return
	case already:
		log.Info().Msg("Duplicate event delivery")
		writeJSON(w, h.logger, http.StatusOK, dto.WebhookResponse{Received: true, Status: "duplicate"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.WebhookResponse{Received: true, Status: outcome.String()})
}
