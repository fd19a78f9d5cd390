package handler

import (
	"net/http"

	"github.com/catalogomaker/backend/internal/api/v1/dto"
	"github.com/catalogomaker/backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type AccountHandler struct {
	svc      service.AccountService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewAccountHandler(svc service.AccountService, v *validator.Validate, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, validate: v, logger: logger.With().Str("handler", "AccountHandler").Logger()}
}

// RegisterRoutes mounts v1 account routes
func (h *AccountHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Post("/accounts", h.createAccount)
	r.With(authMw).Delete("/accounts", h.deleteAccount)
	r.Get("/accounts/{uid}", h.getAccount)
}

// createAccount godoc
// @Summary Create or fetch an account
// @Description Provisions the account on first sign-in. An existing uid returns the stored record unchanged.
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body dto.AccountCreateRequest true "Account"
// @Success 201 {object} dto.AccountResponse "created"
// @Success 200 {object} dto.AccountResponse "already existed"
// @Failure 400 {object} errorResponse
// @Router /accounts [post]
func (h *AccountHandler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.AccountCreateRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid create account payload")
		writeError(w, h.logger, http.StatusBadRequest, msgInvalidParams)
		return
	}

	acc, created, err := h.svc.Create(r.Context(), req.UID, req.Email, req.Username)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, h.logger, status, toAccountResponse(acc))
}

// getAccount godoc
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Param uid path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} errorResponse
// @Router /accounts/{uid} [get]
func (h *AccountHandler) getAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.Get(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toAccountResponse(acc))
}

// deleteAccount godoc
// @Summary Delete the caller's account
// @Description Cancels the active subscription, then removes the account with its catalogs and products.
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param account body dto.AccountDeleteRequest true "Account to delete"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /accounts [delete]
func (h *AccountHandler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.AccountDeleteRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, msgInvalidParams)
		return
	}
	if err := requireSelf(r, req.UID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := h.svc.Delete(r.Context(), req.UID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Conta excluída com sucesso"})
}
