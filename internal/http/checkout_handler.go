package http

import (
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	checkout *checkout.Service
	log      *zap.Logger
	maxBody  int64
}

func NewCheckoutHandler(c *checkout.Service, maxBody int64, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: c, log: log, maxBody: maxBody}
}

type CheckoutRequestDTO struct {
	IdempotencyKey string `json:"idempotency_key"`
	checkout.Form
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	summary, err := h.checkout.Begin()
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// POST /api/v1/checkout
func (h *CheckoutHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	order, err := h.checkout.Submit(r.Context(), req.IdempotencyKey, req.Form)
	if errors.Is(err, checkout.ErrAlreadyCompleted) {
		logger.WithContext(r.Context(), h.log).Info("duplicate checkout request",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.String("order_id", order.OrderID))
		respondJSON(w, http.StatusOK, order)
		return
	}
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}
