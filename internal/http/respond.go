package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/admin"
	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/session"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads a JSON body capped at limit bytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleError maps domain and remote errors to HTTP responses.
func handleError(ctx context.Context, log *zap.Logger, w http.ResponseWriter, err error) {
	var (
		validationErr *checkout.ValidationError
		apiErr        *apiclient.APIError
	)

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "checkout form is invalid",
			Code:   "validation_failed",
			Fields: validationErr.Fields,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "nothing to check out")
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		respondError(w, http.StatusConflict, "submission_in_progress", err.Error())
	case errors.Is(err, admin.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, catalog.ErrSuperseded):
		respondError(w, http.StatusConflict, "superseded", err.Error())
	case errors.Is(err, session.ErrIncompleteResponse):
		respondError(w, http.StatusBadGateway, "bad_gateway", "unexpected response from the shop API")
	case errors.As(err, &apiErr):
		status, code := upstreamStatus(apiErr)
		respondError(w, status, code, apiErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		logger.WithContext(ctx, log).Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func upstreamStatus(e *apiclient.APIError) (int, string) {
	switch {
	case e.StatusCode == 0 && errors.Is(e, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case e.StatusCode == 0:
		return http.StatusBadGateway, "upstream_unavailable"
	case e.StatusCode == http.StatusBadRequest:
		return http.StatusBadRequest, "invalid_argument"
	case e.StatusCode == http.StatusUnauthorized:
		return http.StatusUnauthorized, "unauthenticated"
	case e.StatusCode == http.StatusForbidden:
		return http.StatusForbidden, "permission_denied"
	case e.StatusCode == http.StatusNotFound:
		return http.StatusNotFound, "not_found"
	case e.StatusCode == http.StatusConflict:
		return http.StatusConflict, "already_exists"
	case e.StatusCode == http.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity, "invalid_argument"
	case e.StatusCode == http.StatusTooManyRequests:
		return http.StatusTooManyRequests, "rate_limit_exceeded"
	case e.StatusCode < 500:
		return http.StatusBadRequest, "invalid_argument"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}
