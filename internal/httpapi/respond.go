package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/mousdieng/buy01/internal/checkout"
	"github.com/mousdieng/buy01/internal/gateway"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleCheckoutError maps orchestrator and gateway failures onto HTTP.
func handleCheckoutError(w http.ResponseWriter, err error) {
	var validationErr *checkout.ValidationError
	var availabilityErr *checkout.AvailabilityError
	var gatewayErr *checkout.GatewayError
	var apiErr *gateway.APIError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, checkout.ErrNotInitialized):
		respondError(w, http.StatusConflict, "not_initialized", err.Error())
	case errors.Is(err, checkout.ErrStaleSession):
		respondError(w, http.StatusConflict, "stale_session", err.Error())
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.As(err, &availabilityErr):
		respondError(w, http.StatusConflict, "product_unavailable", err.Error())
	case errors.As(err, &apiErr):
		respondError(w, apiErr.StatusCode, "backend_error", apiErr.Message)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, http.StatusServiceUnavailable, "backend_unavailable", "backend temporarily unavailable, try again shortly")
	case errors.As(err, &gatewayErr):
		respondError(w, http.StatusBadGateway, "gateway_error", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
