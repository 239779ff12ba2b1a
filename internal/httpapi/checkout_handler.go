package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mousdieng/buy01/internal/checkout"
	"github.com/mousdieng/buy01/internal/domain"
	"github.com/mousdieng/buy01/internal/gateway"
	"github.com/mousdieng/buy01/internal/telemetry"
)

// CheckoutHandler exposes the checkout flow to the browser. Each handler
// resolves the caller's orchestrator and dispatches one intent.
type CheckoutHandler struct {
	sessions *SessionManager
	orders   *gateway.OrderGateway
	metrics  *telemetry.CheckoutMetrics
	timeout  time.Duration
}

func NewCheckoutHandler(sessions *SessionManager, orders *gateway.OrderGateway, metrics *telemetry.CheckoutMetrics, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		orders:   orders,
		metrics:  metrics,
		timeout:  timeout,
	}
}

func (h *CheckoutHandler) orchestrator(r *http.Request) (*checkout.Orchestrator, context.Context, context.CancelFunc, bool) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		return nil, nil, nil, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	return h.sessions.Get(userID), ctx, cancel, true
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	orch, ctx, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	if err := orch.Initialize(ctx); err != nil {
		h.metrics.Observe("initialize", "error", start)
		handleCheckoutError(w, err)
		return
	}
	// resumption candidates are advisory; their absence never blocks entry
	if err := orch.LoadIncompleteOrders(ctx); err != nil {
		h.metrics.Observe("load_incomplete", "error", start)
	}
	h.metrics.Observe("initialize", "ok", start)
	respondJSON(w, http.StatusOK, orch.Snapshot())
}

// GET /api/v1/checkout
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	orch, _, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()
	respondJSON(w, http.StatusOK, orch.Snapshot())
}

// PUT /api/v1/checkout/shipping-location
func (h *CheckoutHandler) UpdateShippingLocation(w http.ResponseWriter, r *http.Request) {
	orch, _, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	var selection domain.LocationSelection
	if err := json.NewDecoder(r.Body).Decode(&selection); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	orch.UpdateShippingLocation(selection)
	respondJSON(w, http.StatusOK, orch.Snapshot())
}

// PUT /api/v1/checkout/billing-location
func (h *CheckoutHandler) UpdateBillingLocation(w http.ResponseWriter, r *http.Request) {
	orch, _, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	var selection domain.LocationSelection
	if err := json.NewDecoder(r.Body).Decode(&selection); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	orch.UpdateBillingLocation(selection)
	respondJSON(w, http.StatusOK, orch.Snapshot())
}

type sameAsShippingDTO struct {
	SameAsShipping bool `json:"sameAsShipping"`
}

// PUT /api/v1/checkout/same-as-shipping
func (h *CheckoutHandler) SetSameAsShipping(w http.ResponseWriter, r *http.Request) {
	orch, _, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	var req sameAsShippingDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	orch.SetSameAsShipping(req.SameAsShipping)
	respondJSON(w, http.StatusOK, orch.Snapshot())
}

// POST /api/v1/checkout/validate
func (h *CheckoutHandler) ValidateLocations(w http.ResponseWriter, r *http.Request) {
	orch, _, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	var req sameAsShippingDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := orch.ValidateLocationSelections(req.SameAsShipping); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// POST /api/v1/checkout/order
func (h *CheckoutHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	orch, ctx, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	var form domain.CheckoutFormData
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if form.Email == "" {
		respondError(w, http.StatusBadRequest, "missing_email", "email is required")
		return
	}
	if err := orch.ValidateLocationSelections(form.SameAsShipping); err != nil {
		h.metrics.Observe("create_order", "validation_failed", start)
		handleCheckoutError(w, err)
		return
	}

	order, err := orch.CreateIncompleteOrder(ctx, form)
	if err != nil {
		h.metrics.Observe("create_order", "error", start)
		handleCheckoutError(w, err)
		return
	}
	h.metrics.Observe("create_order", "ok", start)
	respondJSON(w, http.StatusCreated, order)
}

type processPaymentDTO struct {
	Email string `json:"email"`
}

// POST /api/v1/checkout/payment
func (h *CheckoutHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	orch, ctx, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	var req processPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result := orch.ProcessPayment(ctx, req.Email)
	switch {
	case result.Success:
		h.metrics.Payments.WithLabelValues("succeeded").Inc()
	case result.RequiresAction:
		h.metrics.Payments.WithLabelValues("requires_action").Inc()
	case result.ConfirmationPending:
		h.metrics.Payments.WithLabelValues("confirmation_pending").Inc()
	default:
		h.metrics.Payments.WithLabelValues("failed").Inc()
	}
	h.metrics.Observe("process_payment", paymentResultLabel(result), start)
	respondJSON(w, http.StatusOK, result)
}

func paymentResultLabel(result checkout.PaymentResult) string {
	if result.Success {
		return "ok"
	}
	return "error"
}

// POST /api/v1/checkout/payment/retry
func (h *CheckoutHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	orch, _, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	if err := orch.RetryPayment(); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orch.Snapshot())
}

// POST /api/v1/checkout/payment/confirm-retry
func (h *CheckoutHandler) RetryConfirmation(w http.ResponseWriter, r *http.Request) {
	orch, ctx, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	if err := orch.RetryConfirmation(ctx); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orch.Snapshot())
}

// GET /api/v1/checkout/incomplete
func (h *CheckoutHandler) IncompleteOrders(w http.ResponseWriter, r *http.Request) {
	orch, ctx, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	if err := orch.LoadIncompleteOrders(ctx); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orch.Snapshot().IncompleteOrders)
}

// POST /api/v1/checkout/select/{order_id}
func (h *CheckoutHandler) SelectOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	orch, ctx, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	order, err := h.orders.OrderByID(ctx, orderID)
	if err != nil {
		h.metrics.Observe("select_order", "error", start)
		handleCheckoutError(w, err)
		return
	}
	if err := orch.SelectIncompleteOrder(ctx, *order); err != nil {
		h.metrics.Observe("select_order", "error", start)
		handleCheckoutError(w, err)
		return
	}
	h.metrics.Observe("select_order", "ok", start)
	respondJSON(w, http.StatusOK, orch.Snapshot())
}

// DELETE /api/v1/checkout/select
func (h *CheckoutHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	orch, _, cancel, ok := h.orchestrator(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	defer cancel()

	if err := orch.ClearOrderSelection(); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orch.Snapshot())
}

// DELETE /api/v1/checkout
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	h.sessions.Drop(userID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
