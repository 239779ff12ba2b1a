package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mousdieng/buy01/internal/domain"
	"github.com/mousdieng/buy01/internal/gateway"
)

// OrdersHandler proxies order history and search for account pages.
type OrdersHandler struct {
	orders  *gateway.OrderGateway
	timeout time.Duration
}

func NewOrdersHandler(orders *gateway.OrderGateway, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	order, err := h.orders.OrderByID(ctx, orderID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// GET /api/v1/orders/search
func (h *OrdersHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	params := gateway.OrderSearchParams{
		Keyword:       r.URL.Query().Get("keyword"),
		Status:        domain.OrderStatus(r.URL.Query().Get("status")),
		PaymentStatus: domain.PaymentStatus(r.URL.Query().Get("paymentStatus")),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		params.Page = page
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		params.Size = size
	}
	if startDate, err := time.Parse("2006-01-02", r.URL.Query().Get("startDate")); err == nil {
		params.StartDate = &startDate
	}
	if endDate, err := time.Parse("2006-01-02", r.URL.Query().Get("endDate")); err == nil {
		params.EndDate = &endDate
	}

	result, err := h.orders.SearchOrders(ctx, params)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
