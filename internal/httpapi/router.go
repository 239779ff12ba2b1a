package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mousdieng/buy01/internal/telemetry"
)

// NewRouter assembles the public HTTP surface.
func NewRouter(checkoutHandler *CheckoutHandler, cartHandler *CartHandler, ordersHandler *OrdersHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Initialize)
			r.Get("/", checkoutHandler.State)
			r.Delete("/", checkoutHandler.Reset)
			r.Put("/shipping-location", checkoutHandler.UpdateShippingLocation)
			r.Put("/billing-location", checkoutHandler.UpdateBillingLocation)
			r.Put("/same-as-shipping", checkoutHandler.SetSameAsShipping)
			r.Post("/validate", checkoutHandler.ValidateLocations)
			r.Post("/order", checkoutHandler.CreateOrder)
			r.Post("/payment", checkoutHandler.ProcessPayment)
			r.Post("/payment/retry", checkoutHandler.RetryPayment)
			r.Post("/payment/confirm-retry", checkoutHandler.RetryConfirmation)
			r.Get("/incomplete", checkoutHandler.IncompleteOrders)
			r.Post("/select/{order_id}", checkoutHandler.SelectOrder)
			r.Delete("/select", checkoutHandler.ClearSelection)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/search", ordersHandler.Search)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})
	})

	return r
}
