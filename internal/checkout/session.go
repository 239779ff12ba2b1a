package checkout

import "github.com/mousdieng/buy01/internal/domain"

// Session is the full state of one checkout flow. The orchestrator owns a
// single mutable instance; everything handed to subscribers or returned from
// Snapshot is a deep-enough copy that callers can never mutate live state.
type Session struct {
	Phase Phase `json:"phase"`

	// Generation identifies which incarnation of the session produced this
	// snapshot. Reset bumps it; late async results from an older generation
	// are discarded instead of applied.
	Generation uint64 `json:"generation"`

	// Cart is the most recently fetched cart. Only authoritative while no
	// order has been selected.
	Cart *domain.Cart `json:"cart"`

	// Items is the display-ready projection of the authoritative source.
	Items []domain.CheckoutItem `json:"items"`

	OrderSummary     *domain.OrderSummary `json:"orderSummary"`
	IncompleteOrders []domain.Order       `json:"incompleteOrders"`

	// SelectedOrder supersedes the cart as source of truth when present.
	SelectedOrder *domain.Order `json:"selectedOrder"`

	// IsFormNeeded is false when resuming an incomplete order: the order
	// already carries addresses, so the order form is skipped.
	IsFormNeeded bool `json:"isFormNeeded"`

	ShippingLocation domain.LocationSelection `json:"shippingLocationSelection"`
	BillingLocation  domain.LocationSelection `json:"billingLocationSelection"`
	SameAsShipping   bool                     `json:"sameAsShipping"`

	IsLoadingCart       bool `json:"isLoading"`
	IsCreatingOrder     bool `json:"isCreatingOrder"`
	IsProcessingPayment bool `json:"isProcessingPayment"`
	ShowPaymentForm     bool `json:"showPaymentForm"`
}

func defaultSession(generation uint64) Session {
	return Session{
		Phase:        PhaseEmpty,
		Generation:   generation,
		IsFormNeeded: true,
	}
}

// clone copies the session so a published snapshot cannot alias live state.
// Orders and carts are treated as immutable once fetched, so slice contents
// are shared; the slices and selections themselves are copied.
func (s Session) clone() Session {
	c := s
	if s.Cart != nil {
		cart := *s.Cart
		cart.Items = append([]domain.CartItem(nil), s.Cart.Items...)
		c.Cart = &cart
	}
	if s.SelectedOrder != nil {
		order := *s.SelectedOrder
		c.SelectedOrder = &order
	}
	c.Items = append([]domain.CheckoutItem(nil), s.Items...)
	c.IncompleteOrders = append([]domain.Order(nil), s.IncompleteOrders...)
	if s.OrderSummary != nil {
		summary := *s.OrderSummary
		summary.Items = append([]domain.SummaryLine(nil), s.OrderSummary.Items...)
		c.OrderSummary = &summary
	}
	c.ShippingLocation = s.ShippingLocation.Clone()
	c.BillingLocation = s.BillingLocation.Clone()
	return c
}
