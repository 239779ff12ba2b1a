// Package checkout owns the checkout session: one mutable aggregate
// reconciling the cart, an in-progress order, address selection and the
// payment-intent lifecycle. Every mutation publishes a full snapshot;
// subscribers only ever see the latest value.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mousdieng/buy01/internal/domain"
	"github.com/mousdieng/buy01/internal/payment"
)

// CartStore is the shared cart collaborator. The orchestrator reads and
// clears it but never owns its internal state.
type CartStore interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// OrderGateway creates, confirms and lists orders against the backend.
type OrderGateway interface {
	CreateCheckout(ctx context.Context, form domain.CheckoutFormData) (*domain.Order, error)
	ConfirmOrder(ctx context.Context, paymentIntentID string) (*domain.Order, error)
	IncompleteOrders(ctx context.Context, page, size int) ([]domain.Order, error)
}

// ProductGateway re-validates stock before a charge is attempted.
type ProductGateway interface {
	Available(ctx context.Context, items []domain.AvailabilityRequest) error
}

// PaymentResult is the uniform outcome of a payment attempt.
type PaymentResult struct {
	Success         bool   `json:"success"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	// RequiresAction means the provider needs further user interaction;
	// the caller redirects, the orchestrator does not retry.
	RequiresAction bool   `json:"requiresAction,omitempty"`
	RedirectURL    string `json:"redirectUrl,omitempty"`
	// ConfirmationPending means the charge went through but the backend
	// confirmation failed; the order needs reconciliation, this is not a
	// plain success.
	ConfirmationPending bool   `json:"confirmationPending,omitempty"`
	Error               string `json:"error,omitempty"`
}

// Config wires one orchestrator to its collaborators.
type Config struct {
	UserID    string
	ReturnURL string
	Carts     CartStore
	Orders    OrderGateway
	Products  ProductGateway
	Bridge    payment.Bridge
	Logger    *slog.Logger
}

// Orchestrator owns a single checkout session for one user. All state is
// behind the mutex; network calls run outside it and re-check the session
// generation before applying their result, so a late response after Reset is
// discarded instead of resurrecting dead state.
type Orchestrator struct {
	userID    string
	returnURL string

	carts    CartStore
	orders   OrderGateway
	products ProductGateway
	bridge   payment.Bridge
	logger   *slog.Logger

	mu         sync.Mutex
	session    Session
	generation uint64
	subs       map[uint64]chan Session
	nextSubID  uint64
}

func NewOrchestrator(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		userID:    cfg.UserID,
		returnURL: cfg.ReturnURL,
		carts:     cfg.Carts,
		orders:    cfg.Orders,
		products:  cfg.Products,
		bridge:    cfg.Bridge,
		logger:    logger.With("component", "checkout", "user_id", cfg.UserID),
		subs:      make(map[uint64]chan Session),
	}
	o.session = defaultSession(o.generation)
	return o
}

// Snapshot returns a copy of the current session state.
func (o *Orchestrator) Snapshot() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.clone()
}

// Subscribe registers a latest-value listener: if the subscriber lags, stale
// snapshots are replaced rather than queued. The returned func unsubscribes.
func (o *Orchestrator) Subscribe() (<-chan Session, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextSubID
	o.nextSubID++
	ch := make(chan Session, 1)
	ch <- o.session.clone()
	o.subs[id] = ch

	cancel := func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if sub, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (o *Orchestrator) publishLocked() {
	o.session.Generation = o.generation
	snap := o.session.clone()
	for _, ch := range o.subs {
		// drop the stale snapshot if the subscriber has not read it yet
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (o *Orchestrator) recomputeSummaryLocked() {
	o.session.OrderSummary = deriveSummary(o.session.Cart, o.session.SelectedOrder)
}

// Initialize fetches the cart, prepares the payment bridge and derives the
// summary. An empty cart is terminal for checkout entry: ErrEmptyCart is
// returned and the session is left as it was.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.mu.Lock()
	if o.session.IsLoadingCart || !CanTransition(o.session.Phase, PhaseLoading) {
		phase := o.session.Phase
		o.mu.Unlock()
		return fmt.Errorf("%w: initialize from %s", ErrIllegalTransition, phase)
	}
	prev := o.session.Phase
	gen := o.generation
	o.session.Phase = PhaseLoading
	o.session.IsLoadingCart = true
	o.publishLocked()
	o.mu.Unlock()

	cart, err := o.carts.Get(ctx, o.userID)
	var bridgeErr error
	if err == nil && !cart.Empty() {
		bridgeErr = o.bridge.Initialize(ctx)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return ErrStaleSession
	}
	o.session.IsLoadingCart = false
	if err != nil {
		o.session.Phase = prev
		o.publishLocked()
		return &GatewayError{Op: "cart fetch", Err: err}
	}
	if cart.Empty() {
		o.session.Phase = prev
		o.publishLocked()
		return ErrEmptyCart
	}
	if bridgeErr != nil {
		o.session.Phase = prev
		o.publishLocked()
		return fmt.Errorf("initialize payment bridge: %w", bridgeErr)
	}

	o.session.Cart = cart
	o.session.Items = cartItems(cart)
	o.session.Phase = PhaseCartReady
	o.recomputeSummaryLocked()
	o.publishLocked()
	o.logger.InfoContext(ctx, "checkout initialized", "items", len(cart.Items))
	return nil
}

// LoadIncompleteOrders populates the resumption candidates. It does not
// change the phase; an empty result simply leaves the list empty.
func (o *Orchestrator) LoadIncompleteOrders(ctx context.Context) error {
	o.mu.Lock()
	gen := o.generation
	o.mu.Unlock()

	orders, err := o.orders.IncompleteOrders(ctx, 0, 10)
	if err != nil {
		return &GatewayError{Op: "incomplete orders", Err: err}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return ErrStaleSession
	}
	o.session.IncompleteOrders = orders
	o.publishLocked()
	return nil
}

// SelectIncompleteOrder makes a previously created, unpaid order the
// authoritative source, superseding the cart. Any mounted payment form is
// torn down first; if the order still carries a client secret, a fresh form
// is bound to it.
func (o *Orchestrator) SelectIncompleteOrder(ctx context.Context, order domain.Order) error {
	if err := o.bridge.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize payment bridge: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if !CanTransition(o.session.Phase, PhaseOrderSelected) {
		return fmt.Errorf("%w: select order from %s", ErrIllegalTransition, o.session.Phase)
	}

	o.bridge.ClearElements()
	o.session.SelectedOrder = &order
	o.session.IsFormNeeded = false
	o.session.ShowPaymentForm = false
	o.session.Phase = PhaseOrderSelected
	o.session.Items = orderItems(&order)
	o.recomputeSummaryLocked()

	if order.PaymentOutstanding() {
		if err := o.mountPaymentFormLocked(); err != nil {
			o.publishLocked()
			return err
		}
	}
	o.publishLocked()
	o.logger.InfoContext(ctx, "incomplete order selected", "order_id", order.ID)
	return nil
}

// ClearOrderSelection returns to the cart as source of truth. The caller is
// expected to re-run Initialize to reload cart contents.
func (o *Orchestrator) ClearOrderSelection() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !CanTransition(o.session.Phase, PhaseCartReady) {
		return fmt.Errorf("%w: clear selection from %s", ErrIllegalTransition, o.session.Phase)
	}

	o.bridge.ClearElements()
	o.session.SelectedOrder = nil
	o.session.IsFormNeeded = true
	o.session.ShowPaymentForm = false
	o.session.Phase = PhaseCartReady
	o.session.Items = cartItems(o.session.Cart)
	o.recomputeSummaryLocked()
	o.publishLocked()
	return nil
}

// UpdateShippingLocation writes the shipping selection. While sameAsShipping
// is set, billing is overwritten with a copy so it can never drift.
func (o *Orchestrator) UpdateShippingLocation(selection domain.LocationSelection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session.ShippingLocation = selection.Clone()
	if o.session.SameAsShipping {
		o.session.BillingLocation = selection.Clone()
	}
	o.publishLocked()
}

// UpdateBillingLocation writes the billing selection. Ignored while
// sameAsShipping is set, since billing mirrors shipping then.
func (o *Orchestrator) UpdateBillingLocation(selection domain.LocationSelection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session.SameAsShipping {
		return
	}
	o.session.BillingLocation = selection.Clone()
	o.publishLocked()
}

// SetSameAsShipping toggles the one-way billing sync. Enabling it
// immediately copies shipping over billing.
func (o *Orchestrator) SetSameAsShipping(same bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session.SameAsShipping = same
	if same {
		o.session.BillingLocation = o.session.ShippingLocation.Clone()
	}
	o.publishLocked()
}

// ValidateLocationSelections checks that payment may proceed: shipping must
// be fully selected, and billing too unless it mirrors shipping. Pure
// predicate, no state change.
func (o *Orchestrator) ValidateLocationSelections(sameAsShipping bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.session.ShippingLocation.Complete() {
		return &ValidationError{Field: "shipping", Reason: "country, state and city must all be selected"}
	}
	if !sameAsShipping && !o.session.BillingLocation.Complete() {
		return &ValidationError{Field: "billing", Reason: "country, state and city must all be selected"}
	}
	return nil
}

// CreateIncompleteOrder submits the assembled order payload. While one
// creation is in flight any second call is rejected without touching the
// network. On success the returned order becomes authoritative, the cart is
// cleared (fresh flow) and the payment form is bound to the new client
// secret.
func (o *Orchestrator) CreateIncompleteOrder(ctx context.Context, form domain.CheckoutFormData) (*domain.Order, error) {
	o.mu.Lock()
	if o.session.IsCreatingOrder {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: order creation already in flight", ErrIllegalTransition)
	}
	if !CanTransition(o.session.Phase, PhaseOrderCreated) {
		phase := o.session.Phase
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: create order from %s", ErrIllegalTransition, phase)
	}
	gen := o.generation
	o.session.IsCreatingOrder = true
	o.assembleFormLocked(&form)
	o.publishLocked()
	o.mu.Unlock()

	order, err := o.orders.CreateCheckout(ctx, form)
	if err == nil {
		// fresh flow: the cart has been turned into an order, drop it
		if clearErr := o.carts.Clear(ctx, o.userID); clearErr != nil {
			o.logger.WarnContext(ctx, "cart clear after order creation failed", "error", clearErr)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return nil, ErrStaleSession
	}
	o.session.IsCreatingOrder = false
	if err != nil {
		o.publishLocked()
		return nil, &GatewayError{Op: "create", Err: err}
	}

	o.session.SelectedOrder = order
	o.session.Cart = nil
	o.session.Items = orderItems(order)
	o.session.Phase = PhaseOrderCreated
	o.recomputeSummaryLocked()
	if mountErr := o.mountPaymentFormLocked(); mountErr != nil {
		o.publishLocked()
		return order, mountErr
	}
	o.publishLocked()
	o.logger.InfoContext(ctx, "incomplete order created", "order_id", order.ID)
	return order, nil
}

// assembleFormLocked folds the tracked location selections into the
// addresses and defaults billing to shipping when requested.
func (o *Orchestrator) assembleFormLocked(form *domain.CheckoutFormData) {
	if form.Shipping != nil {
		form.Shipping.Location = o.session.ShippingLocation.Clone()
	}
	if form.SameAsShipping || form.Billing == nil {
		if form.Shipping != nil {
			billing := *form.Shipping
			billing.Location = o.session.ShippingLocation.Clone()
			form.Billing = &billing
		}
	} else {
		form.Billing.Location = o.session.BillingLocation.Clone()
	}
	if len(form.Items) == 0 && o.session.Cart != nil {
		for _, item := range o.session.Cart.Items {
			form.Items = append(form.Items, domain.CheckoutItemRef{
				ID:       item.Item.Product.ID,
				Quantity: item.Quantity,
			})
		}
	}
}

// ProcessPayment confirms the payment bound to the mounted form. Stock is
// re-validated first as a hard precondition. A requires-action outcome is
// surfaced, never retried internally. If the charge succeeds but the backend
// confirmation fails, the result reports confirmation-pending instead of a
// plain success.
func (o *Orchestrator) ProcessPayment(ctx context.Context, email string) PaymentResult {
	o.mu.Lock()
	if o.bridge == nil || !o.bridge.Initialized() || !o.bridge.HasElements() || o.session.SelectedOrder == nil {
		o.mu.Unlock()
		return PaymentResult{Error: "payment system not initialized, refresh and try again"}
	}
	if o.session.IsProcessingPayment || o.session.Phase != PhasePaymentFormShown {
		o.mu.Unlock()
		return PaymentResult{Error: ErrIllegalTransition.Error()}
	}
	gen := o.generation
	order := *o.session.SelectedOrder
	if email == "" {
		email = order.Email
	}
	o.session.IsProcessingPayment = true
	o.publishLocked()
	o.mu.Unlock()

	available := make([]domain.AvailabilityRequest, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		available = append(available, domain.AvailabilityRequest{
			ID:       item.ProductID,
			Quantity: item.Quantity,
		})
	}
	if err := o.products.Available(ctx, available); err != nil {
		return o.finishPayment(ctx, gen, PhasePaymentFailed, PaymentResult{
			Error: (&AvailabilityError{Message: err.Error()}).Error(),
		})
	}

	result, err := o.bridge.ConfirmPayment(ctx, payment.ConfirmParams{
		ReturnURL:    o.returnURL,
		ReceiptEmail: email,
	})
	if err != nil {
		return o.finishPayment(ctx, gen, PhasePaymentFailed, PaymentResult{
			Error: fmt.Sprintf("payment failed: %v", err),
		})
	}

	switch result.Outcome {
	case payment.OutcomeRequiresAction:
		return o.finishPayment(ctx, gen, PhasePaymentFormShown, PaymentResult{
			RequiresAction:  true,
			PaymentIntentID: result.PaymentIntentID,
			RedirectURL:     result.RedirectURL,
		})
	case payment.OutcomeSucceeded:
		if _, confirmErr := o.orders.ConfirmOrder(ctx, result.PaymentIntentID); confirmErr != nil {
			o.logger.ErrorContext(ctx, "order confirmation failed after successful charge",
				"order_id", order.ID, "payment_intent_id", result.PaymentIntentID, "error", confirmErr)
			return o.finishPayment(ctx, gen, PhasePaymentSucceeded, PaymentResult{
				ConfirmationPending: true,
				PaymentIntentID:     result.PaymentIntentID,
				Error:               "payment succeeded but order confirmation is pending, retry confirmation",
			})
		}
		return o.finishPayment(ctx, gen, PhaseConfirmed, PaymentResult{
			Success:         true,
			PaymentIntentID: result.PaymentIntentID,
		})
	default:
		message := result.Message
		if message == "" {
			message = "payment failed, try again"
		}
		return o.finishPayment(ctx, gen, PhasePaymentFailed, PaymentResult{Error: message})
	}
}

// finishPayment clears the in-flight flag on every exit path and applies the
// resulting phase, unless the session has been reset in the meantime.
func (o *Orchestrator) finishPayment(ctx context.Context, gen uint64, phase Phase, result PaymentResult) PaymentResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		o.logger.WarnContext(ctx, "discarding payment result for superseded session")
		return result
	}
	o.session.IsProcessingPayment = false
	if phase == o.session.Phase || CanTransition(o.session.Phase, phase) {
		o.session.Phase = phase
	}
	if result.PaymentIntentID != "" && o.session.SelectedOrder != nil {
		o.session.SelectedOrder.StripePaymentIntentID = result.PaymentIntentID
	}
	o.publishLocked()
	return result
}

// RetryConfirmation retries the backend confirmation for a charge that
// already went through. Only callable from the payment-succeeded phase.
func (o *Orchestrator) RetryConfirmation(ctx context.Context) error {
	o.mu.Lock()
	if o.session.Phase != PhasePaymentSucceeded || o.session.SelectedOrder == nil {
		phase := o.session.Phase
		o.mu.Unlock()
		return fmt.Errorf("%w: retry confirmation from %s", ErrIllegalTransition, phase)
	}
	gen := o.generation
	intentID := o.session.SelectedOrder.StripePaymentIntentID
	o.mu.Unlock()

	if _, err := o.orders.ConfirmOrder(ctx, intentID); err != nil {
		return &GatewayError{Op: "confirm", Err: err}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return ErrStaleSession
	}
	o.session.Phase = PhaseConfirmed
	o.publishLocked()
	return nil
}

// RetryPayment re-binds the payment form to the selected order's existing
// client secret without re-creating the order.
func (o *Orchestrator) RetryPayment() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session.SelectedOrder == nil || o.session.SelectedOrder.StripeClientSecret == "" {
		return ErrNotInitialized
	}
	if !CanTransition(o.session.Phase, PhasePaymentFormShown) {
		return fmt.Errorf("%w: retry payment from %s", ErrIllegalTransition, o.session.Phase)
	}
	if err := o.mountPaymentFormLocked(); err != nil {
		return err
	}
	o.publishLocked()
	return nil
}

func (o *Orchestrator) mountPaymentFormLocked() error {
	order := o.session.SelectedOrder
	if order == nil || order.StripeClientSecret == "" {
		return ErrNotInitialized
	}
	if err := o.bridge.CreateElements(order.StripeClientSecret); err != nil {
		return fmt.Errorf("bind payment form: %w", err)
	}
	o.session.ShowPaymentForm = true
	o.session.Phase = PhasePaymentFormShown
	return nil
}

// Reset restores the default session state and bumps the generation so any
// still-outstanding async result is discarded on arrival. Outstanding
// network calls are not aborted, only ignored.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.bridge.ClearElements()
	o.session = defaultSession(o.generation)
	o.publishLocked()
}
