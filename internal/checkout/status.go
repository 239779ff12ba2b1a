package checkout

// Phase is the checkout session lifecycle state. Async entry points are only
// callable from the phases that permit them; everything else is rejected with
// ErrIllegalTransition instead of relying on callers to check a flag first.
type Phase string

const (
	PhaseEmpty            Phase = "EMPTY"
	PhaseLoading          Phase = "LOADING"
	PhaseCartReady        Phase = "CART_READY"
	PhaseOrderSelected    Phase = "ORDER_SELECTED"
	PhaseOrderCreated     Phase = "ORDER_CREATED"
	PhasePaymentFormShown Phase = "PAYMENT_FORM_SHOWN"
	PhasePaymentFailed    Phase = "PAYMENT_FAILED"
	PhasePaymentSucceeded Phase = "PAYMENT_SUCCEEDED"
	PhaseConfirmed        Phase = "CONFIRMED"
)

// String representation (for logging)
func (p Phase) String() string {
	return string(p)
}

// IsTerminal reports whether the session can make no further progress.
// Empty is the initial point; Confirmed ends a successful purchase.
func (p Phase) IsTerminal() bool {
	return p == PhaseConfirmed
}

var transitions = map[Phase][]Phase{
	// an incomplete order can be resumed even when the cart never loaded
	PhaseEmpty:   {PhaseLoading, PhaseOrderSelected},
	PhaseLoading: {PhaseCartReady, PhaseOrderSelected, PhaseEmpty},
	// CartReady may reload (clearing a selection re-initializes the cart).
	PhaseCartReady:     {PhaseLoading, PhaseOrderSelected, PhaseOrderCreated},
	PhaseOrderSelected: {PhasePaymentFormShown, PhaseCartReady, PhaseOrderSelected},
	PhaseOrderCreated:  {PhasePaymentFormShown, PhaseCartReady},
	// charge and backend confirmation may both land in one payment call,
	// so Confirmed is reachable without an observable PaymentSucceeded stop
	PhasePaymentFormShown: {PhasePaymentSucceeded, PhasePaymentFailed, PhaseConfirmed, PhaseCartReady, PhaseOrderSelected},
	PhasePaymentFailed:    {PhasePaymentFormShown, PhaseCartReady, PhaseOrderSelected},
	PhasePaymentSucceeded: {PhaseConfirmed, PhasePaymentSucceeded},
	PhaseConfirmed:        {},
}

// CanTransition reports whether the session may move from one phase to
// another. Reset back to Empty is always allowed and not part of the table.
func CanTransition(from, to Phase) bool {
	if to == PhaseEmpty {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
