package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart means checkout was entered with no items. Terminal for
	// checkout entry; the user has to go back to the shop.
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

	// ErrNotInitialized means payment was attempted before the payment
	// bridge or its form were set up. A sequencing defect: fail closed.
	ErrNotInitialized = errors.New("payment system not initialized")

	// ErrIllegalTransition rejects an operation invoked from a phase that
	// does not permit it, including re-entering an in-flight operation.
	ErrIllegalTransition = errors.New("illegal transition of checkout phase")

	// ErrStaleSession means an async result arrived after the session was
	// reset; the result has been discarded.
	ErrStaleSession = errors.New("checkout session superseded, result discarded")
)

// ValidationError reports an incomplete address selection. Recoverable: the
// user corrects the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// AvailabilityError reports that stock changed since the cart was built.
// Recoverable: the user adjusts quantities.
type AvailabilityError struct {
	Message string
}

func (e *AvailabilityError) Error() string {
	if e.Message == "" {
		return "product not available"
	}
	return fmt.Sprintf("product not available: %s", e.Message)
}

// GatewayError wraps a network/backend failure on order create or confirm.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("order gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
