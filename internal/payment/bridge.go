// Package payment wraps the third-party payment provider behind a small
// bridge: initialize once, bind a form to a server-issued client secret, and
// confirm the payment. The bridge instance and its mounted form belong to
// exactly one payment attempt; stale form reuse across orders is a defect, so
// the form must be cleared before a new one is created.
package payment

import (
	"context"
	"errors"
)

var (
	ErrNotInitialized = errors.New("payment bridge not initialized")
	ErrNoElements     = errors.New("no payment form mounted")
)

// Outcome classifies a confirmation attempt.
type Outcome string

const (
	// OutcomeSucceeded means the charge went through and the payment intent
	// identifier is definitive.
	OutcomeSucceeded Outcome = "SUCCEEDED"
	// OutcomeRequiresAction means the provider needs further user
	// interaction (3-D Secure and the like). The caller surfaces it and must
	// not retry internally.
	OutcomeRequiresAction Outcome = "REQUIRES_ACTION"
	// OutcomeDeclined means the provider rejected the payment.
	OutcomeDeclined Outcome = "DECLINED"
)

type ConfirmParams struct {
	ReturnURL    string
	ReceiptEmail string
}

type ConfirmResult struct {
	Outcome         Outcome
	PaymentIntentID string
	RedirectURL     string
	Message         string
}

// Bridge is the payment-provider surface the checkout orchestrator programs
// against. Implementations must make Initialize idempotent.
type Bridge interface {
	// Initialize prepares the provider client. Calling it again after a
	// successful call is a no-op.
	Initialize(ctx context.Context) error
	Initialized() bool

	// CreateElements binds a fresh payment form to the given client secret,
	// replacing any previously mounted form.
	CreateElements(clientSecret string) error
	HasElements() bool
	ClearElements()

	// ConfirmPayment confirms the payment bound to the mounted form. A nil
	// error with a non-succeeded outcome is a normal, recoverable result;
	// errors are reserved for transport-level failures.
	ConfirmPayment(ctx context.Context, params ConfirmParams) (*ConfirmResult, error)
}
