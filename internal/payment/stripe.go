package payment

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// elements models the mounted payment form: the client secret it was created
// from and the payment intent the secret binds to.
type elements struct {
	clientSecret    string
	paymentIntentID string
}

// StripeBridge implements Bridge over the Stripe PaymentIntents API.
type StripeBridge struct {
	apiKey string

	mu          sync.Mutex
	client      *paymentintent.Client
	form        *elements
	initialized bool
}

func NewStripeBridge(apiKey string) *StripeBridge {
	return &StripeBridge{apiKey: apiKey}
}

func (b *StripeBridge) Initialize(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}
	if b.apiKey == "" {
		return errors.New("stripe api key is not configured")
	}
	b.client = &paymentintent.Client{
		B:   stripe.GetBackend(stripe.APIBackend),
		Key: b.apiKey,
	}
	b.initialized = true
	return nil
}

func (b *StripeBridge) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

func (b *StripeBridge) CreateElements(clientSecret string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return ErrNotInitialized
	}
	intentID, err := intentIDFromClientSecret(clientSecret)
	if err != nil {
		return err
	}
	b.form = &elements{
		clientSecret:    clientSecret,
		paymentIntentID: intentID,
	}
	return nil
}

func (b *StripeBridge) HasElements() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.form != nil
}

func (b *StripeBridge) ClearElements() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.form = nil
}

func (b *StripeBridge) ConfirmPayment(ctx context.Context, params ConfirmParams) (*ConfirmResult, error) {
	b.mu.Lock()
	if !b.initialized {
		b.mu.Unlock()
		return nil, ErrNotInitialized
	}
	if b.form == nil {
		b.mu.Unlock()
		return nil, ErrNoElements
	}
	client := b.client
	form := *b.form
	b.mu.Unlock()

	confirmParams := &stripe.PaymentIntentConfirmParams{
		Params: stripe.Params{Context: ctx},
	}
	if params.ReturnURL != "" {
		confirmParams.ReturnURL = stripe.String(params.ReturnURL)
	}
	if params.ReceiptEmail != "" {
		confirmParams.ReceiptEmail = stripe.String(params.ReceiptEmail)
	}

	intent, err := client.Confirm(form.paymentIntentID, confirmParams)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return &ConfirmResult{
				Outcome: OutcomeDeclined,
				Message: stripeErr.Msg,
			}, nil
		}
		return nil, err
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing:
		return &ConfirmResult{
			Outcome:         OutcomeSucceeded,
			PaymentIntentID: intent.ID,
		}, nil
	case stripe.PaymentIntentStatusRequiresAction:
		result := &ConfirmResult{
			Outcome:         OutcomeRequiresAction,
			PaymentIntentID: intent.ID,
		}
		if intent.NextAction != nil && intent.NextAction.RedirectToURL != nil {
			result.RedirectURL = intent.NextAction.RedirectToURL.URL
		}
		return result, nil
	default:
		return &ConfirmResult{
			Outcome:         OutcomeDeclined,
			PaymentIntentID: intent.ID,
			Message:         "payment not completed, status " + string(intent.Status),
		}, nil
	}
}

// intentIDFromClientSecret extracts the payment intent identifier from a
// client secret of the form pi_123_secret_456.
func intentIDFromClientSecret(clientSecret string) (string, error) {
	secret := strings.TrimSpace(clientSecret)
	if secret == "" {
		return "", errors.New("empty client secret")
	}
	id, _, found := strings.Cut(secret, "_secret_")
	if !found || !strings.HasPrefix(id, "pi_") {
		return "", errors.New("malformed client secret")
	}
	return id, nil
}
