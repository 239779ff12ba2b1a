package checkout

import (
	"context"
	"sync"

	"github.com/mousdieng/buy01/internal/domain"
	"github.com/mousdieng/buy01/internal/payment"
)

// mockCartStore implements CartStore for testing
type mockCartStore struct {
	mu         sync.Mutex
	cart       *domain.Cart
	getErr     error
	clearErr   error
	getCalls   int
	clearCalls int

	// optional gates to hold a Get open while the test intervenes
	getStarted chan struct{}
	getRelease chan struct{}
}

func (m *mockCartStore) Get(_ context.Context, _ string) (*domain.Cart, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()
	if m.getStarted != nil {
		m.getStarted <- struct{}{}
	}
	if m.getRelease != nil {
		<-m.getRelease
	}
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.cart == nil {
		return &domain.Cart{}, nil
	}
	cart := *m.cart
	return &cart, nil
}

func (m *mockCartStore) Clear(_ context.Context, _ string) error {
	m.mu.Lock()
	m.clearCalls++
	m.mu.Unlock()
	return m.clearErr
}

// mockOrderGateway implements OrderGateway for testing
type mockOrderGateway struct {
	mu            sync.Mutex
	createOrder   *domain.Order
	createErr     error
	createCalls   int
	lastForm      domain.CheckoutFormData
	confirmErr    error
	confirmCalls  int
	confirmedWith []string
	incomplete    []domain.Order
	incompleteErr error

	createStarted chan struct{}
	createRelease chan struct{}
}

func (m *mockOrderGateway) CreateCheckout(_ context.Context, form domain.CheckoutFormData) (*domain.Order, error) {
	m.mu.Lock()
	m.createCalls++
	m.lastForm = form
	m.mu.Unlock()
	if m.createStarted != nil {
		m.createStarted <- struct{}{}
	}
	if m.createRelease != nil {
		<-m.createRelease
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	order := *m.createOrder
	return &order, nil
}

func (m *mockOrderGateway) ConfirmOrder(_ context.Context, paymentIntentID string) (*domain.Order, error) {
	m.mu.Lock()
	m.confirmCalls++
	m.confirmedWith = append(m.confirmedWith, paymentIntentID)
	m.mu.Unlock()
	if m.confirmErr != nil {
		return nil, m.confirmErr
	}
	return &domain.Order{ID: "confirmed", PaymentStatus: domain.PaymentStatusCompleted}, nil
}

func (m *mockOrderGateway) IncompleteOrders(_ context.Context, _, _ int) ([]domain.Order, error) {
	if m.incompleteErr != nil {
		return nil, m.incompleteErr
	}
	return m.incomplete, nil
}

// mockProductGateway implements ProductGateway for testing
type mockProductGateway struct {
	mu        sync.Mutex
	err       error
	calls     int
	lastItems []domain.AvailabilityRequest
}

func (m *mockProductGateway) Available(_ context.Context, items []domain.AvailabilityRequest) error {
	m.mu.Lock()
	m.calls++
	m.lastItems = items
	m.mu.Unlock()
	return m.err
}

// mockBridge implements payment.Bridge for testing
type mockBridge struct {
	mu            sync.Mutex
	initErr       error
	createErr     error
	confirmResult *payment.ConfirmResult
	confirmErr    error

	initialized  bool
	hasElements  bool
	boundSecrets []string
	clearCalls   int
	confirmCalls int
	lastParams   payment.ConfirmParams
}

func (m *mockBridge) Initialize(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initErr != nil {
		return m.initErr
	}
	m.initialized = true
	return nil
}

func (m *mockBridge) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

func (m *mockBridge) CreateElements(clientSecret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.boundSecrets = append(m.boundSecrets, clientSecret)
	m.hasElements = true
	return nil
}

func (m *mockBridge) HasElements() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasElements
}

func (m *mockBridge) ClearElements() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	m.hasElements = false
}

func (m *mockBridge) ConfirmPayment(_ context.Context, params payment.ConfirmParams) (*payment.ConfirmResult, error) {
	m.mu.Lock()
	m.confirmCalls++
	m.lastParams = params
	m.mu.Unlock()
	if m.confirmErr != nil {
		return nil, m.confirmErr
	}
	return m.confirmResult, nil
}

// test fixtures

func testCart() *domain.Cart {
	return &domain.Cart{
		UserID: "u1",
		Items: []domain.CartItem{
			{
				Item: domain.ProductMedia{
					Product: domain.Product{ID: "P1", Name: "Widget", Price: 10},
					Media:   []domain.Media{{ImagePath: "p1.jpg"}},
				},
				Quantity: 2,
				Price:    10,
			},
		},
		TotalItems:  2,
		TotalAmount: 20,
	}
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:                 "ord-1",
		Status:             domain.OrderStatusPending,
		PaymentStatus:      domain.PaymentStatusIncomplete,
		StripeClientSecret: "pi_123_secret_456",
		Subtotal:           20,
		Shipping:           100,
		Tax:                10,
		TotalAmount:        130,
		Email:              "buyer@example.com",
		OrderItems: []domain.OrderItem{
			{ProductID: "P1", ProductName: "Widget", UnitPrice: 10, Quantity: 2, SellerID: "s1"},
		},
	}
}

func fullLocation() domain.LocationSelection {
	return domain.LocationSelection{
		Country: &domain.Country{Name: "Senegal", ISOCode: "SN"},
		State:   &domain.State{Name: "Dakar", ISOCode: "DK"},
		City:    &domain.City{Name: "Dakar"},
	}
}

type testEnv struct {
	orch     *Orchestrator
	carts    *mockCartStore
	orders   *mockOrderGateway
	products *mockProductGateway
	bridge   *mockBridge
}

func newTestEnv() *testEnv {
	env := &testEnv{
		carts:    &mockCartStore{cart: testCart()},
		orders:   &mockOrderGateway{createOrder: testOrder()},
		products: &mockProductGateway{},
		bridge:   &mockBridge{confirmResult: &payment.ConfirmResult{Outcome: payment.OutcomeSucceeded, PaymentIntentID: "pi_123"}},
	}
	env.orch = NewOrchestrator(Config{
		UserID:    "u1",
		ReturnURL: "http://localhost/profile",
		Carts:     env.carts,
		Orders:    env.orders,
		Products:  env.products,
		Bridge:    env.bridge,
	})
	return env
}
