package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/mousdieng/buy01/internal/cart"
	"github.com/mousdieng/buy01/internal/checkout"
	"github.com/mousdieng/buy01/internal/domain"
	"github.com/mousdieng/buy01/internal/gateway"
	"github.com/mousdieng/buy01/internal/payment"
	"github.com/mousdieng/buy01/internal/telemetry"
)

// metrics register against the default prometheus registry, so the test
// binary shares a single instance.
var testMetrics = telemetry.NewCheckoutMetrics()

// bearerToken builds an unsigned JWT-shaped token carrying the given subject.
func bearerToken(sub string) string {
	payload, _ := json.Marshal(map[string]string{"sub": sub})
	return "h." + base64.RawURLEncoding.EncodeToString(payload) + ".s"
}

// stub collaborators for the orchestrator behind the handlers

type stubCartAPI struct {
	mu     sync.Mutex
	cart   *domain.Cart
	getErr error
}

func (s *stubCartAPI) Get(_ context.Context) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.cart, nil
}

func (s *stubCartAPI) AddItem(_ context.Context, _ domain.AddToCartRequest) (*domain.Cart, error) {
	return s.cart, nil
}

func (s *stubCartAPI) UpdateQuantity(_ context.Context, _ string, _ int) (*domain.Cart, error) {
	return s.cart, nil
}

func (s *stubCartAPI) RemoveItem(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, nil
}

func (s *stubCartAPI) Clear(_ context.Context) error { return nil }

// noopCache never hits, so handler tests always observe the API state.
type noopCache struct{}

func (noopCache) Get(_ context.Context, _ string) (*domain.Cart, error) { return nil, cart.ErrCacheMiss }
func (noopCache) Set(_ context.Context, _ string, _ *domain.Cart) error { return nil }
func (noopCache) Delete(_ context.Context, _ string) error              { return nil }

type stubOrders struct {
	mu         sync.Mutex
	order      *domain.Order
	createErr  error
	confirmErr error
	incomplete []domain.Order
}

func (s *stubOrders) CreateCheckout(_ context.Context, _ domain.CheckoutFormData) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	order := *s.order
	return &order, nil
}

func (s *stubOrders) ConfirmOrder(_ context.Context, _ string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return &domain.Order{ID: "confirmed"}, nil
}

func (s *stubOrders) IncompleteOrders(_ context.Context, _, _ int) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incomplete, nil
}

type stubProducts struct{ err error }

func (s *stubProducts) Available(_ context.Context, _ []domain.AvailabilityRequest) error {
	return s.err
}

type stubBridge struct {
	mu            sync.Mutex
	initialized   bool
	hasElements   bool
	confirmResult *payment.ConfirmResult
}

func (s *stubBridge) Initialize(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	return nil
}

func (s *stubBridge) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *stubBridge) CreateElements(_ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasElements = true
	return nil
}

func (s *stubBridge) HasElements() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasElements
}

func (s *stubBridge) ClearElements() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasElements = false
}

func (s *stubBridge) ConfirmPayment(_ context.Context, _ payment.ConfirmParams) (*payment.ConfirmResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmResult, nil
}

// backendMux serves the order/user/product/media endpoints the real order
// gateway needs for select and search.
func backendMux(orders map[string]domain.Order) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /order/{id}", func(w http.ResponseWriter, r *http.Request) {
		order, ok := orders[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"status": 404, "message": "order not found"})
			return
		}
		envelope(w, order)
	})
	mux.HandleFunc("GET /order/search", func(w http.ResponseWriter, r *http.Request) {
		var content []domain.Order
		for _, order := range orders {
			content = append(content, order)
		}
		envelope(w, gateway.OrderPage{Content: content})
	})
	mux.HandleFunc("GET /user/{id}", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, domain.User{ID: r.PathValue("id")})
	})
	mux.HandleFunc("GET /product/{id}", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, domain.Product{ID: r.PathValue("id"), Name: "Widget", Price: 10})
	})
	mux.HandleFunc("GET /media/product/{id}", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, []domain.Media{{ImagePath: r.PathValue("id") + ".jpg"}})
	})
	return mux
}

func envelope(w http.ResponseWriter, data any) {
	json.NewEncoder(w).Encode(map[string]any{"status": 200, "data": data})
}

type fixture struct {
	router   chi.Router
	cartAPI  *stubCartAPI
	orders   *stubOrders
	products *stubProducts
	bridge   *stubBridge
}

func fixtureCart() *domain.Cart {
	return &domain.Cart{
		UserID: "u1",
		Items: []domain.CartItem{
			{
				Item:     domain.ProductMedia{Product: domain.Product{ID: "P1", Name: "Widget", Price: 10}},
				Quantity: 2,
				Price:    10,
			},
		},
		TotalItems:  2,
		TotalAmount: 20,
	}
}

func fixtureOrder() domain.Order {
	return domain.Order{
		ID:                 "ord-1",
		Status:             domain.OrderStatusPending,
		PaymentStatus:      domain.PaymentStatusIncomplete,
		StripeClientSecret: "pi_123_secret_456",
		TotalAmount:        130,
		UserID:             "u1",
		Email:              "buyer@example.com",
		OrderItems: []domain.OrderItem{
			{ProductID: "P1", ProductName: "Widget", UnitPrice: 10, Quantity: 2, SellerID: "s1"},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		cartAPI:  &stubCartAPI{cart: fixtureCart()},
		orders:   &stubOrders{order: ptr(fixtureOrder())},
		products: &stubProducts{},
		bridge: &stubBridge{
			confirmResult: &payment.ConfirmResult{Outcome: payment.OutcomeSucceeded, PaymentIntentID: "pi_123"},
		},
	}

	backend := httptest.NewServer(backendMux(map[string]domain.Order{"ord-1": fixtureOrder()}))
	t.Cleanup(backend.Close)
	client := gateway.NewClient(backend.URL, 5*time.Second)
	orderGateway := gateway.NewOrderGateway(client,
		gateway.NewProductGateway(client), gateway.NewUserGateway(client), gateway.NewMediaGateway(client))

	cartStore := cart.NewStore(f.cartAPI, noopCache{}, nil)
	sessions := NewSessionManager(func(userID string) *checkout.Orchestrator {
		return checkout.NewOrchestrator(checkout.Config{
			UserID:    userID,
			ReturnURL: "http://localhost/profile",
			Carts:     cartStore,
			Orders:    f.orders,
			Products:  f.products,
			Bridge:    f.bridge,
		})
	})

	f.router = NewRouter(
		NewCheckoutHandler(sessions, orderGateway, testMetrics, 5*time.Second),
		NewCartHandler(cartStore, 5*time.Second),
		NewOrdersHandler(orderGateway, 5*time.Second),
	)
	return f
}

func ptr[T any](v T) *T { return &v }

// request issues an authenticated call against the router.
func (f *fixture) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader([]byte("{}"))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+bearerToken("u1"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, fmt.Sprintf("body: %s", rec.Body.String()))
}
