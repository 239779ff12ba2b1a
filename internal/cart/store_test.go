package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mousdieng/buy01/internal/domain"
)

type mockAPI struct {
	mu         sync.Mutex
	cart       *domain.Cart
	getErr     error
	getCalls   int
	clearCalls int
}

func (m *mockAPI) Get(_ context.Context) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.cart, nil
}

func (m *mockAPI) AddItem(_ context.Context, _ domain.AddToCartRequest) (*domain.Cart, error) {
	return m.cart, nil
}

func (m *mockAPI) UpdateQuantity(_ context.Context, _ string, _ int) (*domain.Cart, error) {
	return m.cart, nil
}

func (m *mockAPI) RemoveItem(_ context.Context, _ string) (*domain.Cart, error) {
	return m.cart, nil
}

func (m *mockAPI) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	return nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Cart
	getErr  error
	deletes int
	sets    chan struct{}
}

func newMockCache() *mockCache {
	return &mockCache{
		entries: make(map[string]*domain.Cart),
		sets:    make(chan struct{}, 16),
	}
}

func (m *mockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	cart, ok := m.entries[userID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return cart, nil
}

func (m *mockCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	m.mu.Lock()
	m.entries[userID] = cart
	m.mu.Unlock()
	m.sets <- struct{}{}
	return nil
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.entries, userID)
	return nil
}

func fixtureCart() *domain.Cart {
	return &domain.Cart{
		UserID:      "u1",
		Items:       []domain.CartItem{{Quantity: 2, Price: 10}},
		TotalItems:  2,
		TotalAmount: 20,
	}
}

func TestStoreGet_CacheMissFallsThroughAndPopulates(t *testing.T) {
	api := &mockAPI{cart: fixtureCart()}
	cache := newMockCache()
	store := NewStore(api, cache, nil)

	cart, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, cart.TotalAmount)
	assert.Equal(t, 1, api.getCalls)

	// cache fill is async
	select {
	case <-cache.sets:
	case <-time.After(time.Second):
		t.Fatal("cache was never populated")
	}

	_, err = store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.getCalls)
}

func TestStoreGet_CacheHitSkipsAPI(t *testing.T) {
	api := &mockAPI{}
	cache := newMockCache()
	cache.entries["u1"] = fixtureCart()
	store := NewStore(api, cache, nil)

	cart, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.TotalItems)
	assert.Equal(t, 0, api.getCalls)
}

func TestStoreGet_CacheFailureIsNotFatal(t *testing.T) {
	api := &mockAPI{cart: fixtureCart()}
	cache := newMockCache()
	cache.getErr = errors.New("redis down")
	store := NewStore(api, cache, nil)

	cart, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, cart)
	assert.Equal(t, 1, api.getCalls)
}

func TestStoreGet_APIErrorPropagates(t *testing.T) {
	api := &mockAPI{getErr: errors.New("backend down")}
	store := NewStore(api, newMockCache(), nil)

	_, err := store.Get(context.Background(), "u1")
	require.Error(t, err)
}

func TestStoreClear_InvalidatesAndNotifies(t *testing.T) {
	api := &mockAPI{cart: fixtureCart()}
	cache := newMockCache()
	cache.entries["u1"] = fixtureCart()
	store := NewStore(api, cache, nil)

	watch, cancel := store.Watch()
	defer cancel()

	require.NoError(t, store.Clear(context.Background(), "u1"))
	assert.Equal(t, 1, api.clearCalls)
	assert.Equal(t, 1, cache.deletes)

	select {
	case <-watch:
	case <-time.After(time.Second):
		t.Fatal("watcher never notified")
	}
}

func TestStoreWrites_Invalidate(t *testing.T) {
	api := &mockAPI{cart: fixtureCart()}
	cache := newMockCache()
	store := NewStore(api, cache, nil)

	_, err := store.AddItem(context.Background(), "u1", domain.AddToCartRequest{ProductID: "P1", Quantity: 1})
	require.NoError(t, err)
	_, err = store.UpdateQuantity(context.Background(), "u1", "P1", 3)
	require.NoError(t, err)
	_, err = store.RemoveItem(context.Background(), "u1", "P1")
	require.NoError(t, err)

	assert.Equal(t, 3, cache.deletes)
}

func TestStoreWatch_NonBlockingNotify(t *testing.T) {
	api := &mockAPI{cart: fixtureCart()}
	store := NewStore(api, newMockCache(), nil)

	watch, cancel := store.Watch()
	defer cancel()

	// a watcher that never reads must not block writers
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Clear(context.Background(), "u1"))
	}

	select {
	case <-watch:
	default:
		t.Fatal("expected a pending notification")
	}
}

func TestStoreWatch_CancelCloses(t *testing.T) {
	store := NewStore(&mockAPI{}, newMockCache(), nil)
	watch, cancel := store.Watch()
	cancel()

	_, open := <-watch
	assert.False(t, open)
}
