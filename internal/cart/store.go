// Package cart is the application-wide cart store: product pages, the cart
// widget and checkout all read it. Backed by the cart API, fronted by a
// read-through cache, and exposing a change-notification stream so widgets
// can re-render when the cart mutates.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mousdieng/buy01/internal/domain"
)

// API is the backend cart service surface the store delegates to.
type API interface {
	Get(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, req domain.AddToCartRequest) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, productID string) (*domain.Cart, error)
	Clear(ctx context.Context) error
}

// Store owns cart access for one process. Reads go through the cache with
// singleflight collapsing concurrent misses; every write invalidates the
// cache and notifies watchers.
type Store struct {
	api    API
	cache  Cache
	logger *slog.Logger
	sfg    singleflight.Group

	mu       sync.Mutex
	watchers map[uint64]chan struct{}
	nextID   uint64
}

func NewStore(api API, cache Cache, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:      api,
		cache:    cache,
		logger:   logger.With("component", "cart"),
		watchers: make(map[uint64]chan struct{}),
	}
}

// Get returns the user's cart, from cache when fresh.
func (s *Store) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.WarnContext(ctx, "cart cache get failed", "error", err)
		}

		cart, err = s.api.Get(ctx)
		if err != nil {
			return nil, err
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if setErr := s.cache.Set(setCtx, userID, cart); setErr != nil {
				s.logger.Warn("cart cache set failed", "error", setErr)
			}
		}()
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

func (s *Store) AddItem(ctx context.Context, userID string, req domain.AddToCartRequest) (*domain.Cart, error) {
	cart, err := s.api.AddItem(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return cart, nil
}

func (s *Store) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.api.UpdateQuantity(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return cart, nil
}

func (s *Store) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	cart, err := s.api.RemoveItem(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return cart, nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.api.Clear(ctx); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// Watch returns a channel that receives a tick whenever the cart changes.
// The returned func unsubscribes.
func (s *Store) Watch() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan struct{}, 1)
	s.watchers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if watcher, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(watcher)
		}
	}
	return ch, cancel
}

func (s *Store) invalidate(ctx context.Context, userID string) {
	deleteCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(deleteCtx, userID); err != nil {
		s.logger.WarnContext(ctx, "cart cache invalidate failed", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, watcher := range s.watchers {
		select {
		case watcher <- struct{}{}:
		default:
		}
	}
}
