package gateway

import (
	"context"
	"net/http"

	"github.com/mousdieng/buy01/internal/domain"
)

// CartGateway talks to the backend cart service.
type CartGateway struct {
	client *Client
}

func NewCartGateway(client *Client) *CartGateway {
	return &CartGateway{client: client}
}

func (g *CartGateway) Get(ctx context.Context) (*domain.Cart, error) {
	env, err := g.client.do(ctx, http.MethodGet, "cart", nil, nil, nil)
	if err != nil {
		return nil, err
	}
	cart, err := decodeData[domain.Cart](env)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (g *CartGateway) AddItem(ctx context.Context, req domain.AddToCartRequest) (*domain.Cart, error) {
	env, err := g.client.do(ctx, http.MethodPost, "cart/items", nil, req, nil)
	if err != nil {
		return nil, err
	}
	cart, err := decodeData[domain.Cart](env)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (g *CartGateway) UpdateQuantity(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	body := map[string]int{"quantity": quantity}
	env, err := g.client.do(ctx, http.MethodPut, "cart/items/"+productID, nil, body, nil)
	if err != nil {
		return nil, err
	}
	cart, err := decodeData[domain.Cart](env)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (g *CartGateway) RemoveItem(ctx context.Context, productID string) (*domain.Cart, error) {
	env, err := g.client.do(ctx, http.MethodDelete, "cart/items/"+productID, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	cart, err := decodeData[domain.Cart](env)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (g *CartGateway) Clear(ctx context.Context) error {
	_, err := g.client.do(ctx, http.MethodDelete, "cart", nil, nil, nil)
	return err
}
