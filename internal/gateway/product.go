package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mousdieng/buy01/internal/domain"
)

// ProductGateway talks to the product service: stock availability checks and
// product lookups used for order enrichment.
type ProductGateway struct {
	client *Client
}

func NewProductGateway(client *Client) *ProductGateway {
	return &ProductGateway{client: client}
}

// Available confirms current stock covers every (product, quantity) pair.
// Returns an error naming the backend's reason when any item fails.
func (g *ProductGateway) Available(ctx context.Context, items []domain.AvailabilityRequest) error {
	env, err := g.client.do(ctx, http.MethodPost, "product/available", nil, items, nil)
	if err != nil {
		return err
	}
	if env.Status != 0 && env.Status != http.StatusOK {
		return fmt.Errorf("%s", env.Message)
	}
	return nil
}

func (g *ProductGateway) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	env, err := g.client.do(ctx, http.MethodGet, "product/"+id, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	product, err := decodeData[domain.Product](env)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
