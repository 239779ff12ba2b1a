package gateway

import (
	"context"
	"net/http"

	"github.com/mousdieng/buy01/internal/domain"
)

// MediaGateway fetches product imagery for order enrichment.
type MediaGateway struct {
	client *Client
}

func NewMediaGateway(client *Client) *MediaGateway {
	return &MediaGateway{client: client}
}

func (g *MediaGateway) MediaByProduct(ctx context.Context, productID string) ([]domain.Media, error) {
	env, err := g.client.do(ctx, http.MethodGet, "media/product/"+productID, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.Media](env)
}
