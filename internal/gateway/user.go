package gateway

import (
	"context"
	"net/http"

	"github.com/mousdieng/buy01/internal/domain"
)

// UserGateway resolves seller and customer records for order enrichment.
type UserGateway struct {
	client *Client
}

func NewUserGateway(client *Client) *UserGateway {
	return &UserGateway{client: client}
}

func (g *UserGateway) UserByID(ctx context.Context, id string) (*domain.User, error) {
	env, err := g.client.do(ctx, http.MethodGet, "user/"+id, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	user, err := decodeData[domain.User](env)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
