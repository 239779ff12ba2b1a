package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mousdieng/buy01/internal/domain"
)

// enrichConcurrency bounds the per-item fan-out to product/user/media.
const enrichConcurrency = 8

// OrderSearchParams filters the order search endpoint.
type OrderSearchParams struct {
	Keyword       string
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	Size          int
}

// OrderPage is one page of (enriched) orders.
type OrderPage struct {
	Content []domain.Order `json:"content"`
	Page    Page           `json:"page"`
}

// OrderGateway performs order CRUD and search against the backend, and
// enriches raw order records with denormalized seller, product and media
// data by fanning out to the respective services.
type OrderGateway struct {
	client   *Client
	products *ProductGateway
	users    *UserGateway
	media    *MediaGateway
}

func NewOrderGateway(client *Client, products *ProductGateway, users *UserGateway, media *MediaGateway) *OrderGateway {
	return &OrderGateway{
		client:   client,
		products: products,
		users:    users,
		media:    media,
	}
}

// CreateCheckout creates an order from checkout form data. The response
// includes the payment client secret. An idempotency key protects against
// accidental duplicate submissions.
func (g *OrderGateway) CreateCheckout(ctx context.Context, form domain.CheckoutFormData) (*domain.Order, error) {
	headers := http.Header{}
	headers.Set("Idempotency-Key", uuid.NewString())

	env, err := g.client.do(ctx, http.MethodPost, "order/checkout/integrated", nil, form, headers)
	if err != nil {
		return nil, err
	}
	order, err := decodeData[domain.Order](env)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmOrder confirms an order against a payment intent.
func (g *OrderGateway) ConfirmOrder(ctx context.Context, paymentIntentID string) (*domain.Order, error) {
	body := map[string]string{"paymentIntentId": paymentIntentID}
	env, err := g.client.do(ctx, http.MethodPost, "order/confirm", nil, body, nil)
	if err != nil {
		return nil, err
	}
	order, err := decodeData[domain.Order](env)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// IncompleteOrders lists the user's created-but-unpaid orders, enriched for
// display so the UI can offer them as resumption candidates.
func (g *OrderGateway) IncompleteOrders(ctx context.Context, page, size int) ([]domain.Order, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	env, err := g.client.do(ctx, http.MethodGet, "order/incomplete/user", query, nil, nil)
	if err != nil {
		return nil, err
	}
	result, err := decodeData[OrderPage](env)
	if err != nil {
		return nil, err
	}
	if err := g.enrich(ctx, result.Content); err != nil {
		return nil, err
	}
	return result.Content, nil
}

// OrderByID fetches a single order, enriched.
func (g *OrderGateway) OrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	env, err := g.client.do(ctx, http.MethodGet, "order/"+orderID, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	order, err := decodeData[domain.Order](env)
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{order}
	if err := g.enrich(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// SearchOrders queries orders with keyword/status/date filters, enriched.
func (g *OrderGateway) SearchOrders(ctx context.Context, params OrderSearchParams) (*OrderPage, error) {
	query := url.Values{}
	if params.Keyword != "" {
		query.Set("keyword", params.Keyword)
	}
	if params.Status != "" {
		query.Set("status", string(params.Status))
	}
	if params.PaymentStatus != "" {
		query.Set("paymentStatus", string(params.PaymentStatus))
	}
	if params.StartDate != nil {
		query.Set("startDate", params.StartDate.Format("2006-01-02"))
	}
	if params.EndDate != nil {
		query.Set("endDate", params.EndDate.Format("2006-01-02"))
	}
	query.Set("page", strconv.Itoa(params.Page))
	if params.Size > 0 {
		query.Set("size", strconv.Itoa(params.Size))
	}

	env, err := g.client.do(ctx, http.MethodGet, "order/search", query, nil, nil)
	if err != nil {
		return nil, err
	}
	result, err := decodeData[OrderPage](env)
	if err != nil {
		return nil, err
	}
	if err := g.enrich(ctx, result.Content); err != nil {
		return nil, err
	}
	return &result, nil
}

// enrich fills FullOrderItems and Customer on every order by fanning out to
// the user, product and media services. Mutates the slice in place.
func (g *OrderGateway) enrich(ctx context.Context, orders []domain.Order) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(enrichConcurrency)

	for i := range orders {
		order := &orders[i]

		group.Go(func() error {
			customer, err := g.users.UserByID(groupCtx, order.UserID)
			if err != nil {
				return err
			}
			order.Customer = customer
			return nil
		})

		order.FullOrderItems = make([]domain.FullProduct, len(order.OrderItems))
		for j := range order.OrderItems {
			item := order.OrderItems[j]
			full := &order.FullOrderItems[j]

			group.Go(func() error {
				seller, err := g.users.UserByID(groupCtx, item.SellerID)
				if err != nil {
					return err
				}
				product, err := g.products.ProductByID(groupCtx, item.ProductID)
				if err != nil {
					return err
				}
				media, err := g.media.MediaByProduct(groupCtx, item.ProductID)
				if err != nil {
					return err
				}
				full.Seller = *seller
				full.Product = *product
				full.Media = media
				return nil
			})
		}
	}
	return group.Wait()
}
