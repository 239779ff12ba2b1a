package checkout

import "github.com/mousdieng/buy01/internal/domain"

// Flat surcharges applied to cart-based summaries. Orders carry their own
// shipping and tax once created server-side.
const (
	flatShippingFee = 100
	flatTaxFee      = 10
)

// deriveSummary computes the order summary from whichever source is
// authoritative: a selected order with denormalized items wins over the cart.
// Returns nil when neither source has items.
func deriveSummary(cart *domain.Cart, order *domain.Order) *domain.OrderSummary {
	if order != nil && len(order.FullOrderItems) > 0 {
		quantities := make(map[string]int, len(order.OrderItems))
		for _, item := range order.OrderItems {
			quantities[item.ProductID] = item.Quantity
		}

		lines := make([]domain.SummaryLine, 0, len(order.FullOrderItems))
		for _, full := range order.FullOrderItems {
			quantity := quantities[full.Product.ID]
			if quantity == 0 {
				quantity = 1
			}
			lines = append(lines, domain.SummaryLine{
				Item:     domain.ProductMedia{Product: full.Product, Media: full.Media},
				Quantity: quantity,
			})
		}
		return &domain.OrderSummary{
			Items:    lines,
			Subtotal: order.Subtotal,
			Shipping: order.Shipping,
			Tax:      order.Tax,
			Total:    order.TotalAmount,
		}
	}

	if cart != nil && len(cart.Items) > 0 {
		lines := make([]domain.SummaryLine, 0, len(cart.Items))
		for _, item := range cart.Items {
			lines = append(lines, domain.SummaryLine{
				Item:     item.Item,
				Quantity: item.Quantity,
			})
		}
		return &domain.OrderSummary{
			Items:    lines,
			Subtotal: cart.TotalAmount,
			Shipping: flatShippingFee,
			Tax:      flatTaxFee,
			Total:    cart.TotalAmount + flatShippingFee + flatTaxFee,
		}
	}

	return nil
}

// orderItems flattens an order's line items into the display-ready
// projection, pulling images from the denormalized item list when present.
func orderItems(order *domain.Order) []domain.CheckoutItem {
	if order == nil {
		return nil
	}
	images := make(map[string]string, len(order.FullOrderItems))
	for _, full := range order.FullOrderItems {
		if len(full.Media) > 0 {
			images[full.Product.ID] = full.Media[0].ImagePath
		}
	}
	items := make([]domain.CheckoutItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, domain.CheckoutItem{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Price:     item.UnitPrice,
			Quantity:  item.Quantity,
			ImageURL:  images[item.ProductID],
		})
	}
	return items
}

// cartItems flattens cart line items into the display-ready projection.
func cartItems(cart *domain.Cart) []domain.CheckoutItem {
	if cart == nil {
		return nil
	}
	items := make([]domain.CheckoutItem, 0, len(cart.Items))
	for _, cartItem := range cart.Items {
		imageURL := ""
		if len(cartItem.Item.Media) > 0 {
			imageURL = cartItem.Item.Media[0].ImagePath
		}
		items = append(items, domain.CheckoutItem{
			ProductID: cartItem.Item.Product.ID,
			Name:      cartItem.Item.Product.Name,
			Price:     cartItem.Price,
			Quantity:  cartItem.Quantity,
			ImageURL:  imageURL,
		})
	}
	return items
}
