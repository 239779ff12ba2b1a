package domain

import "time"

type CartItem struct {
	ID       string       `json:"id"`
	Item     ProductMedia `json:"item"`
	Quantity int          `json:"quantity"`
	Price    float64      `json:"price"`
	AddedAt  time.Time    `json:"addedAt"`
}

type Cart struct {
	UserID      string     `json:"userId"`
	Items       []CartItem `json:"items"`
	TotalItems  int        `json:"totalItems"`
	TotalAmount float64    `json:"totalAmount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Empty reports whether the cart has no line items.
func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
