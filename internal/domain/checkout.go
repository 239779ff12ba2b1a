package domain

// Address is the shipping/billing shape sent on order creation. The
// country/state/city selection is folded in at that point; it is never
// persisted on its own.
type Address struct {
	FullName   string            `json:"fullName"`
	Address1   string            `json:"address1"`
	Address2   string            `json:"address2,omitempty"`
	PostalCode string            `json:"postalCode"`
	Location   LocationSelection `json:"location"`
}

// CheckoutItemRef identifies one product/quantity pair in the create-order payload.
type CheckoutItemRef struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// CheckoutFormData is the assembled order-creation payload.
type CheckoutFormData struct {
	Email          string            `json:"email"`
	Phone          string            `json:"phone,omitempty"`
	Shipping       *Address          `json:"shipping"`
	Billing        *Address          `json:"billing"`
	Items          []CheckoutItemRef `json:"items"`
	SameAsShipping bool              `json:"sameAsShipping,omitempty"`
}

// CheckoutItem is a flattened, display-ready line item derived from either
// the cart or the selected order. It is never mutated independently.
type CheckoutItem struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// SummaryLine is one entry of the order summary: the denormalized product
// plus the quantity being bought.
type SummaryLine struct {
	Item     ProductMedia `json:"item"`
	Quantity int          `json:"quantity"`
}

// OrderSummary is derived from whichever source (cart or selected order) is
// authoritative. It is recomputed on every change of that source.
type OrderSummary struct {
	Items    []SummaryLine `json:"items"`
	Subtotal float64       `json:"subtotal"`
	Shipping float64       `json:"shipping"`
	Tax      float64       `json:"tax"`
	Total    float64       `json:"total"`
}
