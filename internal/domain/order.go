package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusIncomplete PaymentStatus = "INCOMPLETE"
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
	PaymentStatusExpired    PaymentStatus = "EXPIRED"
)

type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"totalPrice"`
	SellerID    string  `json:"sellerId"`
}

type OrderStatusHistory struct {
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Order is owned by the backend; the checkout session only ever holds a
// read-only reference to it.
type Order struct {
	ID                    string        `json:"id"`
	Status                OrderStatus   `json:"status"`
	PaymentStatus         PaymentStatus `json:"paymentStatus"`
	StripePaymentIntentID string        `json:"stripePaymentIntentId"`
	// StripeClientSecret is only present while payment is outstanding.
	StripeClientSecret string  `json:"stripeClientSecret"`
	TotalAmount        float64 `json:"totalAmount"`
	Subtotal           float64 `json:"subtotal"`
	Shipping           float64 `json:"shipping"`
	Tax                float64 `json:"tax"`
	Currency           string  `json:"currency"`
	UserID             string  `json:"userId"`
	CancelReason       string  `json:"cancelReason,omitempty"`

	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`

	StatusHistory   []OrderStatusHistory `json:"statusHistory,omitempty"`
	ShippingAddress *Address             `json:"shippingAddress,omitempty"`
	BillingAddress  *Address             `json:"billingAddress,omitempty"`
	OrderItems      []OrderItem          `json:"orderItems"`

	// FullOrderItems is the denormalized item list (seller + product + media)
	// filled in by the order gateway, not by the backend order record itself.
	FullOrderItems []FullProduct `json:"fullOrderItem,omitempty"`
	Customer       *User         `json:"customer,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// PaymentOutstanding reports whether the order still expects a payment attempt.
func (o *Order) PaymentOutstanding() bool {
	return o != nil && o.StripeClientSecret != "" &&
		(o.PaymentStatus == PaymentStatusIncomplete || o.PaymentStatus == PaymentStatusPending || o.PaymentStatus == PaymentStatusFailed)
}
