package domain

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	UserID      string  `json:"userID"`
}

type Media struct {
	ID        string `json:"id"`
	ImagePath string `json:"imagePath"`
	ProductID string `json:"productId"`
}

// ProductMedia pairs a product with its media, as returned by product listings.
type ProductMedia struct {
	Product Product `json:"product"`
	Media   []Media `json:"media"`
}

// FullProduct additionally carries the seller, used on order detail views.
type FullProduct struct {
	Seller  User    `json:"user"`
	Product Product `json:"product"`
	Media   []Media `json:"media"`
}

// AvailabilityRequest asks whether current stock covers the wanted quantity.
type AvailabilityRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}
