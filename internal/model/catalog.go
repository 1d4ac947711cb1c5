package model

import "time"

// PageSize is the fixed page length of every skip-paginated listing.
const PageSize = 10

type Product struct {
	ID          string    `json:"id"`
	MerchantID  string    `json:"merchantId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	DP          string    `json:"dp,omitempty"`
	Images      []string  `json:"images"`
	Quantity    int       `json:"quantity"`
	IsInStock   bool      `json:"isInStock"`
	Color       string    `json:"color,omitempty"`
	Dimension   string    `json:"dimension,omitempty"`
	IsFeatured  bool      `json:"isFeatured"`
	Ratings     []Rating  `json:"ratings"`
	Reviews     []Review  `json:"reviews"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProductPage struct {
	Count    int       `json:"count"`
	Products []Product `json:"data"`
}

type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type WishlistItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrderStatus string

const OrderPending OrderStatus = "PENDING"

type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	NetAmount float64     `json:"netAmount"`
	Address   string      `json:"address"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"products"`
	CreatedAt time.Time   `json:"createdAt"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type WaitlistEntry struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
