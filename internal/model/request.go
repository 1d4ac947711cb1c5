package model

type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Username    string `json:"username"`
	Password    string `json:"password"`

	// merchant only
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Category string `json:"category"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdateProfileRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Username    string `json:"username"`
	Address     string `json:"address"`

	// merchant only
	City     string `json:"city"`
	Country  string `json:"country"`
	Category string `json:"category"`
}

type ProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"desc"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Quantity    *int     `json:"quantity"`
	IsInStock   *bool    `json:"isInStock"`
	Color       *string  `json:"color"`
	Dimension   *string  `json:"dimension"`
	IsFeatured  *bool    `json:"isFeatured"`
}

type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type ChangeQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type WishlistRequest struct {
	ProductID string `json:"productId"`
}

type CreateOrderRequest struct {
	Address string             `json:"address"`
	Items   []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type ReviewRequest struct {
	Review string `json:"review"`
	Rating int    `json:"rating"`
}

type WaitlistRequest struct {
	Email string `json:"email"`
}
