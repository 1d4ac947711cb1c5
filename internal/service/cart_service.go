package service

import (
	"context"
	"strings"

	"supashop-api/internal/model"
	"supashop-api/pkg/apierror"
)

type CartService struct {
	items CartStore
}

func NewCartService(items CartStore) *CartService {
	return &CartService{items: items}
}

// Add puts a product in the cart. When it is already there the quantity is
// raised by one and created is false.
func (s *CartService) Add(ctx context.Context, userID string, req model.AddToCartRequest) (model.CartItem, bool, error) {
	if strings.TrimSpace(req.ProductID) == "" {
		return model.CartItem{}, false, apierror.BadRequest("Product Id is required")
	}
	if req.Quantity < 0 {
		return model.CartItem{}, false, apierror.BadRequest("Quantity must be positive")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	return s.items.Add(ctx, userID, req.ProductID, req.Quantity)
}

func (s *CartService) List(ctx context.Context, userID string) ([]model.CartItem, error) {
	return s.items.List(ctx, userID)
}

func (s *CartService) ChangeQuantity(ctx context.Context, userID string, itemID string, quantity int) (model.CartItem, error) {
	if quantity < 1 {
		return model.CartItem{}, apierror.BadRequest("Quantity must be positive")
	}
	return s.items.SetQuantity(ctx, userID, itemID, quantity)
}

func (s *CartService) Remove(ctx context.Context, userID string, itemID string) error {
	return s.items.Remove(ctx, userID, itemID)
}
