package service

import (
	"context"
	"strings"

	"supashop-api/internal/cache"
	"supashop-api/internal/model"
	"supashop-api/pkg/apierror"
)

type WishlistService struct {
	items WishlistStore
	cache ResponseCache
}

func NewWishlistService(items WishlistStore, responses ResponseCache) *WishlistService {
	return &WishlistService{items: items, cache: responses}
}

func (s *WishlistService) Add(ctx context.Context, userID string, productID string) (model.WishlistItem, error) {
	if strings.TrimSpace(productID) == "" {
		return model.WishlistItem{}, apierror.BadRequest("Product Id is required")
	}
	return s.items.Add(ctx, userID, productID)
}

// List is read through the cache like the catalog listings.
func (s *WishlistService) List(ctx context.Context, userID string) ([]byte, error) {
	return s.cache.Remember(ctx, cache.WishlistKey(userID), func(ctx context.Context) (any, error) {
		return s.items.List(ctx, userID)
	})
}

func (s *WishlistService) Remove(ctx context.Context, userID string, itemID string) error {
	return s.items.Remove(ctx, userID, itemID)
}

func (s *WishlistService) Clear(ctx context.Context, userID string) (int64, error) {
	return s.items.Clear(ctx, userID)
}
