package service

import (
	"context"
	"strings"

	"supashop-api/internal/cache"
	"supashop-api/internal/model"
	"supashop-api/pkg/apierror"
)

// StoreView is the public projection of a merchant.
type StoreView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	PhoneNumber    string `json:"phone_number"`
	DisplayPicture string `json:"dp,omitempty"`
	model.MerchantDetails
}

func storeView(m model.Merchant) StoreView {
	return StoreView{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Username:        m.Username,
		PhoneNumber:     m.PhoneNumber,
		DisplayPicture:  m.DisplayPicture,
		MerchantDetails: m.MerchantDetails,
	}
}

func storeViews(ms []model.Merchant) []StoreView {
	out := make([]StoreView, 0, len(ms))
	for _, m := range ms {
		out = append(out, storeView(m))
	}
	return out
}

// StoreService serves the cached public store listings.
type StoreService struct {
	merchants MerchantStore
	products  ProductStore
	cache     ResponseCache
}

func NewStoreService(merchants MerchantStore, products ProductStore, responses ResponseCache) *StoreService {
	return &StoreService{merchants: merchants, products: products, cache: responses}
}

func (s *StoreService) Stores(ctx context.Context, skip int) ([]byte, error) {
	return s.cache.Remember(ctx, cache.StoresKey(skip), func(ctx context.Context) (any, error) {
		ms, err := s.merchants.ListStores(ctx, skip, false)
		if err != nil {
			return nil, err
		}
		return storeViews(ms), nil
	})
}

func (s *StoreService) FeaturedStores(ctx context.Context, skip int) ([]byte, error) {
	return s.cache.Remember(ctx, cache.FeaturedStoresKey(skip), func(ctx context.Context) (any, error) {
		ms, err := s.merchants.ListStores(ctx, skip, true)
		if err != nil {
			return nil, err
		}
		return storeViews(ms), nil
	})
}

func (s *StoreService) StoresByCategory(ctx context.Context, category string, skip int) ([]byte, error) {
	category = strings.ToUpper(strings.TrimSpace(category))
	if category == "" {
		return nil, apierror.BadRequest("No category provided")
	}
	return s.cache.Remember(ctx, cache.StoresByCategoryKey(category, skip), func(ctx context.Context) (any, error) {
		ms, err := s.merchants.ListStoresByCategory(ctx, category, skip)
		if err != nil {
			return nil, err
		}
		return storeViews(ms), nil
	})
}

func (s *StoreService) Store(ctx context.Context, id string) ([]byte, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierror.BadRequest("StoreId is required")
	}
	return s.cache.Remember(ctx, cache.StoreKey(id), func(ctx context.Context) (any, error) {
		m, err := s.merchants.FindMerchant(ctx, id)
		if err != nil {
			return nil, err
		}
		return storeView(m), nil
	})
}

func (s *StoreService) StoreProducts(ctx context.Context, id string, skip int) ([]byte, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierror.BadRequest("StoreId is required")
	}
	return s.cache.Remember(ctx, cache.StoreProductsKey(id, skip), func(ctx context.Context) (any, error) {
		page, err := s.products.ListByMerchant(ctx, id, skip)
		if err != nil {
			return nil, err
		}
		return page.Products, nil
	})
}
