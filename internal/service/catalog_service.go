package service

import (
	"context"
	"log/slog"
	"strings"

	"supashop-api/internal/cache"
	"supashop-api/internal/model"
	"supashop-api/internal/storage"
	"supashop-api/pkg/apierror"
)

// CatalogService serves products. Public and merchant listings are read
// through the response cache and are not invalidated by writes.
type CatalogService struct {
	products ProductStore
	cache    ResponseCache
	images   storage.ImageStore
	logger   *slog.Logger
}

func NewCatalogService(products ProductStore, responses ResponseCache, images storage.ImageStore, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{products: products, cache: responses, images: images, logger: logger}
}

func (s *CatalogService) Products(ctx context.Context, skip int) ([]byte, error) {
	return s.cache.Remember(ctx, cache.ProductsKey(skip), func(ctx context.Context) (any, error) {
		return s.products.List(ctx, skip)
	})
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, category string, skip int) ([]byte, error) {
	category = strings.ToUpper(strings.TrimSpace(category))
	if category == "" {
		return nil, apierror.BadRequest("No category provided")
	}
	return s.cache.Remember(ctx, cache.ProductsByCategoryKey(category, skip), func(ctx context.Context) (any, error) {
		return s.products.ListByCategory(ctx, category, skip)
	})
}

func (s *CatalogService) Product(ctx context.Context, id string) ([]byte, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierror.BadRequest("Product Id is required")
	}
	return s.cache.Remember(ctx, cache.ProductKey(id), func(ctx context.Context) (any, error) {
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]model.Product{"product": p}, nil
	})
}

func (s *CatalogService) Categories(ctx context.Context) ([]byte, error) {
	return s.cache.Remember(ctx, cache.CategoriesKey(), func(ctx context.Context) (any, error) {
		return s.products.Categories(ctx)
	})
}

func (s *CatalogService) MerchantProducts(ctx context.Context, merchantID string, skip int) ([]byte, error) {
	return s.cache.Remember(ctx, cache.MerchantProductsKey(merchantID, skip), func(ctx context.Context) (any, error) {
		return s.products.ListByMerchant(ctx, merchantID, skip)
	})
}

func (s *CatalogService) MerchantProduct(ctx context.Context, merchantID string, id string) (model.Product, error) {
	return s.products.FindOwned(ctx, merchantID, id)
}

func (s *CatalogService) Create(ctx context.Context, merchantID string, req model.ProductRequest) (model.Product, error) {
	if isBlank(req.Name) || isBlank(req.Description) || req.Price == nil {
		return model.Product{}, apierror.BadRequest(msgAllFieldsRequired)
	}
	if *req.Price < 0 || (req.Quantity != nil && *req.Quantity < 0) {
		return model.Product{}, apierror.BadRequest("Price and quantity must not be negative")
	}

	p := model.Product{
		MerchantID:  merchantID,
		Name:        strings.TrimSpace(*req.Name),
		Description: strings.TrimSpace(*req.Description),
		Price:       *req.Price,
		IsInStock:   true,
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.IsInStock != nil {
		p.IsInStock = *req.IsInStock
	}
	if req.Color != nil {
		p.Color = *req.Color
	}
	if req.Dimension != nil {
		p.Dimension = *req.Dimension
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}

	return s.products.Create(ctx, p)
}

func (s *CatalogService) Update(ctx context.Context, merchantID string, id string, req model.ProductRequest) (model.Product, error) {
	if (req.Price != nil && *req.Price < 0) || (req.Quantity != nil && *req.Quantity < 0) {
		return model.Product{}, apierror.BadRequest("Price and quantity must not be negative")
	}
	return s.products.Update(ctx, merchantID, id, req)
}

// Delete removes the product and every picture stored for it.
func (s *CatalogService) Delete(ctx context.Context, merchantID string, id string) error {
	p, err := s.products.Delete(ctx, merchantID, id)
	if err != nil {
		return err
	}
	refs := append([]string{}, p.Images...)
	if p.DP != "" {
		refs = append(refs, p.DP)
	}
	for _, ref := range refs {
		s.discard(ctx, ref)
	}
	return nil
}

func (s *CatalogService) SetPicture(ctx context.Context, merchantID string, id string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apierror.BadRequest("Image is required")
	}
	if _, err := s.products.FindOwned(ctx, merchantID, id); err != nil {
		return "", err
	}

	ref, err := s.images.Save(ctx, storage.FolderProducts, data)
	if err != nil {
		return "", err
	}
	previous, err := s.products.SetDisplayPicture(ctx, merchantID, id, ref)
	if err != nil {
		s.discard(ctx, ref)
		return "", err
	}
	if previous != "" {
		s.discard(ctx, previous)
	}
	return ref, nil
}

func (s *CatalogService) AddImage(ctx context.Context, merchantID string, id string, data []byte) (model.Product, error) {
	if len(data) == 0 {
		return model.Product{}, apierror.BadRequest("Image is required")
	}
	if _, err := s.products.FindOwned(ctx, merchantID, id); err != nil {
		return model.Product{}, err
	}

	ref, err := s.images.Save(ctx, storage.FolderProducts, data)
	if err != nil {
		return model.Product{}, err
	}
	p, err := s.products.AddImage(ctx, merchantID, id, ref)
	if err != nil {
		s.discard(ctx, ref)
		return model.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) RemoveImage(ctx context.Context, merchantID string, id string, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return apierror.BadRequest("Image is required")
	}
	removed, err := s.products.RemoveImage(ctx, merchantID, id, ref)
	if err != nil {
		return err
	}
	if !removed {
		return apierror.NotFound("Image were not found")
	}
	s.discard(ctx, ref)
	return nil
}

func (s *CatalogService) discard(ctx context.Context, ref string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Warn("picture cleanup failed", "ref", ref, "error", err)
	}
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
