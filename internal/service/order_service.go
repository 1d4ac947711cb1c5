package service

import (
	"context"
	"strings"

	"supashop-api/internal/model"
	"supashop-api/pkg/apierror"
)

type OrderService struct {
	orders OrderStore
}

func NewOrderService(orders OrderStore) *OrderService {
	return &OrderService{orders: orders}
}

// Place creates an order priced from the current product rows. Repeated
// lines for one product are merged.
func (s *OrderService) Place(ctx context.Context, userID string, req model.CreateOrderRequest) (model.Order, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" || len(req.Items) == 0 {
		return model.Order{}, apierror.BadRequest(msgAllFieldsRequired)
	}

	merged := make([]model.OrderItemRequest, 0, len(req.Items))
	index := make(map[string]int, len(req.Items))
	for _, it := range req.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity < 1 {
			return model.Order{}, apierror.BadRequest("Every item needs a product id and a positive quantity")
		}
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}

	return s.orders.Create(ctx, userID, address, merged)
}

func (s *OrderService) List(ctx context.Context, userID string) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}
