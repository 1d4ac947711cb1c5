package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"supashop-api/internal/model"
)

type cartService interface {
	Add(ctx context.Context, userID string, req model.AddToCartRequest) (model.CartItem, bool, error)
	List(ctx context.Context, userID string) ([]model.CartItem, error)
	ChangeQuantity(ctx context.Context, userID string, itemID string, quantity int) (model.CartItem, error)
	Remove(ctx context.Context, userID string, itemID string) error
}

type wishlistService interface {
	Add(ctx context.Context, userID string, productID string) (model.WishlistItem, error)
	List(ctx context.Context, userID string) ([]byte, error)
	Remove(ctx context.Context, userID string, itemID string) error
	Clear(ctx context.Context, userID string) (int64, error)
}

type orderService interface {
	Place(ctx context.Context, userID string, req model.CreateOrderRequest) (model.Order, error)
	List(ctx context.Context, userID string) ([]model.Order, error)
}

type CartHandler struct {
	service cartService
}

func NewCartHandler(service cartService) *CartHandler {
	return &CartHandler{service: service}
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.AddToCartRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	item, created, err := h.service.Add(r.Context(), userID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"message": "Cart successfully updated", "item": item})
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": items})
}

func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.ChangeQuantityRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.service.ChangeQuantity(r.Context(), userID, chi.URLParam(r, "id"), payload.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Item quantity changed", "item": item})
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Item removed successfully")
}

type WishlistHandler struct {
	service wishlistService
}

func NewWishlistHandler(service wishlistService) *WishlistHandler {
	return &WishlistHandler{service: service}
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.WishlistRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.service.Add(r.Context(), userID, payload.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Item added to wishlist", "item": item})
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusAccepted, "Item removed from wishlist")
}

func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.service.Clear(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusAccepted, "Wishlist is cleared")
}

type OrderHandler struct {
	service orderService
}

func NewOrderHandler(service orderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.CreateOrderRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.service.Place(r.Context(), userID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Order created", "order": order})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	orders, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}
