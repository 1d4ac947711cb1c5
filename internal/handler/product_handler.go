package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"supashop-api/internal/model"
)

type catalogService interface {
	Products(ctx context.Context, skip int) ([]byte, error)
	ProductsByCategory(ctx context.Context, category string, skip int) ([]byte, error)
	Product(ctx context.Context, id string) ([]byte, error)
	Categories(ctx context.Context) ([]byte, error)
	MerchantProducts(ctx context.Context, merchantID string, skip int) ([]byte, error)
	MerchantProduct(ctx context.Context, merchantID string, id string) (model.Product, error)
	Create(ctx context.Context, merchantID string, req model.ProductRequest) (model.Product, error)
	Update(ctx context.Context, merchantID string, id string, req model.ProductRequest) (model.Product, error)
	Delete(ctx context.Context, merchantID string, id string) error
	SetPicture(ctx context.Context, merchantID string, id string, data []byte) (string, error)
	AddImage(ctx context.Context, merchantID string, id string, data []byte) (model.Product, error)
	RemoveImage(ctx context.Context, merchantID string, id string, ref string) error
}

// ProductHandler serves the public catalog and the merchant's own products.
// Cached reads are written out as the stored bytes.
type ProductHandler struct {
	service       catalogService
	maxUploadSize int64
}

func NewProductHandler(service catalogService, maxUploadSize int64) *ProductHandler {
	return &ProductHandler{service: service, maxUploadSize: maxUploadSize}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	body, err := h.service.Products(r.Context(), skipParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	body, err := h.service.ProductsByCategory(r.Context(), chi.URLParam(r, "category"), skipParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	body, err := h.service.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	body, err := h.service.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *ProductHandler) MerchantList(w http.ResponseWriter, r *http.Request) {
	merchantID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := h.service.MerchantProducts(r.Context(), merchantID, skipParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *ProductHandler) MerchantGet(w http.ResponseWriter, r *http.Request) {
	merchantID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.service.MerchantProduct(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	merchantID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.ProductRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.service.Create(r.Context(), merchantID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	merchantID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.ProductRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.service.Update(r.Context(), merchantID, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updatedProduct": product})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	merchantID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), merchantID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

func (h *ProductHandler) SetPicture(w http.ResponseWriter, r *http.Request) {
	merchantID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := requireUpload(w, r, "dp", h.maxUploadSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ref, err := h.service.SetPicture(r.Context(), merchantID, chi.URLParam(r, "id"), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"message": "Product image updated", "dp": ref})
}

func (h *ProductHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	merchantID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := requireUpload(w, r, "image", h.maxUploadSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.service.AddImage(r.Context(), merchantID, chi.URLParam(r, "id"), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (h *ProductHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	merchantID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.RemoveImage(r.Context(), merchantID, chi.URLParam(r, "id"), r.URL.Query().Get("ref")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Image deleted successfully")
}
