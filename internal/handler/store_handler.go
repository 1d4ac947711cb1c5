package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type storeService interface {
	Stores(ctx context.Context, skip int) ([]byte, error)
	FeaturedStores(ctx context.Context, skip int) ([]byte, error)
	StoresByCategory(ctx context.Context, category string, skip int) ([]byte, error)
	Store(ctx context.Context, id string) ([]byte, error)
	StoreProducts(ctx context.Context, id string, skip int) ([]byte, error)
}

type StoreHandler struct {
	service storeService
}

func NewStoreHandler(service storeService) *StoreHandler {
	return &StoreHandler{service: service}
}

func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context) ([]byte, error) {
		return h.service.Stores(ctx, skipParam(r))
	})
}

func (h *StoreHandler) Featured(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context) ([]byte, error) {
		return h.service.FeaturedStores(ctx, skipParam(r))
	})
}

func (h *StoreHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context) ([]byte, error) {
		return h.service.StoresByCategory(ctx, r.URL.Query().Get("category"), skipParam(r))
	})
}

func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context) ([]byte, error) {
		return h.service.Store(ctx, chi.URLParam(r, "id"))
	})
}

func (h *StoreHandler) Products(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context) ([]byte, error) {
		return h.service.StoreProducts(ctx, chi.URLParam(r, "id"), skipParam(r))
	})
}

func (h *StoreHandler) serve(w http.ResponseWriter, r *http.Request, read func(ctx context.Context) ([]byte, error)) {
	body, err := read(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}
