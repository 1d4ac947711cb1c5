package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"supashop-api/internal/model"
	"supashop-api/internal/repository"
)

type reviewService interface {
	Add(ctx context.Context, target repository.ReviewTarget, id string, userID string, req model.ReviewRequest) (model.ReviewSummary, error)
	Remove(ctx context.Context, target repository.ReviewTarget, id string, userID string) (model.ReviewSummary, error)
}

type ReviewHandler struct {
	service reviewService
}

func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Add(target repository.ReviewTarget) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var payload model.ReviewRequest
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, r, err)
			return
		}

		summary, err := h.service.Add(r.Context(), target, chi.URLParam(r, "id"), userID, payload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Review added", "data": summary})
	}
}

func (h *ReviewHandler) Remove(target repository.ReviewTarget) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		summary, err := h.service.Remove(r.Context(), target, chi.URLParam(r, "id"), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Review removed", "data": summary})
	}
}
