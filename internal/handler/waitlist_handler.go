package handler

import (
	"context"
	"net/http"

	"supashop-api/internal/model"
)

type waitlistService interface {
	Join(ctx context.Context, email string) (model.WaitlistEntry, error)
}

type WaitlistHandler struct {
	service waitlistService
}

func NewWaitlistHandler(service waitlistService) *WaitlistHandler {
	return &WaitlistHandler{service: service}
}

func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var payload model.WaitlistRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.service.Join(r.Context(), payload.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "You have successfully joined supashop customer waitlist. Stay tuned for updates on your mail.")
}
