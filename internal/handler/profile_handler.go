package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"supashop-api/internal/model"
)

type profileService interface {
	PublicUser(ctx context.Context, id string) (model.PublicUser, error)
	UpdateUser(ctx context.Context, id string, req model.UpdateProfileRequest) (model.User, error)
	UpdateMerchant(ctx context.Context, id string, req model.UpdateProfileRequest) (model.Merchant, error)
	ChangePassword(ctx context.Context, kind model.AccountKind, id string, req model.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, kind model.AccountKind, id string) error
	SetPicture(ctx context.Context, kind model.AccountKind, id string, data []byte) (string, error)
	DeletePicture(ctx context.Context, kind model.AccountKind, id string) error
}

type ProfileHandler struct {
	service       profileService
	cookie        CookieConfig
	maxUploadSize int64
}

func NewProfileHandler(service profileService, cookie CookieConfig, maxUploadSize int64) *ProfileHandler {
	return &ProfileHandler{service: service, cookie: cookie, maxUploadSize: maxUploadSize}
}

func (h *ProfileHandler) PublicUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.PublicUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *ProfileHandler) Update(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var payload model.UpdateProfileRequest
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, r, err)
			return
		}

		var profile any
		if kind == model.KindMerchant {
			profile, err = h.service.UpdateMerchant(r.Context(), id, payload)
		} else {
			profile, err = h.service.UpdateUser(r.Context(), id, payload)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"message": "Profile Updated", "profile": profile})
	}
}

func (h *ProfileHandler) ChangePassword(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var payload model.ChangePasswordRequest
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, r, err)
			return
		}

		if err := h.service.ChangePassword(r.Context(), kind, id, payload); err != nil {
			writeError(w, r, err)
			return
		}

		writeMessage(w, http.StatusAccepted, "Password was updated successfully")
	}
}

// Delete removes the caller's account and ends the browser session.
func (h *ProfileHandler) Delete(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := h.service.DeleteAccount(r.Context(), kind, id); err != nil {
			writeError(w, r, err)
			return
		}

		h.cookie.clear(w)
		writeMessage(w, http.StatusAccepted, "Account Deleted")
	}
}

func (h *ProfileHandler) SetPicture(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		data, err := requireUpload(w, r, "dp", h.maxUploadSize)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ref, err := h.service.SetPicture(r.Context(), kind, id, data)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{"message": "Profile Updated", "profile": map[string]string{"dp": ref}})
	}
}

func (h *ProfileHandler) DeletePicture(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := accountID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := h.service.DeletePicture(r.Context(), kind, id); err != nil {
			writeError(w, r, err)
			return
		}

		writeMessage(w, http.StatusOK, "Profile image deleted successfully")
	}
}
