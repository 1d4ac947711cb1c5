package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"supashop-api/internal/model"
	"supashop-api/internal/service"
)

type authService interface {
	Register(ctx context.Context, kind model.AccountKind, req model.RegisterRequest, picture []byte) (model.Account, error)
	Login(ctx context.Context, kind model.AccountKind, email string, password string) (service.Session, error)
	Refresh(ctx context.Context, kind model.AccountKind, token string) (service.Session, error)
	Logout(ctx context.Context, kind model.AccountKind, token string) error
	ForgotPassword(ctx context.Context, kind model.AccountKind, email string) error
	ResetPassword(ctx context.Context, kind model.AccountKind, token string, password string) error
}

type verificationService interface {
	Issue(ctx context.Context, kind model.AccountKind, email string) error
	Verify(ctx context.Context, kind model.AccountKind, email string, code string) error
}

// AuthHandler serves the session endpoints. Every method returns the handler
// for one account kind so users and merchants share a single flow.
type AuthHandler struct {
	auth          authService
	verification  verificationService
	cookie        CookieConfig
	maxUploadSize int64
}

func NewAuthHandler(auth authService, verification verificationService, cookie CookieConfig, maxUploadSize int64) *AuthHandler {
	return &AuthHandler{auth: auth, verification: verification, cookie: cookie, maxUploadSize: maxUploadSize}
}

func (h *AuthHandler) Register(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			req     model.RegisterRequest
			picture []byte
		)

		if isMultipart(r) {
			data, _, err := readUpload(w, r, "dp", h.maxUploadSize)
			if err != nil {
				writeError(w, r, err)
				return
			}
			picture = data
			req = registerForm(r)
		} else if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		account, err := h.auth.Register(r.Context(), kind, req, picture)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message":    "Account created",
			string(kind): account,
		})
	}
}

func registerForm(r *http.Request) model.RegisterRequest {
	return model.RegisterRequest{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		PhoneNumber: r.FormValue("phone_number"),
		Username:    r.FormValue("username"),
		Password:    r.FormValue("password"),
		Address:     r.FormValue("address"),
		City:        r.FormValue("city"),
		Country:     r.FormValue("country"),
		Category:    r.FormValue("category"),
	}
}

func (h *AuthHandler) Login(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.LoginRequest
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, r, err)
			return
		}

		session, err := h.auth.Login(r.Context(), kind, payload.Email, payload.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		h.cookie.set(w, session.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{
			"message":     "Login was successful",
			string(kind):  session.Account,
			"accessToken": session.AccessToken,
		})
	}
}

// Refresh answers a request without a cookie with a bare 401.
func (h *AuthHandler) Refresh(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := refreshCookie(r)
		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		session, err := h.auth.Refresh(r.Context(), kind, token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		h.cookie.set(w, session.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{
			"message":     "Token refreshed",
			"accessToken": session.AccessToken,
			string(kind):  session.Account,
		})
	}
}

func (h *AuthHandler) Logout(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := refreshCookie(r)
		if token == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if err := h.auth.Logout(r.Context(), kind, token); err != nil {
			writeError(w, r, err)
			return
		}

		h.cookie.clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *AuthHandler) ForgotPassword(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.ForgotPasswordRequest
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, r, err)
			return
		}

		if err := h.auth.ForgotPassword(r.Context(), kind, payload.Email); err != nil {
			writeError(w, r, err)
			return
		}

		writeMessage(w, http.StatusOK, "Password reset link sent to your email")
	}
}

func (h *AuthHandler) ResetPassword(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.ResetPasswordRequest
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, r, err)
			return
		}

		token := strings.TrimSpace(r.URL.Query().Get("token"))
		if err := h.auth.ResetPassword(r.Context(), kind, token, payload.Password); err != nil {
			writeError(w, r, err)
			return
		}

		writeMessage(w, http.StatusOK, "Password reset successful")
	}
}

func (h *AuthHandler) SendVerification(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.verification.Issue(r.Context(), kind, chi.URLParam(r, "email")); err != nil {
			writeError(w, r, err)
			return
		}

		writeMessage(w, http.StatusOK, "Verification mail has been sent")
	}
}

func (h *AuthHandler) Verify(kind model.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.VerifyCodeRequest
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, r, err)
			return
		}

		if err := h.verification.Verify(r.Context(), kind, payload.Email, payload.Code); err != nil {
			writeError(w, r, err)
			return
		}

		writeMessage(w, http.StatusAccepted, kind.Label()+" has been verified successfully")
	}
}
