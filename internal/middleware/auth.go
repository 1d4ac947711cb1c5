package middleware

import (
	"context"
	"net/http"
	"strings"

	"supashop-api/internal/model"
)

type accessTokenParser interface {
	ParseAccess(token string) (model.AccountClaims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// AuthMiddleware authenticates bearer access tokens. Access tokens are
// trusted on signature and expiry alone.
type AuthMiddleware struct {
	parser accessTokenParser
}

func NewAuthMiddleware(parser accessTokenParser) *AuthMiddleware {
	return &AuthMiddleware{parser: parser}
}

// RequireKind admits only requests carrying a valid access token minted for
// an account of the given kind.
func (m *AuthMiddleware) RequireKind(kind model.AccountKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
				writeStatus(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
				return
			}

			claims, err := m.parser.ParseAccess(strings.TrimSpace(header[7:]))
			if err != nil {
				writeStatus(w, http.StatusForbidden, "FORBIDDEN", "Invalid or expired token")
				return
			}
			if claims.Kind != kind {
				writeStatus(w, http.StatusForbidden, "FORBIDDEN", "Forbidden")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, claims model.AccountClaims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}

func ClaimsFromContext(ctx context.Context) (model.AccountClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(model.AccountClaims)
	return claims, ok
}
