package handler

import (
	"net/http"

	"supashop-api/internal/middleware"
	"supashop-api/pkg/apierror"
)

// accountID returns the id of the authenticated caller. Routes behind
// RequireKind always have one.
func accountID(r *http.Request) (string, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.ID == "" {
		return "", apierror.Unauthorized("Unauthorized")
	}
	return claims.ID, nil
}
