package repository

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"supashop-api/pkg/apierror"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, "User not found"},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), http.StatusNotFound, "User not found"},
		{"duplicate email", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, http.StatusConflict, "Email already exist"},
		{"duplicate merchant username", &pgconn.PgError{Code: "23505", ConstraintName: "merchants_username_key"}, http.StatusConflict, "Username already exist"},
		{"duplicate waitlist email", &pgconn.PgError{Code: "23505", ConstraintName: "waitlist_email_key"}, http.StatusConflict, "Email already exist"},
		{"duplicate wishlist", &pgconn.PgError{Code: "23505", ConstraintName: "wishlist_items_user_product_key"}, http.StatusConflict, "Product already in wishlist"},
		{"missing product", &pgconn.PgError{Code: "23503", ConstraintName: "cart_items_product_id_fkey"}, http.StatusNotFound, "Product not found"},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, http.StatusNotFound, "User not found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.err, "find user", "User not found")

			var apiErr *apierror.APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tc.wantStatus, apiErr.HTTPStatus)
			require.Equal(t, tc.wantMsg, apiErr.Message)
		})
	}
}

func TestClassifyPassesThroughUnknownErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	err := classify(boom, "find user", "User not found")
	require.ErrorIs(t, err, boom)
	require.Zero(t, apierror.Status(err))
	require.Nil(t, classify(nil, "x", "y"))
}
