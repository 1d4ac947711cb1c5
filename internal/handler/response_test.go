package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"supashop-api/internal/model"
	"supashop-api/pkg/apierror"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"api error", apierror.NotFound("Product not found"), http.StatusNotFound, `{"message":"Product not found","code":"NOT_FOUND"}`},
		{"wrapped api error", fmt.Errorf("load: %w", apierror.Conflict("Email already exist")), http.StatusConflict, `{"message":"Email already exist","code":"CONFLICT"}`},
		{"invalid token", fmt.Errorf("parse: %w", model.ErrInvalidToken), http.StatusForbidden, `{"message":"Forbidden","code":"FORBIDDEN"}`},
		{"unexpected", errors.New("connection refused to 10.0.0.3"), http.StatusInternalServerError, `{"message":"internal server error","code":"INTERNAL_ERROR"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestSkipParam(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"/products":          0,
		"/products?skip=20":  20,
		"/products?skip=-5":  0,
		"/products?skip=abc": 0,
	}
	for target, want := range cases {
		assert.Equal(t, want, skipParam(httptest.NewRequest(http.MethodGet, target, nil)), target)
	}
}

func TestWriteRawPassesBytesThrough(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeRaw(rec, http.StatusOK, []byte(`{"count":1,"data":[]}`))

	assert.Equal(t, `{"count":1,"data":[]}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
