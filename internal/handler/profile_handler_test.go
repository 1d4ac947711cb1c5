package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supashop-api/internal/model"
	"supashop-api/pkg/apierror"
)

type fakeProfile struct {
	kind       model.AccountKind
	id         string
	update     model.UpdateProfileRequest
	passwords  model.ChangePasswordRequest
	deleted    bool
	err        error
	merchantUp bool
}

func (f *fakeProfile) PublicUser(_ context.Context, id string) (model.PublicUser, error) {
	return model.PublicUser{ID: id, Name: "Ada"}, f.err
}

func (f *fakeProfile) UpdateUser(_ context.Context, id string, req model.UpdateProfileRequest) (model.User, error) {
	f.id, f.update = id, req
	return model.User{Account: model.Account{ID: id, Name: req.Name}}, f.err
}

func (f *fakeProfile) UpdateMerchant(_ context.Context, id string, req model.UpdateProfileRequest) (model.Merchant, error) {
	f.id, f.update, f.merchantUp = id, req, true
	return model.Merchant{Account: model.Account{ID: id, Name: req.Name}}, f.err
}

func (f *fakeProfile) ChangePassword(_ context.Context, kind model.AccountKind, id string, req model.ChangePasswordRequest) error {
	f.kind, f.id, f.passwords = kind, id, req
	return f.err
}

func (f *fakeProfile) DeleteAccount(_ context.Context, kind model.AccountKind, id string) error {
	f.kind, f.id, f.deleted = kind, id, true
	return f.err
}

func (f *fakeProfile) SetPicture(_ context.Context, kind model.AccountKind, id string, _ []byte) (string, error) {
	f.kind, f.id = kind, id
	return "users/x.jpg", f.err
}

func (f *fakeProfile) DeletePicture(_ context.Context, kind model.AccountKind, id string) error {
	f.kind, f.id = kind, id
	return f.err
}

func TestPublicUser(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/users/{id}", NewProfileHandler(&fakeProfile{}, CookieConfig{}, 1<<20).PublicUser)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u-9", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"u-9"`)
}

func TestUpdateProfileByKind(t *testing.T) {
	t.Parallel()

	profile := &fakeProfile{}
	h := NewProfileHandler(profile, CookieConfig{}, 1<<20)

	rec := httptest.NewRecorder()
	h.Update(model.KindMerchant)(rec, asMerchant(httptest.NewRequest(http.MethodPatch, "/merchant/profile", strings.NewReader(`{"name":"Shop","city":"Accra"}`)), "m-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, profile.merchantUp)
	assert.Equal(t, "m-1", profile.id)
	assert.Equal(t, "Accra", profile.update.City)
	assert.Contains(t, rec.Body.String(), "Profile Updated")
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	t.Parallel()

	h := NewProfileHandler(&fakeProfile{err: apierror.Unauthorized("Current password is incorrect")}, CookieConfig{}, 1<<20)

	rec := httptest.NewRecorder()
	h.ChangePassword(model.KindUser)(rec, asUser(httptest.NewRequest(http.MethodPut, "/profile/password",
		strings.NewReader(`{"oldPassword":"bad","newPassword":"new"}`)), "u-1"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteAccountClearsCookie(t *testing.T) {
	t.Parallel()

	profile := &fakeProfile{}
	h := NewProfileHandler(profile, CookieConfig{}, 1<<20)

	rec := httptest.NewRecorder()
	h.Delete(model.KindUser)(rec, asUser(httptest.NewRequest(http.MethodDelete, "/profile", nil), "u-1"))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, profile.deleted)
	assert.Equal(t, model.KindUser, profile.kind)
	cookie := findCookie(t, rec)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestDeletePictureMissing(t *testing.T) {
	t.Parallel()

	h := NewProfileHandler(&fakeProfile{err: apierror.NotFound("Image were not found")}, CookieConfig{}, 1<<20)

	rec := httptest.NewRecorder()
	h.DeletePicture(model.KindUser)(rec, asUser(httptest.NewRequest(http.MethodDelete, "/profile/dp", nil), "u-1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
