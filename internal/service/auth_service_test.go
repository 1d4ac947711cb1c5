package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"supashop-api/internal/model"
	"supashop-api/internal/storage"
	"supashop-api/pkg/apierror"
)

type authFixture struct {
	svc       *AuthService
	accounts  *fakeAccounts
	scheduler *fakeScheduler
	mailer    *fakeMailer
	images    *storage.MockImageStore
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	accounts := newFakeAccounts()
	scheduler := &fakeScheduler{}
	mailer := &fakeMailer{}
	images := &storage.MockImageStore{}
	verification := NewVerificationService(accounts, scheduler, mailer, 15*time.Minute, nil)
	svc := NewAuthService(accounts, fakeHasher{}, newTestTokens(), verification, mailer, images,
		AuthConfig{FrontendURL: "https://shop.example/", ResetTTL: time.Hour}, nil)

	return authFixture{svc: svc, accounts: accounts, scheduler: scheduler, mailer: mailer, images: images}
}

func validRegistration() model.RegisterRequest {
	return model.RegisterRequest{Name: "A", Email: "a@x.com", PhoneNumber: "1", Username: "a", Password: "p"}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("stores a hash and mails a scheduled code", func(t *testing.T) {
		f := newAuthFixture(t)

		account, err := f.svc.Register(context.Background(), model.KindUser, validRegistration(), nil)
		require.NoError(t, err)
		require.Equal(t, "a@x.com", account.Email)

		stored := f.accounts.get(t, model.KindUser, "a@x.com")
		require.NotEqual(t, "p", stored.PasswordHash)
		require.False(t, stored.IsVerified)
		require.NotNil(t, stored.VerificationCode)

		require.Len(t, f.scheduler.scheduled, 1)
		require.Equal(t, *stored.VerificationCode, f.scheduler.scheduled[0].code)
		require.Len(t, f.mailer.verification, 1)
		require.Equal(t, *stored.VerificationCode, f.mailer.verification[0].Code)
		require.Equal(t, "15 minutes", f.mailer.verification[0].ExpiresIn)
	})

	t.Run("second registration with the same email conflicts", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Register(context.Background(), model.KindUser, validRegistration(), nil)
		require.NoError(t, err)

		again := validRegistration()
		again.Email = " A@X.com "
		again.Username = "other"
		_, err = f.svc.Register(context.Background(), model.KindUser, again, nil)
		require.Equal(t, http.StatusConflict, apierror.Status(err))
		require.ErrorContains(t, err, "Email already exist")
	})

	t.Run("missing field is rejected", func(t *testing.T) {
		f := newAuthFixture(t)

		req := validRegistration()
		req.Password = ""
		_, err := f.svc.Register(context.Background(), model.KindUser, req, nil)
		require.Equal(t, http.StatusBadRequest, apierror.Status(err))
	})

	t.Run("merchant needs store details", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Register(context.Background(), model.KindMerchant, validRegistration(), nil)
		require.Equal(t, http.StatusBadRequest, apierror.Status(err))

		req := validRegistration()
		req.Address, req.City, req.Country, req.Category = "1 Main St", "Lagos", "NG", "fashion"
		_, err = f.svc.Register(context.Background(), model.KindMerchant, req, nil)
		require.NoError(t, err)
	})

	t.Run("mail failure still creates the account", func(t *testing.T) {
		f := newAuthFixture(t)
		f.mailer.err = errMailDown

		_, err := f.svc.Register(context.Background(), model.KindUser, validRegistration(), nil)
		require.NoError(t, err)
		f.accounts.get(t, model.KindUser, "a@x.com")
	})

	t.Run("code is withdrawn when its expiry cannot be scheduled", func(t *testing.T) {
		f := newAuthFixture(t)
		f.scheduler.err = errors.New("redis unavailable")

		_, err := f.svc.Register(context.Background(), model.KindUser, validRegistration(), nil)
		require.NoError(t, err)

		stored := f.accounts.get(t, model.KindUser, "a@x.com")
		require.Nil(t, stored.VerificationCode)
		require.Empty(t, f.mailer.verification)
	})

	t.Run("picture is removed when the account cannot be created", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Register(context.Background(), model.KindUser, validRegistration(), nil)
		require.NoError(t, err)

		f.images.On("Save", mock.Anything, storage.FolderUsers, []byte("img")).Return("users/x.jpg", nil).Once()
		f.images.On("Delete", mock.Anything, "users/x.jpg").Return(nil).Once()

		_, err = f.svc.Register(context.Background(), model.KindUser, validRegistration(), []byte("img"))
		require.Equal(t, http.StatusConflict, apierror.Status(err))
		f.images.AssertExpectations(t)
	})
}

func registerAndLogin(t *testing.T, f authFixture) Session {
	t.Helper()

	_, err := f.svc.Register(context.Background(), model.KindUser, validRegistration(), nil)
	require.NoError(t, err)

	session, err := f.svc.Login(context.Background(), model.KindUser, "a@x.com", "p")
	require.NoError(t, err)
	return session
}

func TestLogin(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	session := registerAndLogin(t, f)

	require.NotEmpty(t, session.AccessToken)
	require.Equal(t, []string{session.RefreshToken}, f.accounts.get(t, model.KindUser, "a@x.com").RefreshTokens)

	second, err := f.svc.Login(context.Background(), model.KindUser, "A@x.com", "p")
	require.NoError(t, err)
	require.Equal(t, []string{second.RefreshToken, session.RefreshToken}, f.accounts.get(t, model.KindUser, "a@x.com").RefreshTokens)

	_, err = f.svc.Login(context.Background(), model.KindUser, "a@x.com", "wrong")
	require.Equal(t, http.StatusUnauthorized, apierror.Status(err))

	_, err = f.svc.Login(context.Background(), model.KindUser, "nobody@x.com", "p")
	require.Equal(t, http.StatusNotFound, apierror.Status(err))

	_, err = f.svc.Login(context.Background(), model.KindUser, "", "p")
	require.Equal(t, http.StatusBadRequest, apierror.Status(err))

	_, err = f.svc.Login(context.Background(), model.KindMerchant, "a@x.com", "p")
	require.Equal(t, http.StatusNotFound, apierror.Status(err))
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	session := registerAndLogin(t, f)

	next, err := f.svc.Refresh(context.Background(), model.KindUser, session.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, session.RefreshToken, next.RefreshToken)

	tokens := f.accounts.get(t, model.KindUser, "a@x.com").RefreshTokens
	require.Contains(t, tokens, next.RefreshToken)
	require.NotContains(t, tokens, session.RefreshToken)

	_, err = f.svc.Refresh(context.Background(), model.KindUser, session.RefreshToken)
	require.Equal(t, http.StatusForbidden, apierror.Status(err))

	_, err = f.svc.Refresh(context.Background(), model.KindUser, "")
	require.Equal(t, http.StatusUnauthorized, apierror.Status(err))

	_, err = f.svc.Refresh(context.Background(), model.KindMerchant, next.RefreshToken)
	require.Equal(t, http.StatusForbidden, apierror.Status(err))
}

func TestConcurrentRefreshesRotateOnce(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	session := registerAndLogin(t, f)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Refresh(context.Background(), model.KindUser, session.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.Equal(t, http.StatusForbidden, apierror.Status(err))
	}
	require.Equal(t, 1, succeeded)
	require.Len(t, f.accounts.get(t, model.KindUser, "a@x.com").RefreshTokens, 1)
}

func TestLogoutInvalidatesOnlyThatToken(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	first := registerAndLogin(t, f)
	second, err := f.svc.Login(context.Background(), model.KindUser, "a@x.com", "p")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), model.KindUser, first.RefreshToken))
	require.NoError(t, f.svc.Logout(context.Background(), model.KindUser, ""))
	require.NoError(t, f.svc.Logout(context.Background(), model.KindUser, "unknown"))

	_, err = f.svc.Refresh(context.Background(), model.KindUser, first.RefreshToken)
	require.Equal(t, http.StatusForbidden, apierror.Status(err))

	_, err = f.svc.Refresh(context.Background(), model.KindUser, second.RefreshToken)
	require.NoError(t, err)
}

func resetTokenFromLink(t *testing.T, link string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(link, "https://shop.example/reset-password?token="))
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("token works once", func(t *testing.T) {
		f := newAuthFixture(t)
		registerAndLogin(t, f)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), model.KindUser, "a@x.com"))
		require.Len(t, f.mailer.resets, 1)
		require.Equal(t, "1 hour", f.mailer.resets[0].ExpiresIn)
		token := resetTokenFromLink(t, f.mailer.resets[0].Link)

		require.NoError(t, f.svc.ResetPassword(context.Background(), model.KindUser, token, "new-pass"))
		require.Nil(t, f.accounts.get(t, model.KindUser, "a@x.com").ResetPasswordToken)

		_, err := f.svc.Login(context.Background(), model.KindUser, "a@x.com", "new-pass")
		require.NoError(t, err)

		err = f.svc.ResetPassword(context.Background(), model.KindUser, token, "another")
		require.Equal(t, http.StatusBadRequest, apierror.Status(err))
	})

	t.Run("unknown email is not disclosed", func(t *testing.T) {
		f := newAuthFixture(t)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), model.KindUser, "nobody@x.com"))
		require.Empty(t, f.mailer.resets)

		err := f.svc.ForgotPassword(context.Background(), model.KindUser, " ")
		require.Equal(t, http.StatusBadRequest, apierror.Status(err))
	})

	t.Run("only the latest token is accepted", func(t *testing.T) {
		f := newAuthFixture(t)
		registerAndLogin(t, f)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), model.KindUser, "a@x.com"))
		first := resetTokenFromLink(t, f.mailer.resets[0].Link)
		require.NoError(t, f.svc.ForgotPassword(context.Background(), model.KindUser, "a@x.com"))

		err := f.svc.ResetPassword(context.Background(), model.KindUser, first, "new-pass")
		require.Equal(t, http.StatusBadRequest, apierror.Status(err))
	})

	t.Run("rejects the current password and foreign tokens", func(t *testing.T) {
		f := newAuthFixture(t)
		registerAndLogin(t, f)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), model.KindUser, "a@x.com"))
		token := resetTokenFromLink(t, f.mailer.resets[0].Link)

		err := f.svc.ResetPassword(context.Background(), model.KindUser, token, "p")
		require.Equal(t, http.StatusBadRequest, apierror.Status(err))
		require.ErrorContains(t, err, "different")

		err = f.svc.ResetPassword(context.Background(), model.KindMerchant, token, "new-pass")
		require.Equal(t, http.StatusBadRequest, apierror.Status(err))

		err = f.svc.ResetPassword(context.Background(), model.KindUser, "garbage", "new-pass")
		require.Equal(t, http.StatusBadRequest, apierror.Status(err))

		err = f.svc.ResetPassword(context.Background(), model.KindUser, "", "new-pass")
		require.Equal(t, http.StatusBadRequest, apierror.Status(err))
	})
}
