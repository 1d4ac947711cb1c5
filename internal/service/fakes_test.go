package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"supashop-api/internal/cache"
	"supashop-api/internal/mail"
	"supashop-api/internal/model"
	"supashop-api/internal/security"
	"supashop-api/pkg/apierror"
)

// fakeAccounts is an in-memory AccountStore with the same conditional
// semantics as the SQL statements.
type fakeAccounts struct {
	mu     sync.Mutex
	nextID int
	rows   map[model.AccountKind]map[string]*model.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{rows: map[model.AccountKind]map[string]*model.Account{
		model.KindUser:     {},
		model.KindMerchant: {},
	}}
}

func (f *fakeAccounts) byEmail(kind model.AccountKind, email string) *model.Account {
	for _, a := range f.rows[kind] {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (f *fakeAccounts) notFound(kind model.AccountKind) error {
	return apierror.NotFound(kind.Label() + " not found")
}

func (f *fakeAccounts) Create(_ context.Context, in model.NewAccount) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.rows[in.Kind] {
		if a.Email == in.Email {
			return model.Account{}, apierror.Conflict("Email already exist")
		}
		if a.Username == in.Username {
			return model.Account{}, apierror.Conflict("Username already exist")
		}
	}

	f.nextID++
	code := in.VerificationCode
	a := &model.Account{
		ID:               "acct-" + strconv.Itoa(f.nextID),
		Kind:             in.Kind,
		Name:             in.Name,
		Email:            in.Email,
		Username:         in.Username,
		PhoneNumber:      in.PhoneNumber,
		PasswordHash:     in.PasswordHash,
		VerificationCode: &code,
		RefreshTokens:    []string{},
		DisplayPicture:   in.DisplayPicture,
		CreatedAt:        time.Now().UTC(),
	}
	f.rows[in.Kind][a.ID] = a
	return *a, nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, kind model.AccountKind, email string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a := f.byEmail(kind, email); a != nil {
		return *a, nil
	}
	return model.Account{}, f.notFound(kind)
}

func (f *fakeAccounts) FindByID(_ context.Context, kind model.AccountKind, id string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.rows[kind][id]; ok {
		return *a, nil
	}
	return model.Account{}, f.notFound(kind)
}

func (f *fakeAccounts) FindByRefreshToken(_ context.Context, kind model.AccountKind, token string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows[kind] {
		if a.HasRefreshToken(token) {
			return *a, nil
		}
	}
	return model.Account{}, f.notFound(kind)
}

func (f *fakeAccounts) PrependRefreshToken(_ context.Context, kind model.AccountKind, id string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[kind][id]
	if !ok {
		return f.notFound(kind)
	}
	a.RefreshTokens = append([]string{token}, a.RefreshTokens...)
	return nil
}

func (f *fakeAccounts) RotateRefreshToken(_ context.Context, kind model.AccountKind, id string, oldToken string, newToken string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[kind][id]
	if !ok || !a.HasRefreshToken(oldToken) {
		return false, nil
	}
	for i, t := range a.RefreshTokens {
		if t == oldToken {
			a.RefreshTokens[i] = newToken
		}
	}
	return true, nil
}

func (f *fakeAccounts) RemoveRefreshToken(_ context.Context, kind model.AccountKind, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	removed := false
	for _, a := range f.rows[kind] {
		kept := a.RefreshTokens[:0]
		for _, t := range a.RefreshTokens {
			if t == token {
				removed = true
				continue
			}
			kept = append(kept, t)
		}
		a.RefreshTokens = kept
	}
	return removed, nil
}

func (f *fakeAccounts) SetVerificationCode(_ context.Context, kind model.AccountKind, email string, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.byEmail(kind, email)
	if a == nil {
		return f.notFound(kind)
	}
	a.VerificationCode = &code
	return nil
}

func (f *fakeAccounts) ConfirmVerification(_ context.Context, kind model.AccountKind, email string, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.byEmail(kind, email)
	if a == nil || a.VerificationCode == nil || *a.VerificationCode != code {
		return false, nil
	}
	a.IsVerified = true
	a.VerificationCode = nil
	return true, nil
}

func (f *fakeAccounts) ClearVerificationCode(_ context.Context, kind model.AccountKind, email string, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.byEmail(kind, email)
	if a == nil || a.VerificationCode == nil || *a.VerificationCode != code {
		return false, nil
	}
	a.VerificationCode = nil
	return true, nil
}

func (f *fakeAccounts) SetResetToken(_ context.Context, kind model.AccountKind, email string, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.byEmail(kind, email)
	if a == nil {
		return false, nil
	}
	a.ResetPasswordToken = &token
	return true, nil
}

func (f *fakeAccounts) ResetPassword(_ context.Context, kind model.AccountKind, email string, token string, passwordHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.byEmail(kind, email)
	if a == nil || a.ResetPasswordToken == nil || *a.ResetPasswordToken != token {
		return false, nil
	}
	a.PasswordHash = passwordHash
	a.ResetPasswordToken = nil
	return true, nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, kind model.AccountKind, id string, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[kind][id]
	if !ok {
		return f.notFound(kind)
	}
	a.PasswordHash = passwordHash
	return nil
}

func (f *fakeAccounts) SetDisplayPicture(_ context.Context, kind model.AccountKind, id string, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[kind][id]
	if !ok {
		return "", f.notFound(kind)
	}
	previous := a.DisplayPicture
	a.DisplayPicture = ref
	return previous, nil
}

func (f *fakeAccounts) Delete(_ context.Context, kind model.AccountKind, id string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[kind][id]
	if !ok {
		return model.Account{}, f.notFound(kind)
	}
	delete(f.rows[kind], id)
	return *a, nil
}

func (f *fakeAccounts) get(t *testing.T, kind model.AccountKind, email string) model.Account {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.byEmail(kind, email)
	if a == nil {
		t.Fatalf("no %s account for %s", kind, email)
	}
	return *a
}

// fakeHasher keeps tests fast; the argon2 hasher has its own tests.
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (fakeHasher) Verify(encoded string, plaintext string) (bool, error) {
	if !strings.HasPrefix(encoded, "hashed:") {
		return false, security.ErrMalformedHash
	}
	return encoded == "hashed:"+plaintext, nil
}

type scheduledCode struct {
	kind  model.AccountKind
	email string
	code  string
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledCode
	err       error
}

func (f *fakeScheduler) Schedule(_ context.Context, kind model.AccountKind, email string, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.scheduled = append(f.scheduled, scheduledCode{kind: kind, email: email, code: code})
	return nil
}

type fakeMailer struct {
	mu           sync.Mutex
	verification []mail.VerificationData
	resets       []mail.ResetData
	err          error
}

func (f *fakeMailer) SendVerification(_ context.Context, _ string, data mail.VerificationData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.verification = append(f.verification, data)
	return nil
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, _ string, data mail.ResetData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.resets = append(f.resets, data)
	return nil
}

var errMailDown = errors.New("mail transport down")

func newTestTokens() *security.TokenIssuer {
	return security.NewTokenIssuer(security.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		ResetSecret:   "reset-secret",
		AccessTTL:     3 * time.Hour,
		RefreshTTL:    30 * 24 * time.Hour,
		ResetTTL:      time.Hour,
	})
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, time.Hour), mr
}
