//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resetTokenPattern = regexp.MustCompile(`token=([^"&<\s]+)`)

func registerUser(t *testing.T, e *env, c *http.Client, email string, password string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Ada","email":%q,"phone_number":"0800","username":%q,"password":%q}`, email, email, password)
	resp := e.do(t, c, http.MethodPost, "/auth/register", body, "")
	require.Equal(t, http.StatusCreated, resp.status, resp.raw)
}

func login(t *testing.T, e *env, c *http.Client, path string, email string, password string) string {
	t.Helper()
	resp := e.do(t, c, http.MethodPost, path, fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), "")
	require.Equal(t, http.StatusOK, resp.status, resp.raw)
	token, _ := resp.body["accessToken"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterVerifyLogin(t *testing.T) {
	e := newEnv(t, time.Minute, time.Hour)
	c := e.client(t)

	registerUser(t, e, c, "ada@example.com", "correct horse")

	dup := e.do(t, c, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","phone_number":"1","username":"other","password":"x"}`, "")
	assert.Equal(t, http.StatusConflict, dup.status)
	assert.Equal(t, "Email already exist", dup.body["message"])

	code := e.storedCode(t, "users", "ada@example.com")
	require.NotNil(t, code)
	assert.Regexp(t, `^\d{6}$`, *code)
	assert.Contains(t, e.mail.last(t).HTML, *code)

	wrong := e.do(t, c, http.MethodPost, "/verify-mail", `{"email":"ada@example.com","code":"000000x"}`, "")
	assert.Equal(t, http.StatusBadRequest, wrong.status)

	ok := e.do(t, c, http.MethodPost, "/verify-mail", fmt.Sprintf(`{"email":"ada@example.com","code":%q}`, *code), "")
	require.Equal(t, http.StatusAccepted, ok.status, ok.raw)
	assert.Nil(t, e.storedCode(t, "users", "ada@example.com"))

	bad := e.do(t, c, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, bad.status)

	missing := e.do(t, c, http.MethodPost, "/auth/login", `{"email":"ghost@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusNotFound, missing.status)

	access := login(t, e, c, "/auth/login", "ada@example.com", "correct horse")
	assert.NotEmpty(t, e.refreshCookie(t, c))

	cart := e.do(t, c, http.MethodGet, "/cart", "", access)
	assert.Equal(t, http.StatusOK, cart.status)

	asMerchant := e.do(t, c, http.MethodGet, "/merchant/products", "", access)
	assert.Equal(t, http.StatusForbidden, asMerchant.status)
}

func TestRefreshRotationAndLogout(t *testing.T) {
	e := newEnv(t, time.Minute, time.Hour)
	browser := e.client(t)

	registerUser(t, e, browser, "rot@example.com", "pw-one")
	login(t, e, browser, "/auth/login", "rot@example.com", "pw-one")
	first := e.refreshCookie(t, browser)

	rotated := e.do(t, browser, http.MethodGet, "/refresh", "", "")
	require.Equal(t, http.StatusOK, rotated.status, rotated.raw)
	second := e.refreshCookie(t, browser)
	require.NotEqual(t, first, second)

	// A second browser replaying the consumed token is refused.
	replay := e.client(t)
	replay.Jar.SetCookies(mustURL(t, e.server.URL), []*http.Cookie{{Name: "refreshToken", Value: first, Path: "/"}})
	stale := e.do(t, replay, http.MethodGet, "/refresh", "", "")
	assert.Equal(t, http.StatusForbidden, stale.status)

	// The user token is not a merchant token.
	wrongKind := e.do(t, browser, http.MethodGet, "/refresh/merchant", "", "")
	assert.Equal(t, http.StatusForbidden, wrongKind.status)

	out := e.do(t, browser, http.MethodGet, "/logout", "", "")
	assert.Equal(t, http.StatusNoContent, out.status)
	assert.Empty(t, e.refreshCookie(t, browser))

	var tokens []string
	require.NoError(t, e.db.Pool.QueryRow(context.Background(),
		`SELECT refresh_tokens FROM users WHERE email = $1`, "rot@example.com").Scan(&tokens))
	assert.NotContains(t, tokens, second)

	noCookie := e.do(t, browser, http.MethodGet, "/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, noCookie.status)
}

func TestConcurrentRefreshRotatesOnce(t *testing.T) {
	e := newEnv(t, time.Minute, time.Hour)
	c := e.client(t)

	registerUser(t, e, c, "race@example.com", "pw")
	login(t, e, c, "/auth/login", "race@example.com", "pw")
	token := e.refreshCookie(t, c)

	const racers = 8
	statuses := make(chan int, racers)
	for i := 0; i < racers; i++ {
		go func() {
			req, _ := http.NewRequest(http.MethodGet, e.server.URL+"/refresh", nil)
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: token})
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}

	wins := 0
	for i := 0; i < racers; i++ {
		if <-statuses == http.StatusOK {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestPasswordReset(t *testing.T) {
	e := newEnv(t, time.Minute, time.Hour)
	c := e.client(t)

	registerUser(t, e, c, "reset@example.com", "old-password")

	unknown := e.do(t, c, http.MethodPost, "/auth/forgot-password", `{"email":"nobody@example.com"}`, "")
	assert.Equal(t, http.StatusOK, unknown.status)

	sent := e.do(t, c, http.MethodPost, "/auth/forgot-password", `{"email":"reset@example.com"}`, "")
	require.Equal(t, http.StatusOK, sent.status)

	match := resetTokenPattern.FindStringSubmatch(e.mail.last(t).HTML)
	require.Len(t, match, 2)
	token, err := url.QueryUnescape(match[1])
	require.NoError(t, err)

	same := e.do(t, c, http.MethodPost, "/auth/reset-password?token="+url.QueryEscape(token), `{"password":"old-password"}`, "")
	assert.Equal(t, http.StatusBadRequest, same.status)

	done := e.do(t, c, http.MethodPost, "/auth/reset-password?token="+url.QueryEscape(token), `{"password":"new-password"}`, "")
	require.Equal(t, http.StatusOK, done.status, done.raw)

	replay := e.do(t, c, http.MethodPost, "/auth/reset-password?token="+url.QueryEscape(token), `{"password":"third-password"}`, "")
	assert.Equal(t, http.StatusBadRequest, replay.status)

	login(t, e, c, "/auth/login", "reset@example.com", "new-password")
}

func TestVerificationCodeExpires(t *testing.T) {
	e := newEnv(t, time.Second, time.Hour)
	c := e.client(t)

	registerUser(t, e, c, "slow@example.com", "pw")
	code := e.storedCode(t, "users", "slow@example.com")
	require.NotNil(t, code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.sweep.Run(ctx, 100*time.Millisecond)

	require.Eventually(t, func() bool {
		return e.storedCode(t, "users", "slow@example.com") == nil
	}, 5*time.Second, 100*time.Millisecond)

	late := e.do(t, c, http.MethodPost, "/verify-mail", fmt.Sprintf(`{"email":"slow@example.com","code":%q}`, *code), "")
	assert.Equal(t, http.StatusBadRequest, late.status)
}
