//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"supashop-api/internal/cache"
	"supashop-api/internal/config"
	"supashop-api/internal/database"
	"supashop-api/internal/handler"
	"supashop-api/internal/mail"
	"supashop-api/internal/middleware"
	"supashop-api/internal/repository"
	"supashop-api/internal/router"
	"supashop-api/internal/scheduler"
	"supashop-api/internal/security"
	"supashop-api/internal/service"
	"supashop-api/internal/storage"
)

type env struct {
	server *httptest.Server
	db     *database.DB
	redis  *redis.Client
	mail   *outbox
	expiry *scheduler.ExpiryQueue
	sweep  *scheduler.Sweeper
}

// outbox records every message instead of delivering it.
type outbox struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

func (o *outbox) last(t *testing.T) mail.Message {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.messages)
	return o.messages[len(o.messages)-1]
}

// newEnv wires the full stack against TEST_DATABASE_URL and TEST_REDIS_URL.
// Every table and the Redis database are wiped first.
func newEnv(t *testing.T, codeTTL time.Duration, cacheTTL time.Duration) *env {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	redisURL := os.Getenv("TEST_REDIS_URL")
	if dbURL == "" || redisURL == "" {
		t.Skip("TEST_DATABASE_URL and TEST_REDIS_URL are required")
	}

	ctx := context.Background()
	db, err := database.New(ctx, database.Options{URL: dbURL, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE order_items, orders, cart_items, wishlist_items, products, waitlist, users, merchants CASCADE`)
	require.NoError(t, err)

	redisClient, err := cache.Connect(ctx, redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisClient.Close() })
	require.NoError(t, redisClient.FlushDB(ctx).Err())

	images, err := storage.NewLocalStore(t.TempDir(), 256)
	require.NoError(t, err)

	box := &outbox{}
	templates, err := mail.NewTemplates()
	require.NoError(t, err)
	mailer := mail.NewMailer(box, templates, "SupaShop <test@supashop.local>")

	pool := db.Pool
	accounts := repository.NewAccountRepository(pool)
	products := repository.NewProductRepository(pool)
	merchants := repository.NewMerchantRepository(pool)
	responses := cache.New(redisClient, cacheTTL)

	tokens := security.NewTokenIssuer(security.TokenConfig{
		AccessSecret:  "it-access",
		RefreshSecret: "it-refresh",
		ResetSecret:   "it-reset",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		ResetTTL:      time.Hour,
	})
	hasher := security.NewPasswordHasher()
	expiry := scheduler.NewExpiryQueue(redisClient, codeTTL)

	verification := service.NewVerificationService(accounts, expiry, mailer, codeTTL, nil)
	auth := service.NewAuthService(accounts, hasher, tokens, verification, mailer, images,
		service.AuthConfig{FrontendURL: "http://frontend.test", ResetTTL: time.Hour}, nil)

	cookie := handler.CookieConfig{MaxAge: 24 * time.Hour}
	cfg := &config.Config{RequestTimeout: 10 * time.Second}
	h := router.Handlers{
		Auth:     handler.NewAuthHandler(auth, verification, cookie, 1<<20),
		Profile:  handler.NewProfileHandler(service.NewProfileService(accounts, repository.NewUserRepository(pool), merchants, hasher, images, nil), cookie, 1<<20),
		Product:  handler.NewProductHandler(service.NewCatalogService(products, responses, images, nil), 1<<20),
		Store:    handler.NewStoreHandler(service.NewStoreService(merchants, products, responses)),
		Cart:     handler.NewCartHandler(service.NewCartService(repository.NewCartRepository(pool))),
		Wishlist: handler.NewWishlistHandler(service.NewWishlistService(repository.NewWishlistRepository(pool), responses)),
		Order:    handler.NewOrderHandler(service.NewOrderService(repository.NewOrderRepository(pool))),
		Review:   handler.NewReviewHandler(service.NewReviewService(repository.NewReviewRepository(pool))),
		Waitlist: handler.NewWaitlistHandler(service.NewWaitlistService(repository.NewWaitlistRepository(pool))),
		Docs:     handler.NewDocsHandler(),
		Health:   handler.NewHealthHandler(map[string]handler.Pinger{"database": pool}),
	}

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(tokens), h, ""))
	t.Cleanup(server.Close)

	return &env{
		server: server,
		db:     db,
		redis:  redisClient,
		mail:   box,
		expiry: expiry,
		sweep:  scheduler.NewSweeper(expiry, accounts, nil),
	}
}

// client returns an HTTP client with its own cookie jar, i.e. one browser.
func (e *env) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

type response struct {
	status int
	body   map[string]any
	raw    string
}

func (e *env) do(t *testing.T, c *http.Client, method string, path string, body string, bearer string) response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := response{status: resp.StatusCode, raw: string(raw)}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.body))
	}
	return out
}

func (e *env) refreshCookie(t *testing.T, c *http.Client) string {
	t.Helper()
	for _, cookie := range c.Jar.Cookies(mustURL(t, e.server.URL)) {
		if cookie.Name == "refreshToken" {
			return cookie.Value
		}
	}
	return ""
}

func (e *env) storedCode(t *testing.T, table string, email string) *string {
	t.Helper()
	var code *string
	err := e.db.Pool.QueryRow(context.Background(),
		`SELECT verification_code FROM `+table+` WHERE email = $1`, email).Scan(&code)
	require.NoError(t, err)
	return code
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
