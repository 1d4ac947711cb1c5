package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"

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

const maxImageDimension = 1024

type App struct {
	server       *http.Server
	sweeper      *scheduler.Sweeper
	sweepEvery   time.Duration
	cleanupFuncs []func()
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()
	a := &App{sweepEvery: cfg.VerificationSweepInterval}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); err != nil {
			logger.Warn("sentry disabled", "error", err)
		} else {
			a.cleanupFuncs = append(a.cleanupFuncs, func() { sentry.Flush(2 * time.Second) })
		}
	}

	logger.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, database.Options{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

	if err := db.Migrate(ctx); err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = redisClient.Close() })
	responses := cache.New(redisClient, cfg.CacheTTL, cache.WithFailOpen(cfg.CacheFailOpen), cache.WithLogger(logger))

	images, imageRoot, err := newImageStore(cfg)
	if err != nil {
		a.cleanup()
		return nil, err
	}

	sender, err := newMailSender(cfg, logger)
	if err != nil {
		a.cleanup()
		return nil, err
	}
	if closer, ok := sender.(io.Closer); ok {
		a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = closer.Close() })
	}
	templates, err := mail.NewTemplates()
	if err != nil {
		a.cleanup()
		return nil, err
	}
	mailer := mail.NewMailer(sender, templates, cfg.MailFrom)

	pool := db.Pool
	accounts := repository.NewAccountRepository(pool)
	users := repository.NewUserRepository(pool)
	merchants := repository.NewMerchantRepository(pool)
	products := repository.NewProductRepository(pool)
	carts := repository.NewCartRepository(pool)
	wishlists := repository.NewWishlistRepository(pool)
	orders := repository.NewOrderRepository(pool)
	reviews := repository.NewReviewRepository(pool)
	waitlist := repository.NewWaitlistRepository(pool)
	logger.Info("database ready")

	tokens := security.NewTokenIssuer(security.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		ResetSecret:   cfg.ResetTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		ResetTTL:      cfg.ResetTokenTTL,
	})
	hasher := security.NewPasswordHasher()

	expiry := scheduler.NewExpiryQueue(redisClient, cfg.VerificationCodeTTL)
	a.sweeper = scheduler.NewSweeper(expiry, accounts, logger)

	verificationService := service.NewVerificationService(accounts, expiry, mailer, cfg.VerificationCodeTTL, logger)
	authService := service.NewAuthService(accounts, hasher, tokens, verificationService, mailer, images,
		service.AuthConfig{FrontendURL: cfg.FrontendURL, ResetTTL: cfg.ResetTokenTTL}, logger)
	profileService := service.NewProfileService(accounts, users, merchants, hasher, images, logger)
	catalogService := service.NewCatalogService(products, responses, images, logger)
	storeService := service.NewStoreService(merchants, products, responses)

	cookie := handler.CookieConfig{Secure: cfg.CookieSecure, MaxAge: cfg.RefreshTokenTTL}
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService, verificationService, cookie, cfg.MaxUploadSize),
		Profile:  handler.NewProfileHandler(profileService, cookie, cfg.MaxUploadSize),
		Product:  handler.NewProductHandler(catalogService, cfg.MaxUploadSize),
		Store:    handler.NewStoreHandler(storeService),
		Cart:     handler.NewCartHandler(service.NewCartService(carts)),
		Wishlist: handler.NewWishlistHandler(service.NewWishlistService(wishlists, responses)),
		Order:    handler.NewOrderHandler(service.NewOrderService(orders)),
		Review:   handler.NewReviewHandler(service.NewReviewService(reviews)),
		Waitlist: handler.NewWaitlistHandler(service.NewWaitlistService(waitlist)),
		Docs:     handler.NewDocsHandler(),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": pool,
			"redis":    redisPinger{client: redisClient},
		}),
	}

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.New(cfg, middleware.NewAuthMiddleware(tokens), handlers, imageRoot),
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

func newImageStore(cfg *config.Config) (storage.ImageStore, string, error) {
	if cfg.ImageStore == "cloudinary" {
		store, err := storage.NewCloudinaryStore(cfg.CloudinaryURL, "supashop", maxImageDimension)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize cloudinary: %w", err)
		}
		return store, "", nil
	}

	store, err := storage.NewLocalStore(cfg.ImageRoot, maxImageDimension)
	if err != nil {
		return nil, "", fmt.Errorf("failed to initialize image storage: %w", err)
	}
	return store, store.RootAbs(), nil
}

func newMailSender(cfg *config.Config, logger *slog.Logger) (mail.Sender, error) {
	switch cfg.MailTransport {
	case "smtp":
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}), nil
	case "kafka":
		return mail.NewKafkaSender(KafkaConfig(cfg)), nil
	case "log":
		return mail.NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport)
	}
}

// KafkaConfig extracts the mail topic settings shared by the API and cmd/mailer.
func KafkaConfig(cfg *config.Config) mail.KafkaConfig {
	return mail.KafkaConfig{
		Broker:   cfg.KafkaBroker,
		Topic:    cfg.KafkaMailTopic,
		GroupID:  cfg.KafkaGroupID,
		Username: cfg.KafkaUsername,
		Password: cfg.KafkaPassword,
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
}

func (a *App) Run() error {
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		a.sweeper.Run(sweepCtx, a.sweepEvery)
	}()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}

	stopSweeper()
	<-sweeperDone
	a.cleanup()

	slog.Info("server stopped")
	return runErr
}
