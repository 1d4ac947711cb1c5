package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	RedisURL      string
	CacheTTL      time.Duration
	CacheFailOpen bool

	AccessTokenSecret  string
	RefreshTokenSecret string
	ResetTokenSecret   string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	ResetTokenTTL      time.Duration

	VerificationCodeTTL       time.Duration
	VerificationSweepInterval time.Duration

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
	TrustedProxies   []string
	FrontendURL      string
	CookieSecure     bool

	MailTransport string
	MailFrom      string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string

	KafkaBroker    string
	KafkaMailTopic string
	KafkaGroupID   string
	KafkaUsername  string
	KafkaPassword  string

	ImageStore    string
	ImageRoot     string
	CloudinaryURL string
	MaxUploadSize int64

	SentryDSN   string
	Environment string
	LogFormat   string
	LogLevel    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "3500"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 15*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 20)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 2)),

		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:      getDuration("CACHE_TTL", time.Hour),
		CacheFailOpen: getBool("CACHE_FAIL_OPEN", false),

		AccessTokenSecret:  strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret: strings.TrimSpace(os.Getenv("REFRESH_TOKEN_SECRET")),
		ResetTokenSecret:   strings.TrimSpace(os.Getenv("PSWD_RESET_TOKEN_SECRET")),
		AccessTokenTTL:     getDuration("ACCESS_TOKEN_TTL", 3*time.Hour),
		RefreshTokenTTL:    getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		ResetTokenTTL:      getDuration("RESET_TOKEN_TTL", time.Hour),

		VerificationCodeTTL:       getDuration("VERIFICATION_CODE_TTL", 15*time.Minute),
		VerificationSweepInterval: getDuration("VERIFICATION_SWEEP_INTERVAL", 30*time.Second),

		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RateLimitRPM:     getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM: getInt("AUTH_RATE_LIMIT_RPM", 20),
		TrustedProxies:   splitCSV(os.Getenv("TRUSTED_PROXIES")),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		CookieSecure:     getBool("COOKIE_SECURE", true),

		MailTransport: strings.ToLower(getEnv("MAIL_TRANSPORT", "log")),
		MailFrom:      getEnv("MAIL_FROM", "Supashop Support<support@supashop.local>"),
		SMTPHost:      strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:      getInt("SMTP_PORT", 587),
		SMTPUsername:  strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),

		KafkaBroker:    strings.TrimSpace(os.Getenv("KAFKA_BROKER")),
		KafkaMailTopic: getEnv("KAFKA_MAIL_TOPIC", "supashop.mail"),
		KafkaGroupID:   getEnv("KAFKA_GROUP_ID", "supashop-mailer"),
		KafkaUsername:  strings.TrimSpace(os.Getenv("KAFKA_USERNAME")),
		KafkaPassword:  os.Getenv("KAFKA_PASSWORD"),

		ImageStore:    strings.ToLower(getEnv("IMAGE_STORE", "local")),
		ImageRoot:     getEnv("IMAGE_ROOT", "./public/images"),
		CloudinaryURL: strings.TrimSpace(os.Getenv("CLOUDINARY_URL")),
		MaxUploadSize: getInt64("MAX_UPLOAD_SIZE", 5*1024*1024),

		SentryDSN:   strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		Environment: getEnv("APP_ENV", "development"),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "pretty")),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" || c.ResetTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET, REFRESH_TOKEN_SECRET and PSWD_RESET_TOKEN_SECRET are required")
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret || c.RefreshTokenSecret == c.ResetTokenSecret || c.AccessTokenSecret == c.ResetTokenSecret {
		return fmt.Errorf("token secrets must be distinct")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	if c.VerificationCodeTTL <= 0 || c.VerificationSweepInterval <= 0 {
		return fmt.Errorf("VERIFICATION_CODE_TTL and VERIFICATION_SWEEP_INTERVAL must be positive")
	}

	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP address or CIDR range", proxy)
		}
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	switch c.MailTransport {
	case "log":
	case "smtp":
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when MAIL_TRANSPORT=smtp")
		}
	case "kafka":
		if c.KafkaBroker == "" {
			return fmt.Errorf("KAFKA_BROKER is required when MAIL_TRANSPORT=kafka")
		}
	default:
		return fmt.Errorf("MAIL_TRANSPORT must be one of log, smtp, kafka")
	}

	switch c.ImageStore {
	case "local":
		if strings.TrimSpace(c.ImageRoot) == "" {
			return fmt.Errorf("IMAGE_ROOT cannot be empty")
		}
	case "cloudinary":
		if c.CloudinaryURL == "" {
			return fmt.Errorf("CLOUDINARY_URL is required when IMAGE_STORE=cloudinary")
		}
	default:
		return fmt.Errorf("IMAGE_STORE must be local or cloudinary")
	}

	return nil
}

func validProxy(raw string) bool {
	if _, err := netip.ParsePrefix(raw); err == nil {
		return true
	}
	_, err := netip.ParseAddr(raw)
	return err == nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
