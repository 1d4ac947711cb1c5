package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/supashop")
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
	t.Setenv("PSWD_RESET_TOKEN_SECRET", "reset")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3*time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, 30*24*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, time.Hour, cfg.ResetTokenTTL)
	require.Equal(t, time.Hour, cfg.CacheTTL)
	require.Equal(t, 15*time.Minute, cfg.VerificationCodeTTL)
	require.False(t, cfg.CacheFailOpen)
	require.Equal(t, "log", cfg.MailTransport)
	require.Equal(t, "local", cfg.ImageStore)
}

func TestLoadRejectsSharedSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("REFRESH_TOKEN_SECRET", "access")

	_, err := Load()
	require.ErrorContains(t, err, "distinct")
}

func TestValidateTransportRequirements(t *testing.T) {
	t.Run("smtp needs host", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MAIL_TRANSPORT", "smtp")

		_, err := Load()
		require.ErrorContains(t, err, "SMTP_HOST")
	})

	t.Run("kafka needs broker", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MAIL_TRANSPORT", "kafka")

		_, err := Load()
		require.ErrorContains(t, err, "KAFKA_BROKER")
	})

	t.Run("cloudinary needs url", func(t *testing.T) {
		setRequired(t)
		t.Setenv("IMAGE_STORE", "cloudinary")

		_, err := Load()
		require.ErrorContains(t, err, "CLOUDINARY_URL")
	})
}

func TestLoadTrustedProxies(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.0/8", "192.168.1.7"}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,proxy.internal")
	_, err = Load()
	require.ErrorContains(t, err, "TRUSTED_PROXIES")
}

func TestSplitCSV(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a", "b"}, splitCSV(" a, ,b "))
	require.Nil(t, splitCSV("  "))
}
