package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"supashop-api/internal/app"
	"supashop-api/internal/config"
	"supashop-api/internal/logger"
	"supashop-api/internal/mail"
)

// mailer drains the Kafka mail topic and delivers each message over SMTP.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	if cfg.KafkaBroker == "" || cfg.SMTPHost == "" {
		slog.Error("mail relay needs KAFKA_BROKER and SMTP_HOST")
		os.Exit(1)
	}

	smtp := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
	relay := mail.NewRelay(app.KafkaConfig(cfg), smtp, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("mail relay starting", "topic", cfg.KafkaMailTopic, "group", cfg.KafkaGroupID)
	if err := relay.Run(ctx); err != nil {
		slog.Error("mail relay stopped", "error", err)
		os.Exit(1)
	}
	if err := relay.Close(); err != nil {
		slog.Warn("mail relay close failed", "error", err)
	}
	slog.Info("mail relay stopped")
}
