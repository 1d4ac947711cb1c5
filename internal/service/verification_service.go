package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"supashop-api/internal/mail"
	"supashop-api/internal/model"
	"supashop-api/pkg/apierror"
)

const codeDigits = 6

var codeSpace = big.NewInt(1_000_000)

// NewCode returns a zero-padded six digit code drawn from crypto/rand.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

// VerificationService issues and checks email verification codes. Every
// issued code is scheduled for clearing codeTTL later, whether used or not.
type VerificationService struct {
	accounts AccountStore
	expiry   CodeScheduler
	mailer   Mailer
	codeTTL  time.Duration
	logger   *slog.Logger
}

func NewVerificationService(accounts AccountStore, expiry CodeScheduler, mailer Mailer, codeTTL time.Duration, logger *slog.Logger) *VerificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerificationService{accounts: accounts, expiry: expiry, mailer: mailer, codeTTL: codeTTL, logger: logger}
}

// Issue replaces the account's code with a fresh one and mails it.
func (s *VerificationService) Issue(ctx context.Context, kind model.AccountKind, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apierror.BadRequest("Email is required")
	}

	account, err := s.accounts.FindByEmail(ctx, kind, email)
	if err != nil {
		return err
	}

	code, err := NewCode()
	if err != nil {
		return err
	}
	if err := s.accounts.SetVerificationCode(ctx, kind, email, code); err != nil {
		return err
	}

	return s.Deliver(ctx, kind, account.Name, email, code)
}

// Deliver schedules the clear of a stored code and emails it. A code whose
// clear cannot be scheduled is withdrawn and never mailed.
func (s *VerificationService) Deliver(ctx context.Context, kind model.AccountKind, name string, email string, code string) error {
	if err := s.expiry.Schedule(ctx, kind, email, code); err != nil {
		if _, clearErr := s.accounts.ClearVerificationCode(ctx, kind, email, code); clearErr != nil {
			s.logger.Error("unscheduled verification code left in place", "kind", kind, "email", email, "error", clearErr)
		}
		return fmt.Errorf("schedule code expiry: %w", err)
	}

	return s.mailer.SendVerification(ctx, email, mail.VerificationData{
		Name:      name,
		Label:     strings.ToLower(kind.Label()),
		Code:      code,
		ExpiresIn: humanDuration(s.codeTTL),
	})
}

// Verify marks the account verified if code equals the stored code. The
// comparison and the clear happen in one conditional update.
func (s *VerificationService) Verify(ctx context.Context, kind model.AccountKind, email string, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return apierror.BadRequest("All field is required")
	}

	if _, err := s.accounts.FindByEmail(ctx, kind, email); err != nil {
		return err
	}

	ok, err := s.accounts.ConfirmVerification(ctx, kind, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return apierror.BadRequest("Invalid Verification code")
	}

	s.logger.Info("account verified", "kind", kind, "email", email)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		if d == time.Minute {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
