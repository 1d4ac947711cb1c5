package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"supashop-api/internal/mail"
	"supashop-api/internal/model"
	"supashop-api/internal/storage"
	"supashop-api/pkg/apierror"
)

const (
	msgAllFieldsRequired = "All field is required"
	msgInvalidResetToken = "Invalid or expired reset token"
)

// Session is the result of a login or a refresh.
type Session struct {
	Account      model.Account
	AccessToken  string
	RefreshToken string
}

type AuthConfig struct {
	FrontendURL string
	ResetTTL    time.Duration
}

// AuthService runs the session lifecycle for both account kinds: register,
// login, refresh rotation, logout and password reset.
type AuthService struct {
	accounts     AccountStore
	hasher       PasswordHasher
	tokens       Tokens
	verification *VerificationService
	mailer       Mailer
	images       storage.ImageStore
	cfg          AuthConfig
	logger       *slog.Logger
}

func NewAuthService(accounts AccountStore, hasher PasswordHasher, tokens Tokens, verification *VerificationService, mailer Mailer, images storage.ImageStore, cfg AuthConfig, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		accounts:     accounts,
		hasher:       hasher,
		tokens:       tokens,
		verification: verification,
		mailer:       mailer,
		images:       images,
		cfg:          cfg,
		logger:       logger,
	}
}

// Register creates an unverified account and mails its first verification
// code. A failed mail does not undo the account; the code can be re-requested.
func (s *AuthService) Register(ctx context.Context, kind model.AccountKind, req model.RegisterRequest, picture []byte) (model.Account, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if req.Name == "" || req.Email == "" || req.PhoneNumber == "" || req.Username == "" || req.Password == "" {
		return model.Account{}, apierror.BadRequest(msgAllFieldsRequired)
	}

	in := model.NewAccount{
		Kind:        kind,
		Name:        req.Name,
		Email:       req.Email,
		Username:    req.Username,
		PhoneNumber: req.PhoneNumber,
	}
	if kind == model.KindMerchant {
		details := model.MerchantDetails{
			Address:  strings.TrimSpace(req.Address),
			City:     strings.TrimSpace(req.City),
			Country:  strings.TrimSpace(req.Country),
			Category: strings.ToUpper(strings.TrimSpace(req.Category)),
		}
		if details.Address == "" || details.City == "" || details.Country == "" || details.Category == "" {
			return model.Account{}, apierror.BadRequest(msgAllFieldsRequired)
		}
		in.Merchant = &details
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.Account{}, fmt.Errorf("hash password: %w", err)
	}
	in.PasswordHash = hash

	code, err := NewCode()
	if err != nil {
		return model.Account{}, err
	}
	in.VerificationCode = code

	if len(picture) > 0 {
		ref, err := s.images.Save(ctx, pictureFolder(kind), picture)
		if err != nil {
			return model.Account{}, err
		}
		in.DisplayPicture = ref
	}

	account, err := s.accounts.Create(ctx, in)
	if err != nil {
		if in.DisplayPicture != "" {
			s.discardPicture(ctx, in.DisplayPicture)
		}
		return model.Account{}, err
	}

	if err := s.verification.Deliver(ctx, kind, account.Name, account.Email, code); err != nil {
		s.logger.Warn("verification mail not delivered", "kind", kind, "account_id", account.ID, "error", err)
	}

	s.logger.Info("account registered", "kind", kind, "account_id", account.ID)
	return account, nil
}

func (s *AuthService) Login(ctx context.Context, kind model.AccountKind, email string, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, apierror.BadRequest(msgAllFieldsRequired)
	}

	account, err := s.accounts.FindByEmail(ctx, kind, email)
	if err != nil {
		return Session{}, err
	}

	ok, err := s.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		return Session{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return Session{}, apierror.Unauthorized("Invalid credentials")
	}

	session, err := s.issue(account)
	if err != nil {
		return Session{}, err
	}
	if err := s.accounts.PrependRefreshToken(ctx, kind, account.ID, session.RefreshToken); err != nil {
		return Session{}, err
	}

	s.logger.Info("login succeeded", "kind", kind, "account_id", account.ID)
	return session, nil
}

// Refresh exchanges a stored refresh token for a new pair. The presented token
// is replaced in place; a token already rotated or logged out is rejected.
func (s *AuthService) Refresh(ctx context.Context, kind model.AccountKind, token string) (Session, error) {
	if token == "" {
		return Session{}, apierror.Unauthorized("Unauthorized")
	}

	account, err := s.accounts.FindByRefreshToken(ctx, kind, token)
	if err != nil {
		if isNotFound(err) {
			return Session{}, forbidden()
		}
		return Session{}, err
	}

	claims, err := s.tokens.ParseRefresh(token)
	if err != nil {
		return Session{}, forbidden()
	}
	if claims.ID != account.ID || claims.Email != account.Email || claims.Kind != kind {
		return Session{}, forbidden()
	}

	session, err := s.issue(account)
	if err != nil {
		return Session{}, err
	}

	rotated, err := s.accounts.RotateRefreshToken(ctx, kind, account.ID, token, session.RefreshToken)
	if err != nil {
		return Session{}, err
	}
	if !rotated {
		return Session{}, forbidden()
	}

	return session, nil
}

// Logout forgets exactly the presented refresh token. An empty or unknown
// token is a no-op.
func (s *AuthService) Logout(ctx context.Context, kind model.AccountKind, token string) error {
	if token == "" {
		return nil
	}
	removed, err := s.accounts.RemoveRefreshToken(ctx, kind, token)
	if err != nil {
		return err
	}
	if removed {
		s.logger.Info("logout", "kind", kind)
	}
	return nil
}

// ForgotPassword mails a reset link when the email belongs to an account.
// The outcome is never reported to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, kind model.AccountKind, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apierror.BadRequest("Email is required")
	}

	if _, err := s.accounts.FindByEmail(ctx, kind, email); err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	token, err := s.tokens.IssueReset(kind, email)
	if err != nil {
		return err
	}
	stored, err := s.accounts.SetResetToken(ctx, kind, email, token)
	if err != nil {
		return err
	}
	if !stored {
		return nil
	}

	link := strings.TrimRight(s.cfg.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.mailer.SendPasswordReset(ctx, email, mail.ResetData{Link: link, ExpiresIn: humanDuration(s.cfg.ResetTTL)}); err != nil {
		s.logger.Warn("reset mail not delivered", "kind", kind, "error", err)
	}
	return nil
}

// ResetPassword sets a new password if token is valid and still the one
// stored on the account. The token is consumed by the same update.
func (s *AuthService) ResetPassword(ctx context.Context, kind model.AccountKind, token string, password string) error {
	if token == "" || password == "" {
		return apierror.BadRequest(msgAllFieldsRequired)
	}

	tokenKind, email, err := s.tokens.ParseReset(token)
	if err != nil || tokenKind != kind {
		return apierror.BadRequest(msgInvalidResetToken)
	}

	account, err := s.accounts.FindByEmail(ctx, kind, email)
	if err != nil {
		if isNotFound(err) {
			return apierror.BadRequest(msgInvalidResetToken)
		}
		return err
	}
	if account.ResetPasswordToken == nil || *account.ResetPasswordToken != token {
		return apierror.BadRequest(msgInvalidResetToken)
	}

	same, err := s.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if same {
		return apierror.BadRequest("New password must be different from old password")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ok, err := s.accounts.ResetPassword(ctx, kind, email, token, hash)
	if err != nil {
		return err
	}
	if !ok {
		return apierror.BadRequest(msgInvalidResetToken)
	}

	s.logger.Info("password reset", "kind", kind, "account_id", account.ID)
	return nil
}

func (s *AuthService) issue(account model.Account) (Session, error) {
	claims := model.AccountClaims{ID: account.ID, Email: account.Email, Name: account.Name, Kind: account.Kind}

	access, err := s.tokens.IssueAccess(claims)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.tokens.IssueRefresh(claims)
	if err != nil {
		return Session{}, err
	}
	return Session{Account: account, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) discardPicture(ctx context.Context, ref string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Warn("picture cleanup failed", "ref", ref, "error", err)
	}
}

func forbidden() error {
	return apierror.Forbidden("Forbidden")
}

func pictureFolder(kind model.AccountKind) string {
	if kind == model.KindMerchant {
		return storage.FolderStores
	}
	return storage.FolderUsers
}

func isNotFound(err error) bool {
	return apierror.Status(err) == http.StatusNotFound
}
