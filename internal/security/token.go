package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"supashop-api/internal/model"
)

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	ResetSecret   string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

type accountClaims struct {
	Email string            `json:"email"`
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Kind  model.AccountKind `json:"kind"`
	jwt.RegisteredClaims
}

type resetClaims struct {
	User string            `json:"user"`
	Kind model.AccountKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates the three HS256 token kinds. Each kind has
// its own secret so a token of one kind never validates as another.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	resetSecret   []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	resetTTL      time.Duration
	now           func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		resetSecret:   []byte(cfg.ResetSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		resetTTL:      cfg.ResetTTL,
		now:           time.Now,
	}
}

func (t *TokenIssuer) AccessTTL() time.Duration  { return t.accessTTL }
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

func (t *TokenIssuer) IssueAccess(claims model.AccountClaims) (string, error) {
	return t.signAccount(claims, t.accessSecret, t.accessTTL)
}

func (t *TokenIssuer) IssueRefresh(claims model.AccountClaims) (string, error) {
	return t.signAccount(claims, t.refreshSecret, t.refreshTTL)
}

func (t *TokenIssuer) IssueReset(kind model.AccountKind, email string) (string, error) {
	now := t.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		User: email,
		Kind: kind,
		RegisteredClaims: t.registered(now, t.resetTTL),
	})

	signed, err := token.SignedString(t.resetSecret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) ParseAccess(token string) (model.AccountClaims, error) {
	return t.parseAccount(token, t.accessSecret)
}

func (t *TokenIssuer) ParseRefresh(token string) (model.AccountClaims, error) {
	return t.parseAccount(token, t.refreshSecret)
}

// ParseReset returns the account kind and email a reset token was minted for.
func (t *TokenIssuer) ParseReset(token string) (model.AccountKind, string, error) {
	var claims resetClaims
	if err := t.parse(token, t.resetSecret, &claims); err != nil {
		return "", "", err
	}
	if claims.User == "" || !claims.Kind.Valid() {
		return "", "", model.ErrInvalidToken
	}
	return claims.Kind, claims.User, nil
}

func (t *TokenIssuer) signAccount(c model.AccountClaims, secret []byte, ttl time.Duration) (string, error) {
	now := t.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accountClaims{
		Email:            c.Email,
		ID:               c.ID,
		Name:             c.Name,
		Kind:             c.Kind,
		RegisteredClaims: t.registered(now, ttl),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) registered(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (t *TokenIssuer) parseAccount(token string, secret []byte) (model.AccountClaims, error) {
	var claims accountClaims
	if err := t.parse(token, secret, &claims); err != nil {
		return model.AccountClaims{}, err
	}
	if claims.ID == "" || claims.Email == "" || !claims.Kind.Valid() {
		return model.AccountClaims{}, model.ErrInvalidToken
	}

	return model.AccountClaims{ID: claims.ID, Email: claims.Email, Name: claims.Name, Kind: claims.Kind}, nil
}

func (t *TokenIssuer) parse(token string, secret []byte, claims jwt.Claims) error {
	if token == "" {
		return model.ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}
	return nil
}
