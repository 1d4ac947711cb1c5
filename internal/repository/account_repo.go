package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"supashop-api/internal/model"
)

const accountColumns = `id, name, email, username, phone_number, password_hash, is_verified,
	verification_code, reset_password_token, refresh_tokens, dp, created_at, updated_at`

// AccountRepository is the credential store for both account kinds. Every
// mutation of the refresh-token list is a single statement so concurrent
// logins, refreshes and logouts cannot lose each other's updates.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func table(kind model.AccountKind) string {
	if kind == model.KindMerchant {
		return "merchants"
	}
	return "users"
}

func notFound(kind model.AccountKind) string {
	return kind.Label() + " not found"
}

func scanAccount(row pgx.Row, kind model.AccountKind) (model.Account, error) {
	a := model.Account{Kind: kind}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Username, &a.PhoneNumber, &a.PasswordHash, &a.IsVerified,
		&a.VerificationCode, &a.ResetPasswordToken, &a.RefreshTokens, &a.DisplayPicture, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AccountRepository) Create(ctx context.Context, in model.NewAccount) (model.Account, error) {
	now := time.Now().UTC()

	var row pgx.Row
	if in.Kind == model.KindMerchant && in.Merchant != nil {
		row = r.pool.QueryRow(ctx,
			`INSERT INTO merchants (name, email, username, phone_number, password_hash, verification_code, dp,
			                        address, city, country, category, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
			 RETURNING `+accountColumns,
			in.Name, in.Email, in.Username, in.PhoneNumber, in.PasswordHash, in.VerificationCode, in.DisplayPicture,
			in.Merchant.Address, in.Merchant.City, in.Merchant.Country, in.Merchant.Category, now)
	} else {
		row = r.pool.QueryRow(ctx,
			`INSERT INTO `+table(in.Kind)+` (name, email, username, phone_number, password_hash, verification_code, dp,
			                        created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			 RETURNING `+accountColumns,
			in.Name, in.Email, in.Username, in.PhoneNumber, in.PasswordHash, in.VerificationCode, in.DisplayPicture, now)
	}

	a, err := scanAccount(row, in.Kind)
	if err != nil {
		return model.Account{}, classify(err, "create account", notFound(in.Kind))
	}
	return a, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, kind model.AccountKind, email string) (model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM `+table(kind)+` WHERE email = $1`, email), kind)
	if err != nil {
		return model.Account{}, classify(err, "find account by email", notFound(kind))
	}
	return a, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, kind model.AccountKind, id string) (model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM `+table(kind)+` WHERE id = $1`, id), kind)
	if err != nil {
		return model.Account{}, classify(err, "find account by id", notFound(kind))
	}
	return a, nil
}

// FindByRefreshToken returns the account whose valid-token list holds token.
func (r *AccountRepository) FindByRefreshToken(ctx context.Context, kind model.AccountKind, token string) (model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM `+table(kind)+` WHERE refresh_tokens @> ARRAY[$1::text]`, token), kind)
	if err != nil {
		return model.Account{}, classify(err, "find account by refresh token", notFound(kind))
	}
	return a, nil
}

func (r *AccountRepository) PrependRefreshToken(ctx context.Context, kind model.AccountKind, id string, token string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table(kind)+` SET refresh_tokens = array_prepend($2::text, refresh_tokens) WHERE id = $1`,
		id, token)
	if err != nil {
		return classify(err, "prepend refresh token", notFound(kind))
	}
	if tag.RowsAffected() == 0 {
		return classify(errNoRows, "prepend refresh token", notFound(kind))
	}
	return nil
}

// RotateRefreshToken replaces oldToken with newToken in place. It reports
// false when oldToken is no longer in the list, which happens when a
// concurrent refresh or logout consumed it first.
func (r *AccountRepository) RotateRefreshToken(ctx context.Context, kind model.AccountKind, id string, oldToken string, newToken string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table(kind)+`
		 SET refresh_tokens = array_replace(refresh_tokens, $2::text, $3::text), updated_at = now()
		 WHERE id = $1 AND refresh_tokens @> ARRAY[$2::text]`,
		id, oldToken, newToken)
	if err != nil {
		return false, classify(err, "rotate refresh token", notFound(kind))
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveRefreshToken drops exactly token from whichever account holds it.
func (r *AccountRepository) RemoveRefreshToken(ctx context.Context, kind model.AccountKind, token string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table(kind)+` SET refresh_tokens = array_remove(refresh_tokens, $1::text)
		 WHERE refresh_tokens @> ARRAY[$1::text]`,
		token)
	if err != nil {
		return false, classify(err, "remove refresh token", notFound(kind))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AccountRepository) SetVerificationCode(ctx context.Context, kind model.AccountKind, email string, code string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table(kind)+` SET verification_code = $2, updated_at = now() WHERE email = $1`,
		email, code)
	if err != nil {
		return classify(err, "set verification code", notFound(kind))
	}
	if tag.RowsAffected() == 0 {
		return classify(errNoRows, "set verification code", notFound(kind))
	}
	return nil
}

// ConfirmVerification marks the account verified and consumes the code in one
// step, only if code is still the stored one.
func (r *AccountRepository) ConfirmVerification(ctx context.Context, kind model.AccountKind, email string, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table(kind)+` SET is_verified = TRUE, verification_code = NULL, updated_at = now()
		 WHERE email = $1 AND verification_code = $2`,
		email, code)
	if err != nil {
		return false, classify(err, "confirm verification", notFound(kind))
	}
	return tag.RowsAffected() == 1, nil
}

// ClearVerificationCode blanks the stored code if it still equals code. A code
// that was re-issued or consumed in the meantime is left alone.
func (r *AccountRepository) ClearVerificationCode(ctx context.Context, kind model.AccountKind, email string, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table(kind)+` SET verification_code = NULL WHERE email = $1 AND verification_code = $2`,
		email, code)
	if err != nil {
		return false, fmt.Errorf("clear verification code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AccountRepository) SetResetToken(ctx context.Context, kind model.AccountKind, email string, token string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table(kind)+` SET reset_password_token = $2, updated_at = now() WHERE email = $1`,
		email, token)
	if err != nil {
		return false, classify(err, "set reset token", notFound(kind))
	}
	return tag.RowsAffected() == 1, nil
}

// ResetPassword stores passwordHash and consumes the reset token, only if
// token is still the stored one. A replayed token matches nothing.
func (r *AccountRepository) ResetPassword(ctx context.Context, kind model.AccountKind, email string, token string, passwordHash string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table(kind)+` SET password_hash = $3, reset_password_token = NULL, updated_at = now()
		 WHERE email = $1 AND reset_password_token = $2`,
		email, token, passwordHash)
	if err != nil {
		return false, classify(err, "reset password", notFound(kind))
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, kind model.AccountKind, id string, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table(kind)+` SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return classify(err, "update password", notFound(kind))
	}
	if tag.RowsAffected() == 0 {
		return classify(errNoRows, "update password", notFound(kind))
	}
	return nil
}

// SetDisplayPicture stores ref and returns the reference it replaced.
func (r *AccountRepository) SetDisplayPicture(ctx context.Context, kind model.AccountKind, id string, ref string) (string, error) {
	var previous string
	err := r.pool.QueryRow(ctx,
		`UPDATE `+table(kind)+` AS t SET dp = $2, updated_at = now()
		 FROM (SELECT id, dp FROM `+table(kind)+` WHERE id = $1 FOR UPDATE) AS old
		 WHERE t.id = old.id
		 RETURNING old.dp`,
		id, ref).Scan(&previous)
	if err != nil {
		return "", classify(err, "set display picture", notFound(kind))
	}
	return previous, nil
}

// Delete removes the account and returns it so stored pictures can be cleaned up.
func (r *AccountRepository) Delete(ctx context.Context, kind model.AccountKind, id string) (model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`DELETE FROM `+table(kind)+` WHERE id = $1 RETURNING `+accountColumns, id), kind)
	if err != nil {
		return model.Account{}, classify(err, "delete account", notFound(kind))
	}
	return a, nil
}
