package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"supashop-api/internal/model"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	u := model.User{Account: model.Account{Kind: model.KindUser}}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.PhoneNumber, &u.PasswordHash, &u.IsVerified,
		&u.VerificationCode, &u.ResetPasswordToken, &u.RefreshTokens, &u.DisplayPicture, &u.CreatedAt, &u.UpdatedAt,
		&u.Addresses)
	return u, err
}

func (r *UserRepository) FindUser(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+`, addresses FROM users WHERE id = $1`, id))
	if err != nil {
		return model.User{}, classify(err, "find user", "User not found")
	}
	return u, nil
}

// UpdateProfile applies the non-empty fields of upd. A new address is
// prepended to the rolling address list.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd model.UpdateProfileRequest) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET
		     name         = COALESCE(NULLIF($2, ''), name),
		     phone_number = COALESCE(NULLIF($3, ''), phone_number),
		     username     = COALESCE(NULLIF($4, ''), username),
		     addresses    = CASE WHEN $5 = '' THEN addresses ELSE array_prepend($5::text, addresses) END,
		     updated_at   = now()
		 WHERE id = $1
		 RETURNING `+accountColumns+`, addresses`,
		id, upd.Name, upd.PhoneNumber, upd.Username, upd.Address))
	if err != nil {
		return model.User{}, classify(err, "update user profile", "User not found")
	}
	return u, nil
}
