package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"supashop-api/internal/model"
)

const merchantExtraColumns = `address, city, country, category, is_promoted, ratings, reviews`

// MerchantRepository serves merchant profiles and the public store listings.
type MerchantRepository struct {
	pool *pgxpool.Pool
}

func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

func scanMerchant(row pgx.Row) (model.Merchant, error) {
	m := model.Merchant{Account: model.Account{Kind: model.KindMerchant}}
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Username, &m.PhoneNumber, &m.PasswordHash, &m.IsVerified,
		&m.VerificationCode, &m.ResetPasswordToken, &m.RefreshTokens, &m.DisplayPicture, &m.CreatedAt, &m.UpdatedAt,
		&m.Address, &m.City, &m.Country, &m.Category, &m.IsPromoted, &m.Ratings, &m.Reviews)
	return m, err
}

func (r *MerchantRepository) FindMerchant(ctx context.Context, id string) (model.Merchant, error) {
	m, err := scanMerchant(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+`, `+merchantExtraColumns+` FROM merchants WHERE id = $1`, id))
	if err != nil {
		return model.Merchant{}, classify(err, "find merchant", "Store not found")
	}
	return m, nil
}

// UpdateProfile applies the non-empty fields of upd. Category is stored upper-case.
func (r *MerchantRepository) UpdateProfile(ctx context.Context, id string, upd model.UpdateProfileRequest) (model.Merchant, error) {
	m, err := scanMerchant(r.pool.QueryRow(ctx,
		`UPDATE merchants SET
		     name         = COALESCE(NULLIF($2, ''), name),
		     phone_number = COALESCE(NULLIF($3, ''), phone_number),
		     username     = COALESCE(NULLIF($4, ''), username),
		     address      = COALESCE(NULLIF($5, ''), address),
		     city         = COALESCE(NULLIF($6, ''), city),
		     country      = COALESCE(NULLIF($7, ''), country),
		     category     = COALESCE(NULLIF(upper($8), ''), category),
		     updated_at   = now()
		 WHERE id = $1
		 RETURNING `+accountColumns+`, `+merchantExtraColumns,
		id, upd.Name, upd.PhoneNumber, upd.Username, upd.Address, upd.City, upd.Country, upd.Category))
	if err != nil {
		return model.Merchant{}, classify(err, "update merchant profile", "Merchant not found")
	}
	return m, nil
}

// ListStores returns one page of stores, optionally only promoted ones.
func (r *MerchantRepository) ListStores(ctx context.Context, skip int, promotedOnly bool) ([]model.Merchant, error) {
	return r.list(ctx, "list stores",
		`SELECT `+accountColumns+`, `+merchantExtraColumns+` FROM merchants
		 WHERE ($1 = FALSE OR is_promoted)
		 ORDER BY created_at DESC, id
		 OFFSET $2 LIMIT $3`,
		promotedOnly, skip, model.PageSize)
}

func (r *MerchantRepository) ListStoresByCategory(ctx context.Context, category string, skip int) ([]model.Merchant, error) {
	return r.list(ctx, "list stores by category",
		`SELECT `+accountColumns+`, `+merchantExtraColumns+` FROM merchants
		 WHERE category = upper($1)
		 ORDER BY created_at DESC, id
		 OFFSET $2 LIMIT $3`,
		category, skip, model.PageSize)
}

func (r *MerchantRepository) list(ctx context.Context, op string, query string, args ...any) ([]model.Merchant, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	merchants := make([]model.Merchant, 0)
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan merchant: %w", err)
		}
		merchants = append(merchants, m)
	}
	return merchants, rows.Err()
}
