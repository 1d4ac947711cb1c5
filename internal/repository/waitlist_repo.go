package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"supashop-api/internal/model"
)

type WaitlistRepository struct {
	pool *pgxpool.Pool
}

func NewWaitlistRepository(pool *pgxpool.Pool) *WaitlistRepository {
	return &WaitlistRepository{pool: pool}
}

func (r *WaitlistRepository) Join(ctx context.Context, email string) (model.WaitlistEntry, error) {
	var e model.WaitlistEntry
	err := r.pool.QueryRow(ctx,
		`INSERT INTO waitlist (email) VALUES ($1) RETURNING id, email, created_at`, email).
		Scan(&e.ID, &e.Email, &e.CreatedAt)
	if err != nil {
		return model.WaitlistEntry{}, classify(err, "join waitlist", "Waitlist entry not found")
	}
	return e, nil
}
