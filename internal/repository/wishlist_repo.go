package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"supashop-api/internal/model"
)

const wishlistItemNotFound = "Wishlist item not found"

type WishlistRepository struct {
	pool *pgxpool.Pool
}

func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

func (r *WishlistRepository) Add(ctx context.Context, userID string, productID string) (model.WishlistItem, error) {
	var item model.WishlistItem
	err := r.pool.QueryRow(ctx,
		`INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2)
		 RETURNING id, user_id, product_id, created_at`,
		userID, productID).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt)
	if err != nil {
		return model.WishlistItem{}, classify(err, "add wishlist item", productNotFound)
	}
	return item, nil
}

func (r *WishlistRepository) List(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, product_id, created_at FROM wishlist_items
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, classify(err, "list wishlist", "User not found")
	}
	defer rows.Close()

	items := make([]model.WishlistItem, 0)
	for rows.Next() {
		var item model.WishlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *WishlistRepository) Remove(ctx context.Context, userID string, itemID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return classify(err, "remove wishlist item", wishlistItemNotFound)
	}
	if tag.RowsAffected() == 0 {
		return classify(errNoRows, "remove wishlist item", wishlistItemNotFound)
	}
	return nil
}

func (r *WishlistRepository) Clear(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, classify(err, "clear wishlist", "User not found")
	}
	return tag.RowsAffected(), nil
}
