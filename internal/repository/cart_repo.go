package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"supashop-api/internal/model"
)

const cartItemNotFound = "Item not found"

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Add puts productID in the user's cart. When the product is already there
// its quantity is raised by one instead and inserted is false.
func (r *CartRepository) Add(ctx context.Context, userID string, productID string, quantity int) (model.CartItem, bool, error) {
	var item model.CartItem
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + 1
		 RETURNING id, user_id, product_id, quantity, created_at, (xmax = 0) AS inserted`,
		userID, productID, quantity).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &inserted)
	if err != nil {
		return model.CartItem{}, false, classify(err, "add cart item", productNotFound)
	}
	return item, inserted, nil
}

func (r *CartRepository) List(ctx context.Context, userID string) ([]model.CartItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at,
		        p.id, p.merchant_id, p.name, p.description, p.price, p.category, p.dp, p.images, p.quantity,
		        p.is_in_stock, p.color, p.dimension, p.is_featured, p.ratings, p.reviews, p.created_at, p.updated_at
		 FROM cart_items c JOIN products p ON p.id = c.product_id
		 WHERE c.user_id = $1
		 ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, classify(err, "list cart", "User not found")
	}
	defer rows.Close()

	items := make([]model.CartItem, 0)
	for rows.Next() {
		var c model.CartItem
		var p model.Product
		if err := rows.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.CreatedAt,
			&p.ID, &p.MerchantID, &p.Name, &p.Description, &p.Price, &p.Category, &p.DP, &p.Images, &p.Quantity,
			&p.IsInStock, &p.Color, &p.Dimension, &p.IsFeatured, &p.Ratings, &p.Reviews, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		c.Product = &p
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *CartRepository) SetQuantity(ctx context.Context, userID string, itemID string, quantity int) (model.CartItem, error) {
	var item model.CartItem
	err := r.pool.QueryRow(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, product_id, quantity, created_at`,
		itemID, userID, quantity).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		return model.CartItem{}, classify(err, "change cart quantity", cartItemNotFound)
	}
	return item, nil
}

func (r *CartRepository) Remove(ctx context.Context, userID string, itemID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return classify(err, "remove cart item", cartItemNotFound)
	}
	if tag.RowsAffected() == 0 {
		return classify(errNoRows, "remove cart item", cartItemNotFound)
	}
	return nil
}
