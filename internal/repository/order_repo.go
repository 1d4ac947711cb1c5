package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"supashop-api/internal/database"
	"supashop-api/internal/model"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create prices every item from the current product row, stores the order
// and its lines in one transaction and returns the stored order.
func (r *OrderRepository) Create(ctx context.Context, userID string, address string, items []model.OrderItemRequest) (model.Order, error) {
	order := model.Order{UserID: userID, Address: address, Items: make([]model.OrderItem, 0, len(items))}

	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, it := range items {
			var price float64
			if err := tx.QueryRow(ctx, `SELECT price FROM products WHERE id = $1`, it.ProductID).Scan(&price); err != nil {
				return classify(err, "price order item", productNotFound)
			}
			order.Items = append(order.Items, model.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: price})
			order.NetAmount += price * float64(it.Quantity)
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO orders (user_id, net_amount, address, status) VALUES ($1, $2, $3, $4)
			 RETURNING id, status, created_at`,
			userID, order.NetAmount, address, model.OrderPending).
			Scan(&order.ID, &order.Status, &order.CreatedAt); err != nil {
			return classify(err, "insert order", "User not found")
		}

		batch := &pgx.Batch{}
		for _, it := range order.Items {
			batch.Queue(`INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`,
				order.ID, it.ProductID, it.Quantity, it.UnitPrice)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return classify(err, "insert order items", productNotFound)
		}
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, o.user_id, o.net_amount, o.address, o.status, o.created_at,
		        COALESCE(i.product_id::text, ''), i.quantity, i.unit_price
		 FROM orders o LEFT JOIN order_items i ON i.order_id = o.id
		 WHERE o.user_id = $1
		 ORDER BY o.created_at DESC, o.id`, userID)
	if err != nil {
		return nil, classify(err, "list orders", "User not found")
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	index := make(map[string]int)
	for rows.Next() {
		var o model.Order
		var productID string
		var quantity *int
		var unitPrice *float64
		if err := rows.Scan(&o.ID, &o.UserID, &o.NetAmount, &o.Address, &o.Status, &o.CreatedAt,
			&productID, &quantity, &unitPrice); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		i, ok := index[o.ID]
		if !ok {
			o.Items = make([]model.OrderItem, 0)
			orders = append(orders, o)
			i = len(orders) - 1
			index[o.ID] = i
		}
		if quantity != nil && unitPrice != nil {
			orders[i].Items = append(orders[i].Items, model.OrderItem{ProductID: productID, Quantity: *quantity, UnitPrice: *unitPrice})
		}
	}
	return orders, rows.Err()
}
