package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"supashop-api/internal/model"
)

const productColumns = `id, merchant_id, name, description, price, category, dp, images, quantity,
	is_in_stock, color, dimension, is_featured, ratings, reviews, created_at, updated_at`

const productNotFound = "Product not found"

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.MerchantID, &p.Name, &p.Description, &p.Price, &p.Category, &p.DP, &p.Images,
		&p.Quantity, &p.IsInStock, &p.Color, &p.Dimension, &p.IsFeatured, &p.Ratings, &p.Reviews,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	now := time.Now().UTC()
	created, err := scanProduct(r.pool.QueryRow(ctx,
		`INSERT INTO products (merchant_id, name, description, price, category, quantity, is_in_stock,
		                       color, dimension, is_featured, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, upper($5), $6, $7, $8, $9, $10, $11, $11)
		 RETURNING `+productColumns,
		p.MerchantID, p.Name, p.Description, p.Price, p.Category, p.Quantity, p.IsInStock,
		p.Color, p.Dimension, p.IsFeatured, now))
	if err != nil {
		return model.Product{}, classify(err, "create product", "Merchant not found")
	}
	return created, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return model.Product{}, classify(err, "find product", productNotFound)
	}
	return p, nil
}

// FindOwned returns the product only if merchantID owns it.
func (r *ProductRepository) FindOwned(ctx context.Context, merchantID string, id string) (model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND merchant_id = $2`, id, merchantID))
	if err != nil {
		return model.Product{}, classify(err, "find owned product", productNotFound)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, skip int) (model.ProductPage, error) {
	return r.page(ctx, "list products", `TRUE`, skip)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category string, skip int) (model.ProductPage, error) {
	return r.page(ctx, "list products by category", `category = upper($1)`, skip, category)
}

func (r *ProductRepository) ListByMerchant(ctx context.Context, merchantID string, skip int) (model.ProductPage, error) {
	return r.page(ctx, "list merchant products", `merchant_id = $1`, skip, merchantID)
}

// page counts the rows matching where and returns one skip/take slice of
// them. where references the filter arguments as $1..$n.
func (r *ProductRepository) page(ctx context.Context, op string, where string, skip int, filter ...any) (model.ProductPage, error) {
	var page model.ProductPage
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE `+where, filter...).Scan(&page.Count); err != nil {
		return model.ProductPage{}, classify(err, op, productNotFound)
	}

	n := len(filter)
	args := append(append([]any{}, filter...), skip, model.PageSize)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY created_at DESC, id OFFSET $%d LIMIT $%d`,
			productColumns, where, n+1, n+2), args...)
	if err != nil {
		return model.ProductPage{}, classify(err, op, productNotFound)
	}
	defer rows.Close()

	page.Products = make([]model.Product, 0, model.PageSize)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return model.ProductPage{}, fmt.Errorf("scan product: %w", err)
		}
		page.Products = append(page.Products, p)
	}
	if err := rows.Err(); err != nil {
		return model.ProductPage{}, classify(err, op, productNotFound)
	}

	return page, nil
}

// Update applies the non-nil fields of req to a product owned by merchantID.
func (r *ProductRepository) Update(ctx context.Context, merchantID string, id string, req model.ProductRequest) (model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`UPDATE products SET
		     name        = COALESCE($3, name),
		     description = COALESCE($4, description),
		     price       = COALESCE($5, price),
		     category    = COALESCE(upper($6), category),
		     quantity    = COALESCE($7, quantity),
		     is_in_stock = COALESCE($8, is_in_stock),
		     color       = COALESCE($9, color),
		     dimension   = COALESCE($10, dimension),
		     is_featured = COALESCE($11, is_featured),
		     updated_at  = now()
		 WHERE id = $1 AND merchant_id = $2
		 RETURNING `+productColumns,
		id, merchantID, req.Name, req.Description, req.Price, req.Category, req.Quantity, req.IsInStock,
		req.Color, req.Dimension, req.IsFeatured))
	if err != nil {
		return model.Product{}, classify(err, "update product", productNotFound)
	}
	return p, nil
}

// Delete removes a product owned by merchantID and returns it so its pictures
// can be cleaned up.
func (r *ProductRepository) Delete(ctx context.Context, merchantID string, id string) (model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`DELETE FROM products WHERE id = $1 AND merchant_id = $2 RETURNING `+productColumns, id, merchantID))
	if err != nil {
		return model.Product{}, classify(err, "delete product", productNotFound)
	}
	return p, nil
}

// SetDisplayPicture stores ref and returns the reference it replaced.
func (r *ProductRepository) SetDisplayPicture(ctx context.Context, merchantID string, id string, ref string) (string, error) {
	var previous string
	err := r.pool.QueryRow(ctx,
		`UPDATE products AS p SET dp = $3, updated_at = now()
		 FROM (SELECT id, dp FROM products WHERE id = $1 AND merchant_id = $2 FOR UPDATE) AS old
		 WHERE p.id = old.id
		 RETURNING old.dp`,
		id, merchantID, ref).Scan(&previous)
	if err != nil {
		return "", classify(err, "set product picture", productNotFound)
	}
	return previous, nil
}

func (r *ProductRepository) AddImage(ctx context.Context, merchantID string, id string, ref string) (model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`UPDATE products SET images = array_append(images, $3::text), updated_at = now()
		 WHERE id = $1 AND merchant_id = $2
		 RETURNING `+productColumns,
		id, merchantID, ref))
	if err != nil {
		return model.Product{}, classify(err, "add product image", productNotFound)
	}
	return p, nil
}

// RemoveImage drops ref from the gallery. It reports false when the product
// does not list ref.
func (r *ProductRepository) RemoveImage(ctx context.Context, merchantID string, id string, ref string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET images = array_remove(images, $3::text), updated_at = now()
		 WHERE id = $1 AND merchant_id = $2 AND images @> ARRAY[$3::text]`,
		id, merchantID, ref)
	if err != nil {
		return false, classify(err, "remove product image", productNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
