package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"catalogweb/internal/apperr"
	"catalogweb/internal/model"
	"catalogweb/internal/storage/db"
)

// ProductRepository is the typed accessor over the products table. Save is an
// atomic insert-or-update keyed on external_id, safe under concurrent callers.
type ProductRepository interface {
	Save(ctx context.Context, product model.Product) (model.Product, error)
	FindAll(ctx context.Context) ([]model.Product, error)
	SearchByTitle(ctx context.Context, query string) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	Update(ctx context.Context, product model.Product) error
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const saveProductSQL = `
INSERT INTO products (external_id, title, price, image_url, description, variants, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (external_id)
DO UPDATE SET
	title = EXCLUDED.title,
	price = EXCLUDED.price,
	image_url = EXCLUDED.image_url,
	description = EXCLUDED.description,
	variants = EXCLUDED.variants,
	updated_at = now()
RETURNING id, updated_at`

func (r *productRepository) Save(ctx context.Context, product model.Product) (model.Product, error) {
	price, err := numericFromFloat(product.Price)
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price: %w", err)
	}

	row := r.db.QueryRow(ctx, saveProductSQL,
		product.ExternalID,
		product.Title,
		price,
		product.ImageURL,
		product.Description,
		product.Variants,
	)
	if err := row.Scan(&product.ID, &product.UpdatedAt); err != nil {
		return model.Product{}, fmt.Errorf("save product: %w", err)
	}

	return product, nil
}

const selectProductColumns = `id, external_id, title, price, image_url, description, variants, updated_at`

func (r *productRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	sql := `SELECT ` + selectProductColumns + ` FROM products ORDER BY title ASC`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("find all products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *productRepository) SearchByTitle(ctx context.Context, query string) ([]model.Product, error) {
	sql := `SELECT ` + selectProductColumns + ` FROM products WHERE title ILIKE '%' || $1 || '%' ORDER BY title ASC`

	rows, err := r.db.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("search products by title: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	sql := `SELECT ` + selectProductColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("find product by id: %w", err)
	}

	return product, nil
}

const updateProductSQL = `
UPDATE products
SET title = $1, price = $2, image_url = $3, description = $4, updated_at = now()
WHERE id = $5`

func (r *productRepository) Update(ctx context.Context, product model.Product) error {
	price, err := numericFromFloat(product.Price)
	if err != nil {
		return fmt.Errorf("convert price: %w", err)
	}

	tag, err := r.db.Exec(ctx, updateProductSQL,
		product.Title,
		price,
		product.ImageURL,
		product.Description,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr
	}

	return nil
}

func (r *productRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		product model.Product
		price   pgtype.Numeric
	)
	if err := row.Scan(
		&product.ID,
		&product.ExternalID,
		&product.Title,
		&price,
		&product.ImageURL,
		&product.Description,
		&product.Variants,
		&product.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	priceValue, err := price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}
	product.Price = priceValue.Float64

	return product, nil
}

func numericFromFloat(f float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(fmt.Sprintf("%.2f", f)); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("scan numeric: %w", err)
	}
	return n, nil
}
