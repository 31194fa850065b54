package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, brand, original_price, discounted_price, discount_percentage,
	price_includes_tax, shipping_included, shipping_calculated_at_checkout, store_purchase_only,
	style_pincode_prompt, color, material, warranty_period, delivery, installation, stock_status,
	note, product_care_instructions, return_and_cancellation_policy, features, image_urls,
	category_ids, status, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func newProductRepository(db DBTX, logger zerolog.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row rowScanner) (model.Product, error) {
	var p model.Product
	var status *string
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &p.OriginalPrice, &p.DiscountedPrice, &p.DiscountPercentage,
		&p.PriceIncludesTax, &p.ShippingIncluded, &p.ShippingCalculatedAtCheckout, &p.StorePurchaseOnly,
		&p.StylePincodePrompt, &p.Color, &p.Material, &p.WarrantyPeriod, &p.Delivery, &p.Installation,
		&p.StockStatus, &p.Note, &p.ProductCareInstructions, &p.ReturnAndCancellationPolicy,
		&p.Features, &p.ImageURLs, &p.CategoryIDs, &status, &p.CreatedAt, &p.UpdatedAt,
	)
	if status != nil {
		p.Status = model.ProductStatus(*status)
	}
	return p, err
}

// productArgs returns the column values in productColumns order.
func productArgs(p *model.Product) []any {
	var status *string
	if p.Status != "" {
		s := string(p.Status)
		status = &s
	}
	return []any{
		p.ID, p.Name, p.Brand, p.OriginalPrice, p.DiscountedPrice, p.DiscountPercentage,
		p.PriceIncludesTax, p.ShippingIncluded, p.ShippingCalculatedAtCheckout, p.StorePurchaseOnly,
		p.StylePincodePrompt, p.Color, p.Material, p.WarrantyPeriod, p.Delivery, p.Installation,
		p.StockStatus, p.Note, p.ProductCareInstructions, p.ReturnAndCancellationPolicy,
		nonNil(p.Features), nonNil(p.ImageURLs), nonNil(p.CategoryIDs), status, p.CreatedAt, p.UpdatedAt,
	}
}

func (r *productRepository) query(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) queryOne(ctx context.Context, query, id string) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}

// GetAll retrieves every product ordered by name.
func (r *productRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	return r.queryOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// LockByID retrieves a product and holds a row lock until the transaction ends.
func (r *productRepository) LockByID(ctx context.Context, id string) (*model.Product, error) {
	return r.queryOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetByCategory retrieves the products that reference categoryID.
func (r *productRepository) GetByCategory(ctx context.Context, categoryID string) ([]model.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE $1 = ANY(category_ids) ORDER BY name, id`, categoryID)
}

// RemoveCategoryRefs strips categoryIDs from every product, keeping the order of the remaining ids.
func (r *productRepository) RemoveCategoryRefs(ctx context.Context, categoryIDs []string) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE products
		SET category_ids = ARRAY(
				SELECT c FROM unnest(category_ids) WITH ORDINALITY AS t(c, n)
				WHERE c <> ALL($1::text[])
				ORDER BY n
			),
			updated_at = now()
		WHERE category_ids && $1::text[]
	`

	tag, err := r.db.Exec(ctx, query, categoryIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(categoryIDs)).Msg("failed to detach categories from products")
		return 0, fmt.Errorf("failed to detach categories from products: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`

	if _, err := r.db.Exec(ctx, query, productArgs(p)...); err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID).Msg("product created")
	return nil
}

// Update overwrites every mutable column of an existing product.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products SET
			name = $2, brand = $3, original_price = $4, discounted_price = $5, discount_percentage = $6,
			price_includes_tax = $7, shipping_included = $8, shipping_calculated_at_checkout = $9,
			store_purchase_only = $10, style_pincode_prompt = $11, color = $12, material = $13,
			warranty_period = $14, delivery = $15, installation = $16, stock_status = $17, note = $18,
			product_care_instructions = $19, return_and_cancellation_policy = $20, features = $21,
			image_urls = $22, category_ids = $23, status = $24, updated_at = $25
		WHERE id = $1
	`

	// created_at is never rewritten.
	args := append(productArgs(p)[:24], p.UpdatedAt)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}

	r.logger.Debug().Str("product_id", id).Msg("product deleted")
	return nil
}
