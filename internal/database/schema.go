package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema is the catalog DDL. Every statement is idempotent.
// products.category_ids is deliberately not a foreign key.
const Schema = `
	CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL CHECK (name <> ''),
		parent_id VARCHAR(64) REFERENCES categories(id),
		comment TEXT,
		image_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT categories_image_on_root CHECK (image_url IS NULL OR parent_id IS NULL),
		CONSTRAINT categories_not_self_parent CHECK (parent_id IS NULL OR parent_id <> id)
	);

	CREATE INDEX IF NOT EXISTS idx_categories_parent_id ON categories(parent_id);

	CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL CHECK (name <> ''),
		brand TEXT NOT NULL DEFAULT '',
		original_price DOUBLE PRECISION,
		discounted_price DOUBLE PRECISION,
		discount_percentage DOUBLE PRECISION,
		price_includes_tax BOOLEAN NOT NULL DEFAULT FALSE,
		shipping_included BOOLEAN NOT NULL DEFAULT FALSE,
		shipping_calculated_at_checkout BOOLEAN NOT NULL DEFAULT FALSE,
		store_purchase_only BOOLEAN NOT NULL DEFAULT FALSE,
		style_pincode_prompt BOOLEAN NOT NULL DEFAULT FALSE,
		color TEXT NOT NULL DEFAULT '',
		material TEXT NOT NULL DEFAULT '',
		warranty_period TEXT NOT NULL DEFAULT '',
		delivery TEXT NOT NULL DEFAULT '',
		installation TEXT NOT NULL DEFAULT '',
		stock_status TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		product_care_instructions TEXT NOT NULL DEFAULT '',
		return_and_cancellation_policy TEXT NOT NULL DEFAULT '',
		features TEXT[] NOT NULL DEFAULT '{}',
		image_urls TEXT[] NOT NULL DEFAULT '{}',
		category_ids TEXT[] NOT NULL DEFAULT '{}',
		status VARCHAR(16) CHECK (status IN ('active', 'inactive')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_products_category_ids ON products USING GIN (category_ids);

	CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(32) NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// EnsureSchema creates the catalog tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		logger.Error().Err(err).Msg("failed to ensure database schema")
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}

	logger.Debug().Msg("database schema ensured")
	return nil
}
