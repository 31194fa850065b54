package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const categoryColumns = `id, name, parent_id, comment, image_url, created_at, updated_at`

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func newCategoryRepository(db DBTX, logger zerolog.Logger) *categoryRepository {
	return &categoryRepository{
		db:     db,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func scanCategory(row rowScanner) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.ParentID, &c.Comment, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *categoryRepository) query(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) queryOne(ctx context.Context, query, id string) (*model.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("category_id", id).Msg("category not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("category_id", id).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &c, nil
}

// GetAll retrieves every category ordered by name.
func (r *categoryRepository) GetAll(ctx context.Context) ([]model.Category, error) {
	return r.query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, id`)
}

// GetByID retrieves a single category by its ID.
func (r *categoryRepository) GetByID(ctx context.Context, id string) (*model.Category, error) {
	return r.queryOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

// LockByID retrieves a category and holds a row lock until the transaction ends.
func (r *categoryRepository) LockByID(ctx context.Context, id string) (*model.Category, error) {
	return r.queryOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1 FOR UPDATE`, id)
}

// GetByParent retrieves direct children of parentID, or root categories when parentID is nil.
func (r *categoryRepository) GetByParent(ctx context.Context, parentID *string) ([]model.Category, error) {
	if parentID == nil {
		return r.query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE parent_id IS NULL ORDER BY name, id`)
	}
	return r.query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1 ORDER BY name, id`, *parentID)
}

// ExistingIDs returns the subset of ids present in the categories table.
func (r *categoryRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query category ids")
		return nil, fmt.Errorf("failed to query category ids: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to collect category ids")
		return nil, fmt.Errorf("failed to collect category ids: %w", err)
	}

	return found, nil
}

// Create inserts a new category.
func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.ParentID, c.Comment, c.ImageURL, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrBrokenReference
		}
		r.logger.Error().Err(err).Str("category_id", c.ID).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}

	r.logger.Debug().Str("category_id", c.ID).Msg("category created")
	return nil
}

// Update overwrites the mutable fields of an existing category.
func (r *categoryRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2, parent_id = $3, comment = $4, image_url = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, c.ID, c.Name, c.ParentID, c.Comment, c.ImageURL, c.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrBrokenReference
		}
		r.logger.Error().Err(err).Str("category_id", c.ID).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// Delete removes a single category. Children must be deleted first.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrBrokenReference
		}
		r.logger.Error().Err(err).Str("category_id", id).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}

	r.logger.Debug().Str("category_id", id).Msg("category deleted")
	return nil
}
