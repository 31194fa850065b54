package service

import (
	"context"
	"errors"
	"time"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
	"catalog-api/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	categoryImageFolder = "categories"

	// hierarchyDepth is how many levels of children Hierarchy expands below each root.
	hierarchyDepth = 2
)

// categoryService implements CategoryService.
type categoryService struct {
	store    repository.Store
	uploader storage.Uploader
	logger   zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store repository.Store, uploader storage.Uploader, logger zerolog.Logger) CategoryService {
	return &categoryService{
		store:    store,
		uploader: uploader,
		logger:   logger.With().Str("service", "category").Logger(),
	}
}

// Create adds a category after its parent and image placement are checked.
func (s *categoryService) Create(ctx context.Context, in model.CreateCategoryInput) (*model.CategoryView, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if in.ParentID != nil && (in.ImageURL != nil || in.Image != nil) {
		s.logger.Warn().Str("parent_id", *in.ParentID).Msg("image rejected on child category")
		return nil, model.ErrInvalidImagePlacement
	}

	if err := s.checkParent(ctx, s.store.Categories(), in.ParentID); err != nil {
		return nil, err
	}

	imageURL := in.ImageURL
	if in.Image != nil {
		urls, err := upload(ctx, s.uploader, categoryImageFolder, []model.Upload{*in.Image})
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to upload category image")
			return nil, err
		}
		imageURL = &urls[0]
	}

	now := time.Now().UTC()
	category := &model.Category{
		ID:        uuid.NewString(),
		Name:      in.Name,
		ParentID:  in.ParentID,
		Comment:   in.Comment,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := s.checkParent(ctx, tx.Categories(), category.ParentID); err != nil {
			return err
		}
		return tx.Categories().Create(ctx, category)
	})
	if errors.Is(err, repository.ErrBrokenReference) {
		err = model.ErrParentNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("name", in.Name).Msg("failed to create category")
		return nil, storeError(err)
	}

	s.logger.Info().Str("category_id", category.ID).Msg("category created")

	return s.viewOf(ctx, category.ID, 0)
}

// Update applies in to the category inside a transaction.
func (s *categoryService) Update(ctx context.Context, id string, in model.UpdateCategoryInput) (*model.CategoryView, error) {
	// Validate against the current state before spending an upload on it.
	current, err := s.store.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if current == nil {
		return nil, model.ErrCategoryMissing
	}
	if _, err := s.applyUpdate(ctx, s.store.Categories(), current, in); err != nil {
		return nil, err
	}

	var uploaded *string
	if in.Image != nil {
		urls, err := upload(ctx, s.uploader, categoryImageFolder, []model.Upload{*in.Image})
		if err != nil {
			s.logger.Error().Err(err).Str("category_id", id).Msg("failed to upload category image")
			return nil, err
		}
		uploaded = &urls[0]
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Categories().LockByID(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return model.ErrCategoryMissing
		}

		next, err := s.applyUpdate(ctx, tx.Categories(), locked, in)
		if err != nil {
			return err
		}
		if uploaded != nil {
			next.ImageURL = uploaded
		}
		next.UpdatedAt = time.Now().UTC()

		return tx.Categories().Update(ctx, next)
	})
	switch {
	case errors.Is(err, repository.ErrBrokenReference):
		err = model.ErrParentNotFound
	case isNotFound(err):
		err = model.ErrCategoryMissing
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("category_id", id).Msg("failed to update category")
		return nil, storeError(err)
	}

	s.logger.Info().Str("category_id", id).Msg("category updated")

	return s.viewOf(ctx, id, 1)
}

// applyUpdate computes the category that results from in and checks it.
func (s *categoryService) applyUpdate(ctx context.Context, categories repository.CategoryRepository, current *model.Category, in model.UpdateCategoryInput) (*model.Category, error) {
	next := *current

	in.Name.ApplyTo(&next.Name)
	in.Comment.ApplyTo(&next.Comment)
	in.ImageURL.ApplyTo(&next.ImageURL)
	in.ParentID.ApplyTo(&next.ParentID)

	if err := validateStruct(next); err != nil {
		return nil, err
	}

	// A category that has or gets a parent cannot take an image in this update,
	// even when the same update makes it a root.
	attachingImage := in.Image != nil || (in.ImageURL.Set && in.ImageURL.Value != nil)
	if attachingImage && (current.ParentID != nil || next.ParentID != nil) {
		return nil, model.ErrInvalidImagePlacement
	}

	if in.ParentID.Set && next.ParentID != nil {
		if err := s.checkParent(ctx, categories, next.ParentID); err != nil {
			return nil, err
		}
		cyclic, err := ancestorOf(ctx, categories, current.ID, *next.ParentID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, model.ErrCyclicParent.WithDetails(map[string]any{"parentId": *next.ParentID})
		}
	}

	// Only root categories carry images.
	if next.ParentID != nil {
		next.ImageURL = nil
	}

	return &next, nil
}

// checkParent fails with PARENT_NOT_FOUND when parentID names no category.
func (s *categoryService) checkParent(ctx context.Context, categories repository.CategoryRepository, parentID *string) error {
	if parentID == nil {
		return nil
	}

	parent, err := categories.GetByID(ctx, *parentID)
	if err != nil {
		return storeError(err)
	}
	if parent == nil {
		return model.ErrParentNotFound.WithDetails(map[string]any{"parentId": *parentID})
	}
	return nil
}

// List returns every category with its parent and direct children.
func (s *categoryService) List(ctx context.Context) ([]model.CategoryView, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]model.CategoryView, 0, len(tree.all))
	for _, c := range tree.all {
		views = append(views, tree.view(c, 1))
	}
	return views, nil
}

// Hierarchy returns the root categories with two levels of children.
func (s *categoryService) Hierarchy(ctx context.Context) ([]model.CategoryView, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]model.CategoryView, 0, len(tree.roots))
	for _, root := range tree.roots {
		views = append(views, tree.view(root, hierarchyDepth))
	}
	return views, nil
}

// GetByID returns a category with its parent and full subtree.
func (s *categoryService) GetByID(ctx context.Context, id string) (*model.CategoryView, error) {
	return s.viewOf(ctx, id, unlimitedDepth)
}

// Subcategories returns the direct children of parentID.
func (s *categoryService) Subcategories(ctx context.Context, parentID string) ([]model.CategoryView, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}

	children := tree.children[parentID]
	if len(children) == 0 {
		s.logger.Debug().Str("category_id", parentID).Msg("no subcategories")
		return nil, model.ErrNoChildren
	}

	views := make([]model.CategoryView, 0, len(children))
	for _, c := range children {
		views = append(views, tree.view(c, 1))
	}
	return views, nil
}

// Delete removes a category. With opts.Cascade every descendant is removed
// first, deepest first, in the same transaction.
func (s *categoryService) Delete(ctx context.Context, id string, opts model.DeleteCategoryOptions) (*model.DeleteCategoryResult, error) {
	result := &model.DeleteCategoryResult{}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		category, err := tx.Categories().LockByID(ctx, id)
		if err != nil {
			return err
		}
		if category == nil {
			return model.ErrCategoryMissing
		}

		children, err := tx.Categories().GetByParent(ctx, &id)
		if err != nil {
			return err
		}
		if len(children) > 0 && !opts.Cascade {
			return model.ErrHasChildren.WithDetails(map[string]any{"subcategoriesCount": len(children)})
		}

		order, err := deletionOrder(ctx, tx.Categories(), id)
		if err != nil {
			return err
		}
		for _, categoryID := range order {
			if err := tx.Categories().Delete(ctx, categoryID); err != nil {
				return err
			}
		}
		result.DeletedIDs = order

		if opts.DetachProducts {
			detached, err := tx.Products().RemoveCategoryRefs(ctx, order)
			if err != nil {
				return err
			}
			result.DetachedProducts = detached
		}
		return nil
	})
	if isNotFound(err) {
		err = model.ErrCategoryMissing
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("category_id", id).Bool("cascade", opts.Cascade).Msg("failed to delete category")
		return nil, storeError(err)
	}

	s.logger.Info().
		Str("category_id", id).
		Int("deleted", len(result.DeletedIDs)).
		Int64("detached_products", result.DetachedProducts).
		Msg("category deleted")

	return result, nil
}

func (s *categoryService) loadTree(ctx context.Context) (*categoryTree, error) {
	all, err := s.store.Categories().GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load categories")
		return nil, storeError(err)
	}
	return newCategoryTree(all), nil
}

// viewOf builds the view of one category with children down to depth levels.
func (s *categoryService) viewOf(ctx context.Context, id string, depth int) (*model.CategoryView, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}

	category, ok := tree.byID[id]
	if !ok {
		return nil, model.ErrCategoryMissing
	}

	view := tree.view(category, depth)
	return &view, nil
}
