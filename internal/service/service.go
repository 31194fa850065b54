package service

import (
	"context"
	"errors"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
	"catalog-api/internal/storage"
)

// CategoryService defines operations on the category tree.
type CategoryService interface {
	// Create adds a category. Images are only accepted on root categories.
	Create(ctx context.Context, in model.CreateCategoryInput) (*model.CategoryView, error)

	// Update changes a category. Moving a root under a parent clears its image.
	Update(ctx context.Context, id string, in model.UpdateCategoryInput) (*model.CategoryView, error)

	// List returns every category with its parent and direct children.
	List(ctx context.Context) ([]model.CategoryView, error)

	// Hierarchy returns the root categories with two levels of children.
	Hierarchy(ctx context.Context) ([]model.CategoryView, error)

	// GetByID returns a category with its parent and full subtree.
	GetByID(ctx context.Context, id string) (*model.CategoryView, error)

	// Subcategories returns the direct children of parentID.
	// An empty result is reported as model.ErrNoChildren.
	Subcategories(ctx context.Context, parentID string) ([]model.CategoryView, error)

	// Delete removes a category, and its whole subtree when opts.Cascade is set.
	Delete(ctx context.Context, id string, opts model.DeleteCategoryOptions) (*model.DeleteCategoryResult, error)
}

// ProductService defines operations on products and their category membership.
// Read operations take isAdmin to apply product visibility.
type ProductService interface {
	Create(ctx context.Context, in model.ProductInput) (*model.ProductView, error)
	Update(ctx context.Context, id string, patch model.ProductPatch) (*model.ProductView, error)
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, isAdmin bool) ([]model.ProductView, error)
	GetByID(ctx context.Context, id string, isAdmin bool) (*model.ProductView, error)

	// ListByCategory does not require the category to exist.
	ListByCategory(ctx context.Context, categoryID string, isAdmin bool) ([]model.ProductView, error)

	AddCategory(ctx context.Context, productID, categoryID string) (*model.ProductView, error)
	RemoveCategory(ctx context.Context, productID, categoryID string) (*model.ProductView, error)
}

// UserService defines operations on the credential table.
type UserService interface {
	Register(ctx context.Context, in model.RegisterUserInput) (*model.User, error)

	// Authenticate returns the user owning phone when password matches,
	// or model.ErrUnauthenticated.
	Authenticate(ctx context.Context, phone, password string) (*model.User, error)

	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)

	// Update and Delete only allow actorID to change its own record.
	Update(ctx context.Context, actorID, id string, in model.UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, actorID, id string) error
}

// storeError turns infrastructure failures into STORE_UNAVAILABLE.
// Domain errors pass through unchanged.
func storeError(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	return model.ErrStoreUnavailable.Wrap(err)
}

// upload stores objs through u. Limit violations pass through; any other
// failure is reported as UPLOAD_FAILED.
func upload(ctx context.Context, u storage.Uploader, folder string, objs []model.Upload) ([]string, error) {
	if len(objs) == 0 {
		return nil, nil
	}
	if u == nil {
		return nil, model.ErrUploadFailed.WithMessage("Image storage is not configured")
	}

	urls, err := u.Upload(ctx, folder, objs)
	if errors.Is(err, model.ErrValidation) {
		return nil, err
	}
	if err != nil {
		return nil, model.ErrUploadFailed.Wrap(err).WithDetails(map[string]any{"files": len(objs)})
	}

	return urls, nil
}

// isNotFound reports whether a repository write hit a missing record.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrRecordNotFound)
}
