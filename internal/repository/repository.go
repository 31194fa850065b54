package repository

import (
	"context"
	"errors"

	"catalog-api/internal/model"
)

var (
	// ErrRecordNotFound is returned by Update and Delete when no record has the given ID.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a write violates a uniqueness constraint.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrBrokenReference is returned when a write would leave a category
	// pointing at a parent that does not exist.
	ErrBrokenReference = errors.New("broken parent reference")
)

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// GetAll retrieves every category ordered by name.
	GetAll(ctx context.Context) ([]model.Category, error)

	// GetByID retrieves a single category. Returns nil, nil when it does not exist.
	GetByID(ctx context.Context, id string) (*model.Category, error)

	// LockByID is GetByID that also locks the row for the rest of the transaction.
	LockByID(ctx context.Context, id string) (*model.Category, error)

	// GetByParent retrieves the direct children of parentID, or the roots when parentID is nil.
	GetByParent(ctx context.Context, parentID *string) ([]model.Category, error)

	// ExistingIDs returns the subset of ids that exist.
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)

	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves every product ordered by name.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product. Returns nil, nil when it does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// LockByID is GetByID that also locks the row for the rest of the transaction.
	LockByID(ctx context.Context, id string) (*model.Product, error)

	// GetByCategory retrieves the products whose category ids contain categoryID.
	GetByCategory(ctx context.Context, categoryID string) ([]model.Product, error)

	// RemoveCategoryRefs strips categoryIDs from every product and returns
	// how many products changed.
	RemoveCategoryRefs(ctx context.Context, categoryIDs []string) (int64, error)

	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	GetAll(ctx context.Context) ([]model.User, error)

	// GetByID retrieves a single user. Returns nil, nil when it does not exist.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByPhone retrieves a user by phone. Returns nil, nil when it does not exist.
	GetByPhone(ctx context.Context, phone string) (*model.User, error)

	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

// Store is the record store shared by every request.
type Store interface {
	Categories() CategoryRepository
	Products() ProductRepository
	Users() UserRepository

	// WithTx runs fn inside a transaction. The Store passed to fn is bound to
	// that transaction; returning an error rolls every write back.
	// Nested calls reuse the outer transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
