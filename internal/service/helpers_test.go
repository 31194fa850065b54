package service

import (
	"context"
	"errors"
	"testing"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUploader is a mock implementation of storage.Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, folder string, objs []model.Upload) ([]string, error) {
	args := m.Called(ctx, folder, objs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// brokenProducts fails every read of the product table.
type brokenProducts struct {
	repository.ProductRepository
}

func (brokenProducts) GetAll(ctx context.Context) ([]model.Product, error) {
	return nil, errors.New("connection refused")
}

func (brokenProducts) GetByID(ctx context.Context, id string) (*model.Product, error) {
	return nil, errors.New("connection refused")
}

// brokenStore is a Store whose product table is unreachable.
type brokenStore struct {
	repository.Store
}

func (s brokenStore) Products() repository.ProductRepository {
	return brokenProducts{s.Store.Products()}
}

func newTestCatalog(t *testing.T) (*Catalog, repository.Store, *MockUploader) {
	t.Helper()
	store := repository.NewMemoryStore(zerolog.Nop())
	uploader := &MockUploader{}
	t.Cleanup(func() { uploader.AssertExpectations(t) })
	return NewCatalog(store, uploader, zerolog.Nop()), store, uploader
}

func ptr[T any](v T) *T {
	return &v
}

func mustCreateCategory(t *testing.T, c *Catalog, name string, parentID *string) *model.CategoryView {
	t.Helper()
	view, err := c.Categories.Create(context.Background(), model.CreateCategoryInput{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return view
}

func mustCreateProduct(t *testing.T, c *Catalog, in model.ProductInput) *model.ProductView {
	t.Helper()
	view, err := c.Products.Create(context.Background(), in)
	require.NoError(t, err)
	return view
}

// requireCode asserts err is a DomainError with the given code and returns it.
func requireCode(t *testing.T, err error, code string) *model.DomainError {
	t.Helper()
	require.Error(t, err)
	var domainErr *model.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T: %v", err, err)
	require.Equal(t, code, domainErr.Code, domainErr.Error())
	return domainErr
}
