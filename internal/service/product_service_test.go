package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog-api/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_Create_StrictCategories(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()
	sofas := mustCreateCategory(t, catalog, "Sofas", nil)

	_, err := catalog.Products.Create(ctx, model.ProductInput{Name: "Chesterfield", CategoryIDs: []string{sofas.ID, "unknown"}})
	domainErr := requireCode(t, err, model.ErrCodeUnknownCategories)
	assert.Equal(t, 2, domainErr.Details["providedCount"])
	assert.Equal(t, 1, domainErr.Details["foundCount"])
	assert.Equal(t, []string{"unknown"}, domainErr.Details["unknownIds"])

	products, err := catalog.Products.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductService_Update_LenientCategories(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()
	sofas := mustCreateCategory(t, catalog, "Sofas", nil)
	product := mustCreateProduct(t, catalog, model.ProductInput{Name: "Chesterfield"})

	updated, err := catalog.Products.Update(ctx, product.ID, model.ProductPatch{
		CategoryIDs: model.Some([]string{sofas.ID, "unknown", " " + sofas.ID + " "}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{sofas.ID}, updated.CategoryIDs)
	require.Len(t, updated.Categories, 1)
	assert.Equal(t, "Sofas", updated.Categories[0].Name)

	_, err = catalog.Products.Update(ctx, product.ID, model.ProductPatch{CategoryIDs: model.Some([]string{"ghost"})})
	requireCode(t, err, model.ErrCodeNoValidCategories)

	cleared, err := catalog.Products.Update(ctx, product.ID, model.ProductPatch{CategoryIDs: model.Some([]string{})})
	require.NoError(t, err)
	assert.Empty(t, cleared.CategoryIDs)
}

func TestProductService_Create_Fields(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)

	view := mustCreateProduct(t, catalog, model.ProductInput{
		Name:             "Recliner",
		Brand:            "Comfy",
		OriginalPrice:    ptr(1200.0),
		DiscountedPrice:  ptr(999.5),
		PriceIncludesTax: true,
		Features:         []string{"leather", "power"},
		ImageURLs:        []string{"a.png"},
		Status:           "bogus",
	})

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, ptr(1200.0), view.OriginalPrice)
	assert.Nil(t, view.DiscountPercentage)
	assert.True(t, view.PriceIncludesTax)
	assert.False(t, view.ShippingIncluded)
	assert.Equal(t, []string{"leather", "power"}, view.Features)
	assert.Equal(t, []string{"a.png"}, view.ImageURLs)
	assert.Equal(t, []string{}, view.CategoryIDs)
	assert.Equal(t, model.StatusActive, view.Status)
	assert.False(t, view.CreatedAt.IsZero())
}

func TestProductService_Create_Validation(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input model.ProductInput
		field string
	}{
		{name: "missing name", input: model.ProductInput{}, field: "name"},
		{name: "negative price", input: model.ProductInput{Name: "x", OriginalPrice: ptr(-1.0)}, field: "originalPrice"},
		{name: "discount over 100", input: model.ProductInput{Name: "x", DiscountPercentage: ptr(120.0)}, field: "discountPercentage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Products.Create(ctx, tt.input)
			domainErr := requireCode(t, err, model.ErrCodeValidation)
			assert.Contains(t, domainErr.Details["fields"], tt.field)
		})
	}
}

func TestProductService_Status(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()

	inactive := mustCreateProduct(t, catalog, model.ProductInput{Name: "Hidden", Status: model.StatusInactive})
	assert.Equal(t, model.StatusInactive, inactive.Status)

	// Absent status leaves it untouched.
	renamed, err := catalog.Products.Update(ctx, inactive.ID, model.ProductPatch{Name: model.Some("Still hidden")})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, renamed.Status)

	// Any present value other than inactive activates.
	activated, err := catalog.Products.Update(ctx, inactive.ID, model.ProductPatch{Status: model.Some[model.ProductStatus]("published")})
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, activated.Status)
}

func TestProductService_Update_Fields(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()

	product := mustCreateProduct(t, catalog, model.ProductInput{
		Name:          "Sofa",
		Color:         "red",
		OriginalPrice: ptr(500.0),
		Features:      []string{"soft"},
	})

	updated, err := catalog.Products.Update(ctx, product.ID, model.ProductPatch{
		Color:         model.Some("blue"),
		OriginalPrice: model.Some[*float64](nil),
		Features:      model.Some([]string{"soft", "wide"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Sofa", updated.Name)
	assert.Equal(t, "blue", updated.Color)
	assert.Nil(t, updated.OriginalPrice)
	assert.Equal(t, []string{"soft", "wide"}, updated.Features)
	assert.Equal(t, product.CreatedAt, updated.CreatedAt)

	_, err = catalog.Products.Update(ctx, product.ID, model.ProductPatch{Name: model.Some("")})
	requireCode(t, err, model.ErrCodeValidation)

	_, err = catalog.Products.Update(ctx, "missing", model.ProductPatch{Name: model.Some("x")})
	requireCode(t, err, model.ErrCodeNotFound)
}

func TestProductService_Images(t *testing.T) {
	ctx := context.Background()
	images := []model.Upload{
		{Filename: "front.png", Data: []byte("1")},
		{Filename: "back.png", Data: []byte("2")},
	}

	t.Run("uploaded urls follow supplied urls", func(t *testing.T) {
		catalog, _, uploader := newTestCatalog(t)
		uploader.On("Upload", mock.Anything, "products", images).
			Return([]string{"u/front.png", "u/back.png"}, nil).Once()

		view, err := catalog.Products.Create(ctx, model.ProductInput{Name: "Sofa", ImageURLs: []string{"existing.png"}, Images: images})
		require.NoError(t, err)
		assert.Equal(t, []string{"existing.png", "u/front.png", "u/back.png"}, view.ImageURLs)
	})

	t.Run("update appends to kept urls", func(t *testing.T) {
		catalog, _, uploader := newTestCatalog(t)
		product := mustCreateProduct(t, catalog, model.ProductInput{Name: "Sofa", ImageURLs: []string{"old.png"}})
		uploader.On("Upload", mock.Anything, "products", images[:1]).
			Return([]string{"u/front.png"}, nil).Once()

		view, err := catalog.Products.Update(ctx, product.ID, model.ProductPatch{Images: images[:1]})
		require.NoError(t, err)
		assert.Equal(t, []string{"old.png", "u/front.png"}, view.ImageURLs)
	})

	t.Run("upload failure persists nothing", func(t *testing.T) {
		catalog, _, uploader := newTestCatalog(t)
		uploader.On("Upload", mock.Anything, "products", images).
			Return(nil, errors.New("timeout")).Once()

		_, err := catalog.Products.Create(ctx, model.ProductInput{Name: "Sofa", Images: images})
		requireCode(t, err, model.ErrCodeUploadFailed)

		products, err := catalog.Products.List(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("rejected files are a validation error", func(t *testing.T) {
		catalog, _, uploader := newTestCatalog(t)
		uploader.On("Upload", mock.Anything, "products", images).
			Return(nil, model.ErrValidation.WithMessage("too many files")).Once()

		_, err := catalog.Products.Create(ctx, model.ProductInput{Name: "Sofa", Images: images})
		requireCode(t, err, model.ErrCodeValidation)
	})

	t.Run("invalid command is not uploaded", func(t *testing.T) {
		catalog, _, uploader := newTestCatalog(t)

		_, err := catalog.Products.Create(ctx, model.ProductInput{Name: "Sofa", CategoryIDs: []string{"ghost"}, Images: images})
		requireCode(t, err, model.ErrCodeUnknownCategories)
		uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProductService_Visibility(t *testing.T) {
	catalog, store, _ := newTestCatalog(t)
	ctx := context.Background()

	sofas := mustCreateCategory(t, catalog, "Sofas", nil)
	active := mustCreateProduct(t, catalog, model.ProductInput{Name: "A-active", CategoryIDs: []string{sofas.ID}})
	inactive := mustCreateProduct(t, catalog, model.ProductInput{Name: "B-inactive", Status: model.StatusInactive, CategoryIDs: []string{sofas.ID}})

	legacy := &model.Product{ID: "legacy", Name: "C-legacy", CategoryIDs: []string{sofas.ID}, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, store.Products().Create(ctx, legacy))

	names := func(views []model.ProductView) []string {
		out := make([]string, len(views))
		for i, v := range views {
			out[i] = v.Name
		}
		return out
	}

	anonymous, err := catalog.Products.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-active", "C-legacy"}, names(anonymous))

	admin, err := catalog.Products.List(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-active", "B-inactive", "C-legacy"}, names(admin))

	byCategory, err := catalog.Products.ListByCategory(ctx, sofas.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-active", "C-legacy"}, names(byCategory))

	_, err = catalog.Products.GetByID(ctx, inactive.ID, false)
	requireCode(t, err, model.ErrCodeNotFound)

	got, err := catalog.Products.GetByID(ctx, inactive.ID, true)
	require.NoError(t, err)
	assert.Equal(t, inactive.ID, got.ID)

	got, err = catalog.Products.GetByID(ctx, active.ID, false)
	require.NoError(t, err)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, sofas.ID, got.Categories[0].ID)
}

func TestProductService_Membership(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()

	sofas := mustCreateCategory(t, catalog, "Sofas", nil)
	beds := mustCreateCategory(t, catalog, "Beds", nil)
	product := mustCreateProduct(t, catalog, model.ProductInput{Name: "Daybed", CategoryIDs: []string{sofas.ID}})

	linked, err := catalog.Products.AddCategory(ctx, product.ID, beds.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{sofas.ID, beds.ID}, linked.CategoryIDs)
	assert.Len(t, linked.Categories, 2)

	_, err = catalog.Products.AddCategory(ctx, product.ID, beds.ID)
	requireCode(t, err, model.ErrCodeAlreadyLinked)

	unlinked, err := catalog.Products.RemoveCategory(ctx, product.ID, beds.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, product.CategoryIDs, unlinked.CategoryIDs)

	_, err = catalog.Products.RemoveCategory(ctx, product.ID, beds.ID)
	requireCode(t, err, model.ErrCodeNotLinked)

	_, err = catalog.Products.AddCategory(ctx, product.ID, "ghost")
	requireCode(t, err, model.ErrCodeCategoryNotFound)

	_, err = catalog.Products.AddCategory(ctx, "missing", beds.ID)
	requireCode(t, err, model.ErrCodeNotFound)

	_, err = catalog.Products.RemoveCategory(ctx, "missing", beds.ID)
	requireCode(t, err, model.ErrCodeNotFound)
}

func TestProductService_RemoveDanglingCategory(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()

	sofas := mustCreateCategory(t, catalog, "Sofas", nil)
	product := mustCreateProduct(t, catalog, model.ProductInput{Name: "Sofa", CategoryIDs: []string{sofas.ID}})
	_, err := catalog.Categories.Delete(ctx, sofas.ID, model.DeleteCategoryOptions{})
	require.NoError(t, err)

	view, err := catalog.Products.RemoveCategory(ctx, product.ID, sofas.ID)
	require.NoError(t, err)
	assert.Empty(t, view.CategoryIDs)
}

func TestProductService_Delete(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()
	product := mustCreateProduct(t, catalog, model.ProductInput{Name: "Sofa"})

	require.NoError(t, catalog.Products.Delete(ctx, product.ID))

	_, err := catalog.Products.GetByID(ctx, product.ID, true)
	requireCode(t, err, model.ErrCodeNotFound)

	err = catalog.Products.Delete(ctx, product.ID)
	requireCode(t, err, model.ErrCodeNotFound)
}

func TestProductService_StoreUnavailable(t *testing.T) {
	_, store, _ := newTestCatalog(t)
	catalog := NewCatalog(brokenStore{store}, &MockUploader{}, zerolog.Nop())
	ctx := context.Background()

	_, err := catalog.Products.List(ctx, false)
	domainErr := requireCode(t, err, model.ErrCodeStoreUnavailable)
	assert.EqualError(t, errors.Unwrap(domainErr), "connection refused")

	_, err = catalog.Products.GetByID(ctx, "any", true)
	requireCode(t, err, model.ErrCodeStoreUnavailable)
}
