package service

import (
	"context"
	"slices"
	"time"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
	"catalog-api/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const productImageFolder = "products"

// productService implements ProductService.
type productService struct {
	store    repository.Store
	uploader storage.Uploader
	logger   zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(store repository.Store, uploader storage.Uploader, logger zerolog.Logger) ProductService {
	return &productService{
		store:    store,
		uploader: uploader,
		logger:   logger.With().Str("service", "product").Logger(),
	}
}

// Create adds a product. Every category id must exist.
func (s *productService) Create(ctx context.Context, in model.ProductInput) (*model.ProductView, error) {
	now := time.Now().UTC()
	product := newProduct(in)
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := validateStruct(product); err != nil {
		return nil, err
	}

	if err := requireCategories(ctx, s.store.Categories(), product.CategoryIDs); err != nil {
		s.logger.Warn().Err(err).Strs("category_ids", product.CategoryIDs).Msg("product rejected")
		return nil, err
	}

	urls, err := upload(ctx, s.uploader, productImageFolder, in.Images)
	if err != nil {
		s.logger.Error().Err(err).Int("files", len(in.Images)).Msg("failed to upload product images")
		return nil, err
	}
	product.ImageURLs = append(product.ImageURLs, urls...)

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := requireCategories(ctx, tx.Categories(), product.CategoryIDs); err != nil {
			return err
		}
		return tx.Products().Create(ctx, &product)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return nil, storeError(err)
	}

	s.logger.Info().Str("product_id", product.ID).Msg("product created")

	return s.resolve(ctx, product)
}

// Update applies patch. Unknown category ids are dropped.
func (s *productService) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.ProductView, error) {
	current, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if current == nil {
		return nil, model.ErrProductMissing
	}
	if _, err := s.applyPatch(ctx, s.store.Categories(), *current, patch); err != nil {
		return nil, err
	}

	urls, err := upload(ctx, s.uploader, productImageFolder, patch.Images)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to upload product images")
		return nil, err
	}

	var updated model.Product
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Products().LockByID(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return model.ErrProductMissing
		}

		next, err := s.applyPatch(ctx, tx.Categories(), *locked, patch)
		if err != nil {
			return err
		}
		next.ImageURLs = append(next.ImageURLs, urls...)
		next.UpdatedAt = time.Now().UTC()

		if err := tx.Products().Update(ctx, &next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if isNotFound(err) {
		err = model.ErrProductMissing
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, storeError(err)
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")

	return s.resolve(ctx, updated)
}

// applyPatch returns current with patch applied, validated, and its
// category ids filtered down to the ones that exist.
func (s *productService) applyPatch(ctx context.Context, categories repository.CategoryRepository, current model.Product, patch model.ProductPatch) (model.Product, error) {
	next := current.Clone()

	patch.Name.ApplyTo(&next.Name)
	patch.Brand.ApplyTo(&next.Brand)
	patch.OriginalPrice.ApplyTo(&next.OriginalPrice)
	patch.DiscountedPrice.ApplyTo(&next.DiscountedPrice)
	patch.DiscountPercentage.ApplyTo(&next.DiscountPercentage)
	patch.PriceIncludesTax.ApplyTo(&next.PriceIncludesTax)
	patch.ShippingIncluded.ApplyTo(&next.ShippingIncluded)
	patch.ShippingCalculatedAtCheckout.ApplyTo(&next.ShippingCalculatedAtCheckout)
	patch.StorePurchaseOnly.ApplyTo(&next.StorePurchaseOnly)
	patch.StylePincodePrompt.ApplyTo(&next.StylePincodePrompt)
	patch.Color.ApplyTo(&next.Color)
	patch.Material.ApplyTo(&next.Material)
	patch.WarrantyPeriod.ApplyTo(&next.WarrantyPeriod)
	patch.Delivery.ApplyTo(&next.Delivery)
	patch.Installation.ApplyTo(&next.Installation)
	patch.StockStatus.ApplyTo(&next.StockStatus)
	patch.Note.ApplyTo(&next.Note)
	patch.ProductCareInstructions.ApplyTo(&next.ProductCareInstructions)
	patch.ReturnAndCancellationPolicy.ApplyTo(&next.ReturnAndCancellationPolicy)
	if patch.Status.Set {
		next.Status = normalizeStatus(patch.Status.Value)
	}

	if patch.Features.Set {
		next.Features = slices.Clone(patch.Features.Value)
	}
	if patch.ImageURLs.Set {
		next.ImageURLs = slices.Clone(patch.ImageURLs.Value)
	}
	if next.Features == nil {
		next.Features = []string{}
	}
	if next.ImageURLs == nil {
		next.ImageURLs = []string{}
	}

	if err := validateStruct(next); err != nil {
		return model.Product{}, err
	}

	if patch.CategoryIDs.Set {
		kept, err := filterCategories(ctx, categories, NormalizeCategoryIDs(patch.CategoryIDs.Value))
		if err != nil {
			return model.Product{}, err
		}
		next.CategoryIDs = kept
	}

	return next, nil
}

// Delete removes a product.
func (s *productService) Delete(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		return tx.Products().Delete(ctx, id)
	})
	if isNotFound(err) {
		return model.ErrProductMissing
	}
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return storeError(err)
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// List returns every product the caller may see.
func (s *productService) List(ctx context.Context, isAdmin bool) ([]model.ProductView, error) {
	products, err := s.store.Products().GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get products")
		return nil, storeError(err)
	}

	return s.resolveAll(ctx, filterVisible(products, isAdmin))
}

// GetByID returns a product, treating one hidden from the caller as missing.
func (s *productService) GetByID(ctx context.Context, id string, isAdmin bool) (*model.ProductView, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product")
		return nil, storeError(err)
	}

	if product == nil || !IsVisible(product, isAdmin) {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductMissing
	}

	return s.resolve(ctx, *product)
}

// ListByCategory returns the visible products that reference categoryID.
func (s *productService) ListByCategory(ctx context.Context, categoryID string, isAdmin bool) ([]model.ProductView, error) {
	products, err := s.store.Products().GetByCategory(ctx, categoryID)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", categoryID).Msg("failed to get products by category")
		return nil, storeError(err)
	}

	return s.resolveAll(ctx, filterVisible(products, isAdmin))
}

// AddCategory links an existing category to a product.
func (s *productService) AddCategory(ctx context.Context, productID, categoryID string) (*model.ProductView, error) {
	return s.relink(ctx, productID, func(tx repository.Store, p *model.Product) error {
		category, err := tx.Categories().GetByID(ctx, categoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return model.ErrCategoryNotFound.WithDetails(map[string]any{"categoryId": categoryID})
		}
		if p.HasCategory(categoryID) {
			return model.ErrAlreadyLinked
		}
		p.CategoryIDs = append(p.CategoryIDs, categoryID)
		return nil
	})
}

// RemoveCategory unlinks a category from a product. The category itself
// does not have to exist, so dangling references can be cleaned up.
func (s *productService) RemoveCategory(ctx context.Context, productID, categoryID string) (*model.ProductView, error) {
	return s.relink(ctx, productID, func(tx repository.Store, p *model.Product) error {
		if !p.HasCategory(categoryID) {
			return model.ErrNotLinked
		}
		p.CategoryIDs = slices.DeleteFunc(p.CategoryIDs, func(id string) bool { return id == categoryID })
		return nil
	})
}

// relink locks a product, lets change edit its category ids, and saves it.
func (s *productService) relink(ctx context.Context, productID string, change func(tx repository.Store, p *model.Product) error) (*model.ProductView, error) {
	var product model.Product
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Products().LockByID(ctx, productID)
		if err != nil {
			return err
		}
		if locked == nil {
			return model.ErrProductMissing
		}

		if err := change(tx, locked); err != nil {
			return err
		}
		locked.UpdatedAt = time.Now().UTC()

		if err := tx.Products().Update(ctx, locked); err != nil {
			return err
		}
		product = *locked
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("product_id", productID).Msg("failed to change product categories")
		return nil, storeError(err)
	}

	return s.resolve(ctx, product)
}

// resolve attaches the existing categories of one product.
func (s *productService) resolve(ctx context.Context, p model.Product) (*model.ProductView, error) {
	views, err := s.resolveAll(ctx, []model.Product{p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// resolveAll attaches existing categories to every product. Dangling ids
// stay in CategoryIDs without a resolved entry.
func (s *productService) resolveAll(ctx context.Context, products []model.Product) ([]model.ProductView, error) {
	categories, err := s.store.Categories().GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load categories")
		return nil, storeError(err)
	}

	byID := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	views := make([]model.ProductView, len(products))
	for i, p := range products {
		views[i] = model.ProductView{Product: p, Categories: []model.Category{}}
		for _, id := range p.CategoryIDs {
			if c, ok := byID[id]; ok {
				views[i].Categories = append(views[i].Categories, c)
			}
		}
	}
	return views, nil
}

// normalizeStatus stores any status other than inactive as active.
func normalizeStatus(status model.ProductStatus) model.ProductStatus {
	if status == model.StatusInactive {
		return model.StatusInactive
	}
	return model.StatusActive
}

// newProduct builds a product from a create payload.
func newProduct(in model.ProductInput) model.Product {
	p := model.Product{
		Name:                         in.Name,
		Brand:                        in.Brand,
		OriginalPrice:                in.OriginalPrice,
		DiscountedPrice:              in.DiscountedPrice,
		DiscountPercentage:           in.DiscountPercentage,
		PriceIncludesTax:             in.PriceIncludesTax,
		ShippingIncluded:             in.ShippingIncluded,
		ShippingCalculatedAtCheckout: in.ShippingCalculatedAtCheckout,
		StorePurchaseOnly:            in.StorePurchaseOnly,
		StylePincodePrompt:           in.StylePincodePrompt,
		Color:                        in.Color,
		Material:                     in.Material,
		WarrantyPeriod:               in.WarrantyPeriod,
		Delivery:                     in.Delivery,
		Installation:                 in.Installation,
		StockStatus:                  in.StockStatus,
		Note:                         in.Note,
		ProductCareInstructions:      in.ProductCareInstructions,
		ReturnAndCancellationPolicy:  in.ReturnAndCancellationPolicy,
		Features:                     slices.Clone(in.Features),
		ImageURLs:                    slices.Clone(in.ImageURLs),
		CategoryIDs:                  NormalizeCategoryIDs(in.CategoryIDs),
		Status:                       normalizeStatus(in.Status),
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	return p
}
