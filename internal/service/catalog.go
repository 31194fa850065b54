package service

import (
	"context"

	"catalog-api/internal/repository"
	"catalog-api/internal/storage"

	"github.com/rs/zerolog"
)

// Catalog bundles the services that share one record store.
type Catalog struct {
	Categories CategoryService
	Products   ProductService
	Users      UserService

	store repository.Store
}

// NewCatalog wires every service against store and uploader.
func NewCatalog(store repository.Store, uploader storage.Uploader, logger zerolog.Logger) *Catalog {
	return &Catalog{
		Categories: NewCategoryService(store, uploader, logger),
		Products:   NewProductService(store, uploader, logger),
		Users:      NewUserService(store, logger),
		store:      store,
	}
}

// Ping reports whether the record store is reachable.
func (c *Catalog) Ping(ctx context.Context) error {
	return storeError(c.store.Ping(ctx))
}
