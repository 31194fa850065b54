// Command seed fills an empty catalog database with a demo category tree,
// a few products, and an operator account.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"catalog-api/internal/config"
	"catalog-api/internal/database"
	"catalog-api/internal/model"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/rs/zerolog"
)

type seedCategory struct {
	name     string
	comment  string
	children []string
}

type seedProduct struct {
	name       string
	brand      string
	price      float64
	discount   float64
	categories []string
	status     model.ProductStatus
}

var categories = []seedCategory{
	{name: "Sofas", comment: "Living room seating", children: []string{"Recliners", "Sectionals"}},
	{name: "Beds", children: []string{"Kids Beds"}},
	{name: "Storage"},
}

var products = []seedProduct{
	{name: "Aria Power Recliner", brand: "Comfort Co", price: 45999, discount: 15, categories: []string{"Sofas", "Recliners"}, status: model.StatusActive},
	{name: "Modular L Sectional", brand: "Comfort Co", price: 89999, categories: []string{"Sofas", "Sectionals"}, status: model.StatusActive},
	{name: "Bunk Bed Explorer", brand: "Nest", price: 32999, discount: 10, categories: []string{"Beds", "Kids Beds"}, status: model.StatusActive},
	{name: "Classic Wardrobe", brand: "Nest", price: 27999, categories: []string{"Storage"}, status: model.StatusInactive},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Store.Driver != config.StoreDriverPostgres {
		return fmt.Errorf("seeding requires the postgres store driver, got %s", cfg.Store.Driver)
	}

	logger := config.NewLogger(cfg.Logger).With().Str("component", "seed").Logger()
	ctx := context.Background()

	dbCfg := cfg.Database
	dbCfg.EnsureSchema = true

	pool, err := database.NewPool(ctx, dbCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	catalog := service.NewCatalog(repository.NewPostgresStore(pool, logger), nil, logger)

	if err := seedUser(ctx, catalog, logger); err != nil {
		return err
	}

	existing, err := catalog.Categories.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	if len(existing) > 0 {
		logger.Info().Int("count", len(existing)).Msg("catalog already has categories, skipping catalog seed")
		return nil
	}

	ids, err := seedCategories(ctx, catalog, logger)
	if err != nil {
		return err
	}

	return seedProducts(ctx, catalog, ids, logger)
}

func seedUser(ctx context.Context, catalog *service.Catalog, logger zerolog.Logger) error {
	in := model.RegisterUserInput{
		Name:     envOr("SEED_ADMIN_NAME", "Catalog Admin"),
		Phone:    envOr("SEED_ADMIN_PHONE", "9000000000"),
		Password: envOr("SEED_ADMIN_PASSWORD", "change-me"),
	}

	user, err := catalog.Users.Register(ctx, in)
	if errors.Is(err, model.ErrConflict) {
		logger.Info().Str("phone", in.Phone).Msg("operator already registered")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to register operator: %w", err)
	}

	logger.Info().Str("user_id", user.ID).Str("phone", user.Phone).Msg("operator registered")
	return nil
}

// seedCategories creates the tree and returns category ids by name.
func seedCategories(ctx context.Context, catalog *service.Catalog, logger zerolog.Logger) (map[string]string, error) {
	ids := make(map[string]string)

	create := func(name string, parentID *string, comment string) error {
		in := model.CreateCategoryInput{Name: name, ParentID: parentID}
		if comment != "" {
			in.Comment = &comment
		}
		view, err := catalog.Categories.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to create category %s: %w", name, err)
		}
		ids[name] = view.ID
		return nil
	}

	for _, c := range categories {
		if err := create(c.name, nil, c.comment); err != nil {
			return nil, err
		}
		rootID := ids[c.name]
		for _, child := range c.children {
			if err := create(child, &rootID, ""); err != nil {
				return nil, err
			}
		}
	}

	logger.Info().Int("count", len(ids)).Msg("categories seeded")
	return ids, nil
}

func seedProducts(ctx context.Context, catalog *service.Catalog, ids map[string]string, logger zerolog.Logger) error {
	for _, p := range products {
		in := model.ProductInput{
			Name:             p.name,
			Brand:            p.brand,
			OriginalPrice:    &p.price,
			PriceIncludesTax: true,
			Features:         []string{},
			Status:           p.status,
		}
		if p.discount > 0 {
			discounted := p.price * (100 - p.discount) / 100
			in.DiscountPercentage = &p.discount
			in.DiscountedPrice = &discounted
		}
		for _, name := range p.categories {
			in.CategoryIDs = append(in.CategoryIDs, ids[name])
		}

		view, err := catalog.Products.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to create product %s: %w", p.name, err)
		}
		logger.Debug().Str("product_id", view.ID).Str("name", view.Name).Msg("product seeded")
	}

	logger.Info().Int("count", len(products)).Msg("products seeded")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
