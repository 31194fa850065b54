// Package integration runs the catalog API end to end against PostgreSQL.
package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"catalog-api/internal/database"
	"catalog-api/internal/handler"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/router"
	"catalog-api/internal/service"
	"catalog-api/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the catalog schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.EnsureSchema(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes every row from the catalog tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), `TRUNCATE categories, products, users`); err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

// NewServer wires the full HTTP stack against the test database.
// Uploaded images are written under a temporary directory served at /uploads.
func NewServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	uploadDir := t.TempDir()

	store := repository.NewPostgresStore(testDB.Pool, logger)
	uploader := storage.NewDiskUploader(uploadDir, "/uploads", storage.DefaultLimits(), logger)
	catalog := service.NewCatalog(store, uploader, logger)

	return router.New(router.Handlers{
		Categories: handler.NewCategoryHandler(catalog.Categories, catalog.Products, 0, logger),
		Products:   handler.NewProductHandler(catalog.Products, 0, logger),
		Users:      handler.NewUserHandler(catalog.Users, 0, logger),
		Health:     handler.Health(catalog, logger),
	}, router.Options{
		Authenticator: catalog.Users,
		RateLimiter:   middleware.NewRateLimiter(1000, 1000),
		UploadDir:     uploadDir,
		UploadPath:    "/uploads",
	}, logger)
}
