package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresStore implements Store on top of a pgx connection pool.
type postgresStore struct {
	pool       *pgxpool.Pool
	inTx       bool
	logger     zerolog.Logger
	categories *categoryRepository
	products   *productRepository
	users      *userRepository
}

// NewPostgresStore creates a new PostgreSQL-backed record store.
func NewPostgresStore(pool *pgxpool.Pool, logger zerolog.Logger) Store {
	return newPostgresStore(pool, pool, false, logger)
}

func newPostgresStore(pool *pgxpool.Pool, db DBTX, inTx bool, logger zerolog.Logger) *postgresStore {
	return &postgresStore{
		pool:       pool,
		inTx:       inTx,
		logger:     logger,
		categories: newCategoryRepository(db, logger),
		products:   newProductRepository(db, logger),
		users:      newUserRepository(db, logger),
	}
}

func (s *postgresStore) Categories() CategoryRepository { return s.categories }
func (s *postgresStore) Products() ProductRepository     { return s.products }
func (s *postgresStore) Users() UserRepository           { return s.users }

// WithTx runs fn inside a database transaction.
func (s *postgresStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newPostgresStore(s.pool, tx, true, s.logger))
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("transaction rolled back")
		return err
	}
	return nil
}

// Ping verifies the pool can reach the database.
func (s *postgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign_key_violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
