package database

import (
	"context"
	"fmt"
	"time"

	"catalog-api/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool opens the catalog's connection pool and, when cfg.EnsureSchema is
// set, creates the catalog tables before returning it.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	logger = logger.With().Str("component", "database").Logger()

	poolConfig, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int32("max_connections", poolConfig.MaxConns).
		Int32("min_connections", poolConfig.MinConns).
		Bool("ensure_schema", cfg.EnsureSchema).
		Msg("opening catalog database")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.EnsureSchema {
		if err := EnsureSchema(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	logger.Info().Msg("catalog database ready")
	return pool, nil
}

// poolConfig translates cfg into pgxpool settings. Zero durations keep the
// pgxpool defaults.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.MaxConnections > 0 {
		pc.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		pc.MinConns = int32(cfg.MinConnections)
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = seconds(cfg.MaxConnLifetime)
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = seconds(cfg.MaxConnIdleTime)
	}
	if cfg.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = seconds(cfg.HealthCheckPeriod)
	}

	return pc, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
