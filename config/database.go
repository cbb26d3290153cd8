package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ConfigurePostgresPool creates a pgxpool.Config from the database section.
// It sets up the connection string, enables TLS when the SSL mode requires
// it, and applies pool sizing, logging only non-sensitive details.
func ConfigurePostgresPool(cfg *DatabaseConfig) (*pgxpool.Config, error) {
	log := logger.GetLogger()

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	log.Infow("Connecting to database",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
		"sslmode", cfg.SSLMode,
		"connection_string", logger.MaskConnectionString(connStr))

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.SSLMode == "require" {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MinIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MinIdleConns)
	}
	if cfg.ConnMaxLife != "" {
		life, err := time.ParseDuration(cfg.ConnMaxLife)
		if err != nil {
			return nil, fmt.Errorf("invalid CONN_MAX_LIFE %q: %w", cfg.ConnMaxLife, err)
		}
		poolConfig.MaxConnLifetime = life
	}

	return poolConfig, nil
}

// ConnectPostgres builds the pool config, opens the pool, and verifies the
// connection with a ping.
func ConnectPostgres(ctx context.Context, cfg *DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := ConfigurePostgresPool(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// InitRedis initializes a Redis client and verifies the connection.
func InitRedis(cfg *RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxLifetime: time.Hour,
	}

	// Managed Redis providers (Upstash and friends) require TLS.
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client := redis.NewClient(opts)

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
