package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"gaming-storefront/internal/config"
)

// Open builds the configured PreferenceStorer and checks the backend is
// reachable.
func Open(ctx context.Context, cfg config.StorageConfig, logger *log.Logger) (PreferenceStorer, error) {
	if logger == nil {
		logger = log.Default()
	}
	switch cfg.Backend {
	case "", "memory":
		logger.Println("INFO: Using in-memory preference store.")
		return NewMemoryStore(), nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("store: open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: ping postgres: %w", err)
		}
		logger.Printf("INFO: Using postgres preference store for profile %q.", cfg.Profile)
		s, err := NewPostgresStore(db, cfg.Profile)
		if err != nil {
			db.Close()
			return nil, err
		}
		return s, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("store: ping redis: %w", err)
		}
		logger.Printf("INFO: Using redis preference store for profile %q.", cfg.Profile)
		s, err := NewRedisStore(rdb, cfg.Profile)
		if err != nil {
			rdb.Close()
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}
