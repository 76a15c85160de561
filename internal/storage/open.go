package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"junkmart/web/internal/config"
)

// Open builds the driver named by cfg.Driver. redisClient and db are only
// consulted by the drivers that need them.
func Open(ctx context.Context, cfg config.StorageConfig, redisClient *redis.Client, db DB) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Dir)
	case "redis":
		if redisClient == nil {
			return nil, errors.New("redis storage requires a redis client")
		}
		return NewRedisStore(redisClient, cfg.Prefix, cfg.TTL), nil
	case "postgres":
		if db == nil {
			return nil, errors.New("postgres storage requires a database pool")
		}
		store := NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
