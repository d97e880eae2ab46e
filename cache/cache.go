package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EasterCompany/dex-vmt-service/config"
)

const keyPrefix = "dex-vmt-service:"

// Cache is the small key/value surface the service needs. It only ever
// holds process heartbeats.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// redisAPI is the subset of *redis.Client used here.
type redisAPI interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

type DB struct {
	rdb redisAPI
}

// New connects to Redis. It returns nil, nil when no address is configured.
func New(ctx context.Context, cfg *config.ConnectionConfig) (*DB, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to cache at %s: %w", cfg.Addr, err)
	}
	return &DB{rdb: rdb}, nil
}

// Key namespaces a key for this service.
func Key(parts ...string) string {
	k := keyPrefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

func (db *DB) Ping(ctx context.Context) error {
	return db.rdb.Ping(ctx).Err()
}

func (db *DB) Close() error {
	return db.rdb.Close()
}

func (db *DB) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := db.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("could not set %s: %w", key, err)
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, key string) error {
	if err := db.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("could not delete %s: %w", key, err)
	}
	return nil
}
