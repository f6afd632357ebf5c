package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// Config holds the Redis connection settings
type Config struct {
	Address  string
	Password string
	DB       int
}

var client *redis.Client

// Init connects the process-wide Redis client. Call once at startup;
// Close tears it down.
func Init(cfg Config) error {
	if cfg.Address == "" {
		return fmt.Errorf("redis address cannot be empty")
	}

	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	client = c
	return nil
}

// Client returns the shared client, or nil before a successful Init.
// Callers treat nil as "caching disabled".
func Client() *redis.Client {
	return client
}

// Close releases the shared client
func Close() error {
	if client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	err := client.Close()
	client = nil
	if err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}
	return nil
}

// Ping verifies the connection is still alive
func Ping(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("redis client is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
