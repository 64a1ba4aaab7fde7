package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and verifies the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// GetProduct fetches a cached product snapshot. Returns ("", nil) on a cache
// miss.
func (c *Client) GetProduct(ctx context.Context, id string) (string, error) {
	val, err := c.rdb.Get(ctx, productKey(id)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// SetProduct stores a JSON-encoded product snapshot with a TTL
func (c *Client) SetProduct(ctx context.Context, id, payload string, ttl time.Duration) error {
	return c.rdb.Set(ctx, productKey(id), payload, ttl).Err()
}

// InvalidateProduct drops a cached product snapshot
func (c *Client) InvalidateProduct(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}
