package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps redis.Client but fails safe by swallowing connectivity errors.
// A nil *Client is a valid, always-missing cache.
type Client struct {
	client *redis.Client
	logger *zap.Logger
}

// New creates a new Redis client.
func New(addr, password string, db int, logger *zap.Logger) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts), logger: logger}
}

// Ping reports whether redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connections.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// GetJSON decodes the value stored at key into dst and reports whether it was found.
// Redis failures and undecodable values behave like a miss.
func (c *Client) GetJSON(ctx context.Context, key string, dst any) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("cache value undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON stores value at key with TTL, ignoring redis errors.
func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.client == nil || ttl <= 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache value unencodable", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes a key, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
