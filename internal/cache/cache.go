package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Client wraps redis.Client and fails safe: connectivity errors behave like
// a cache miss and are only logged. A nil *Client is a valid, disabled cache.
type Client struct {
	client *redis.Client
	prefix string
	log    *logrus.Entry
}

func New(addr, password string, db int, logger *logrus.Logger) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return NewFromRedis(redis.NewClient(opts), logger)
}

func NewFromRedis(rdb *redis.Client, logger *logrus.Logger) *Client {
	return &Client{
		client: rdb,
		prefix: "storefront:",
		log:    logger.WithField("component", "cache"),
	}
}

// Ping reports whether redis answers. Startup logs the result and carries on.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("cache disabled")
	}
	return c.client.Ping(ctx).Err()
}

// Get returns the value or nil if missing or redis is unavailable.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	res, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		c.log.Warnf("Get %s failed: %v", key, err)
		return nil
	}
	return res
}

// Set stores value with ttl, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		c.log.Warnf("Set %s failed: %v", key, err)
	}
}

// Delete removes a key, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.log.Warnf("Delete %s failed: %v", key, err)
	}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
