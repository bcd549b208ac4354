package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"inventory-service/internal/models"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/cache_snapshot.lua
var cacheSnapshotScript string

const (
	itemsSnapshotKey = "inventory:snapshot:items"
	itemsSequenceKey = "inventory:snapshot:items:seq"
	snapshotTTL      = 5 * time.Minute
)

type Client struct {
	rdb            *redis.Client
	snapshotScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
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

	return &Client{
		rdb:            rdb,
		snapshotScript: redis.NewScript(cacheSnapshotScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheItems stores the full item listing as the current snapshot. The
// write goes through a Lua compare-and-set on a sequence counter so a
// snapshot read before a concurrent refresh cannot overwrite the fresher
// one after it.
func (c *Client) CacheItems(ctx context.Context, items []models.InventoryItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal item snapshot: %w", err)
	}

	seq := time.Now().UnixNano()
	ttl := int(snapshotTTL.Seconds())

	_, err = c.snapshotScript.Run(ctx, c.rdb,
		[]string{itemsSnapshotKey, itemsSequenceKey},
		seq, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("cache snapshot script failed: %w", err)
	}
	return nil
}

// GetCachedItems retrieves the cached item listing. The second return is
// false on a cache miss.
func (c *Client) GetCachedItems(ctx context.Context) ([]models.InventoryItem, bool, error) {
	payload, err := c.rdb.Get(ctx, itemsSnapshotKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []models.InventoryItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal item snapshot: %w", err)
	}
	return items, true, nil
}

// InvalidateItems drops the cached item listing, forcing the next read
// through to the database.
func (c *Client) InvalidateItems(ctx context.Context) error {
	return c.rdb.Del(ctx, itemsSnapshotKey, itemsSequenceKey).Err()
}

// AcquireLock acquires a distributed lock, used by ops tooling around bulk
// imports.
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
