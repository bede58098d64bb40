package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mukhma0c/cookies-manager/internal/models"
)

const entryTTL = 10 * time.Minute

type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
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

	return &RedisCache{rdb: rdb}, nil
}

var _ Cache = (*RedisCache)(nil)

func unitCostKey(kind models.ItemKind, itemID int64) string {
	return fmt.Sprintf("unitcost:%s:%d", kind, itemID)
}

func stockKey(kind models.ItemKind, itemID int64) string {
	return fmt.Sprintf("stock:%s:%d", kind, itemID)
}

func (c *RedisCache) GetUnitCost(ctx context.Context, kind models.ItemKind, itemID int64) (int64, bool, error) {
	millicents, err := c.rdb.Get(ctx, unitCostKey(kind, itemID)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get unit cost: %w", err)
	}
	return millicents, true, nil
}

func (c *RedisCache) SetUnitCost(ctx context.Context, kind models.ItemKind, itemID int64, millicents int64) error {
	return c.rdb.Set(ctx, unitCostKey(kind, itemID), millicents, entryTTL).Err()
}

func (c *RedisCache) GetStock(ctx context.Context, kind models.ItemKind, itemID int64) (float64, bool, error) {
	quantity, err := c.rdb.Get(ctx, stockKey(kind, itemID)).Float64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get stock: %w", err)
	}
	return quantity, true, nil
}

func (c *RedisCache) SetStock(ctx context.Context, kind models.ItemKind, itemID int64, quantity float64) error {
	return c.rdb.Set(ctx, stockKey(kind, itemID), quantity, entryTTL).Err()
}

func (c *RedisCache) InvalidateItem(ctx context.Context, kind models.ItemKind, itemID int64) error {
	return c.rdb.Del(ctx, unitCostKey(kind, itemID), stockKey(kind, itemID)).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
