package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mlm/internal/domain/service"
	"mlm/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type redisOrderStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOrderStatusCache stores status snapshots as JSON with a TTL.
func NewRedisOrderStatusCache(client *redis.Client, ttl time.Duration) service.OrderStatusCache {
	return &redisOrderStatusCache{client: client, ttl: ttl}
}

func (c *redisOrderStatusCache) Get(ctx context.Context, orderID uuid.UUID) (*service.OrderStatusSnapshot, bool, error) {
	raw, err := c.client.Get(ctx, fmt.Sprintf(keyOrderStatus, orderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, errors.Wrap(err, "failed to read order status")
	}

	var snapshot service.OrderStatusSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, false, errors.Wrap(err, "failed to decode order status")
	}

	return &snapshot, true, nil
}

func (c *redisOrderStatusCache) Set(ctx context.Context, snapshot *service.OrderStatusSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to encode order status")
	}
	if err := c.client.Set(ctx, fmt.Sprintf(keyOrderStatus, snapshot.OrderID), raw, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to cache order status")
	}

	return nil
}

type noopStatusCache struct{}

func (noopStatusCache) Get(context.Context, uuid.UUID) (*service.OrderStatusSnapshot, bool, error) {
	return nil, false, nil
}

func (noopStatusCache) Set(context.Context, *service.OrderStatusSnapshot) error { return nil }
