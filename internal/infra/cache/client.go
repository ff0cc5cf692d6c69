// Package cache holds the redis-backed checkout idempotency store and order status cache.
package cache

import (
	"context"
	"log/slog"
	"time"

	"mlm/config"
	"mlm/internal/domain/lifecycle"
	"mlm/internal/domain/service"
	"mlm/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const (
	// keyIdempotentCheckout maps a client key to the order it created: idem:checkout:{key} -> order id
	keyIdempotentCheckout = "idem:checkout:%s"
	// keyOrderStatus caches the payment status: order_status:{order id} -> JSON snapshot
	keyOrderStatus = "order_status:%s"

	pendingMarker = "pending"

	defaultDialTimeout    = 2 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultStatusTTL      = 5 * time.Minute
)

// Params defines the dependencies of the redis client.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewClient creates the redis client, or nil when no address is configured.
func NewClient(params Params) *redis.Client {
	cfg := params.Config.Redis
	if cfg == nil || cfg.Addr == "" {
		params.Logger.Info("Redis disabled, checkout idempotency and status cache are no-ops")

		return nil
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping redis")
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client
}

// StoreParams defines the dependencies of the cache-backed services.
type StoreParams struct {
	fx.In

	Config *config.Config
	Client *redis.Client `optional:"true"`
}

// NewIdempotencyStore returns the redis store, or a pass-through store without redis.
func NewIdempotencyStore(params StoreParams) service.IdempotencyStore {
	if params.Client == nil {
		return noopIdempotencyStore{}
	}

	ttl := defaultIdempotencyTTL
	if params.Config.Redis != nil && params.Config.Redis.IdempotencyTTL > 0 {
		ttl = params.Config.Redis.IdempotencyTTL
	}

	return NewRedisIdempotencyStore(params.Client, ttl)
}

// NewOrderStatusCache returns the redis cache, or a cache that always misses without redis.
func NewOrderStatusCache(params StoreParams) service.OrderStatusCache {
	if params.Client == nil {
		return noopStatusCache{}
	}

	ttl := defaultStatusTTL
	if params.Config.Redis != nil && params.Config.Redis.StatusTTL > 0 {
		ttl = params.Config.Redis.StatusTTL
	}

	return NewRedisOrderStatusCache(params.Client, ttl)
}
