package cache

import (
	"context"
	"fmt"
	"time"

	"mlm/internal/domain/service"
	"mlm/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type redisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyStore claims keys with SET NX and stores the created order id under them.
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) service.IdempotencyStore {
	return &redisIdempotencyStore{client: client, ttl: ttl}
}

func (s *redisIdempotencyStore) Acquire(ctx context.Context, key string) (uuid.UUID, bool, error) {
	redisKey := fmt.Sprintf(keyIdempotentCheckout, key)

	ok, err := s.client.SetNX(ctx, redisKey, pendingMarker, s.ttl).Result()
	if err != nil {
		return uuid.Nil, false, errors.Wrap(err, "failed to claim idempotency key")
	}
	if ok {
		return uuid.Nil, true, nil
	}

	value, err := s.client.Get(ctx, redisKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired between SETNX and GET; the caller may retry.
			return uuid.Nil, false, service.ErrIdempotencyKeyInFlight
		}

		return uuid.Nil, false, errors.Wrap(err, "failed to read idempotency key")
	}
	if value == pendingMarker {
		return uuid.Nil, false, service.ErrIdempotencyKeyInFlight
	}

	orderID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false, errors.Wrapf(err, "idempotency key %s holds %q", key, value)
	}

	return orderID, false, nil
}

func (s *redisIdempotencyStore) Complete(ctx context.Context, key string, orderID uuid.UUID) error {
	if err := s.client.Set(ctx, fmt.Sprintf(keyIdempotentCheckout, key), orderID.String(), s.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to complete idempotency key")
	}

	return nil
}

func (s *redisIdempotencyStore) Abandon(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, fmt.Sprintf(keyIdempotentCheckout, key)).Err(); err != nil {
		return errors.Wrap(err, "failed to release idempotency key")
	}

	return nil
}

type noopIdempotencyStore struct{}

func (noopIdempotencyStore) Acquire(context.Context, string) (uuid.UUID, bool, error) {
	return uuid.Nil, true, nil
}

func (noopIdempotencyStore) Complete(context.Context, string, uuid.UUID) error { return nil }

func (noopIdempotencyStore) Abandon(context.Context, string) error { return nil }
