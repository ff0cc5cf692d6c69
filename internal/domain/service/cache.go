package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrIdempotencyKeyInFlight is returned when another request holds the same key.
var ErrIdempotencyKeyInFlight = errors.New("idempotency key in flight")

// IdempotencyStore deduplicates checkout requests carrying the same client key.
type IdempotencyStore interface {
	// Acquire claims key. When the key already completed, the stored order id is returned
	// with acquired=false. When it is still being processed, ErrIdempotencyKeyInFlight is returned.
	Acquire(ctx context.Context, key string) (existing uuid.UUID, acquired bool, err error)

	// Complete records the order created under key.
	Complete(ctx context.Context, key string, orderID uuid.UUID) error

	// Abandon releases a claimed key after a failed checkout.
	Abandon(ctx context.Context, key string) error
}

// OrderStatusSnapshot is the cached projection of an order's payment status.
type OrderStatusSnapshot struct {
	OrderID   uuid.UUID `json:"order_id"`
	UserID    uuid.UUID `json:"user_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderStatusCache serves hot order status reads.
type OrderStatusCache interface {
	// Get returns the cached snapshot and false on a miss.
	Get(ctx context.Context, orderID uuid.UUID) (*OrderStatusSnapshot, bool, error)

	// Set stores a snapshot.
	Set(ctx context.Context, snapshot *OrderStatusSnapshot) error
}
