package service

import (
	"context"

	"github.com/google/uuid"
)

// CommissionEngine fans an approved order out into wallet credits for the
// buyer's upline. It accepts orders whose payment status is approved.
type CommissionEngine interface {
	// CalculateCommissions credits every eligible ancestor of the order's buyer.
	// Re-running it for the same order must not pay twice.
	CalculateCommissions(ctx context.Context, orderID uuid.UUID) error
}

// GenealogyIndexer maintains the denormalized ancestor index after sponsor changes.
// Implementations may apply changes asynchronously; readers tolerate the lag.
type GenealogyIndexer interface {
	// Rebuild recomputes the index rows of userID and its descendants.
	Rebuild(ctx context.Context, userID uuid.UUID) error

	// Remove drops the rows keyed by userID and refreshes its descendants.
	Remove(ctx context.Context, userID uuid.UUID) error
}
