package repository

import (
	"context"

	"mlm/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Domain-specific errors for wallet persistence.
var (
	// ErrDuplicateWalletEntry is returned when an idempotency key was already used.
	ErrDuplicateWalletEntry = errors.New("wallet entry already recorded")
)

// WalletRepository is the append-only wallet ledger. Entries are never updated or deleted.
type WalletRepository interface {
	// Append stores the entry and fills in its BalanceAfter snapshot atomically
	// with respect to other appends for the same user.
	Append(ctx context.Context, entry *entity.WalletTransaction) error

	// Balance returns the balance_after of the user's latest entry, or zero.
	Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)

	// ListByUser returns entries newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error)

	// ListAllByUser returns every entry oldest first, for replay.
	ListAllByUser(ctx context.Context, userID uuid.UUID) ([]*entity.WalletTransaction, error)
}
