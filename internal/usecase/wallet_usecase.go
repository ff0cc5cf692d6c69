package usecase

import (
	"context"

	"mlm/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletEntryInput describes a ledger entry to append.
type WalletEntryInput struct {
	UserID          uuid.UUID
	Type            entity.WalletTransactionType
	Amount          decimal.Decimal
	Status          entity.WalletTransactionStatus
	RelatedOrderID  *uuid.UUID
	RelatedUserID   *uuid.UUID
	CommissionLevel *int
	Description     string
	IdempotencyKey  string
}

// AdjustmentInput is an admin-issued ADJUSTMENT or BONUS entry.
type AdjustmentInput struct {
	Type        entity.WalletTransactionType `json:"type" validate:"required,oneof=ADJUSTMENT BONUS"`
	Amount      decimal.Decimal              `json:"amount"`
	Description string                       `json:"description" validate:"required,max=255"`
}

// WalletVerification is the result of replaying a user's ledger.
type WalletVerification struct {
	UserID          uuid.UUID       `json:"user_id"`
	Entries         int             `json:"entries"`
	ReplayedBalance decimal.Decimal `json:"replayed_balance"`
	LatestBalance   decimal.Decimal `json:"latest_balance"`
	Consistent      bool            `json:"consistent"`
}

// WalletUsecase is the append-only wallet ledger.
type WalletUsecase interface {
	// Credit appends an entry. A reused idempotency key returns repository.ErrDuplicateWalletEntry.
	Credit(ctx context.Context, input *WalletEntryInput) (*entity.WalletTransaction, error)

	// Adjust appends an admin ADJUSTMENT or BONUS entry. Admin only.
	Adjust(ctx context.Context, actor entity.Actor, userID uuid.UUID, input *AdjustmentInput) (*entity.WalletTransaction, error)

	// Balance returns the current balance of a user.
	Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)

	// History returns entries newest first.
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error)

	// Verify replays COMPLETED entries and compares them with the latest snapshot.
	Verify(ctx context.Context, actor entity.Actor, userID uuid.UUID) (*WalletVerification, error)
}
