package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/repository"
	"mlm/internal/errors"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

type walletService struct {
	walletRepo repository.WalletRepository
	logger     *slog.Logger
}

// WalletServiceParams holds dependencies for WalletService, injected by Fx.
type WalletServiceParams struct {
	fx.In

	WalletRepo repository.WalletRepository
	Logger     *slog.Logger
}

// NewWalletService creates the wallet ledger usecase.
func NewWalletService(params WalletServiceParams) usecase.WalletUsecase {
	return &walletService{
		walletRepo: params.WalletRepo,
		logger:     params.Logger,
	}
}

func (srv *walletService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Credit appends a ledger entry. The repository snapshots balance_after.
func (srv *walletService) Credit(ctx context.Context, input *usecase.WalletEntryInput) (*entity.WalletTransaction, error) {
	if input.UserID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("wallet entry requires a user")
	}
	if !input.Type.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown wallet transaction type " + string(input.Type))
	}

	status := input.Status
	if status == "" {
		status = entity.WalletStatusCompleted
	}
	if !status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown wallet transaction status " + string(status))
	}

	entry := &entity.WalletTransaction{
		ID:              uuid.New(),
		UserID:          input.UserID,
		Type:            input.Type,
		Amount:          input.Amount,
		RelatedOrderID:  input.RelatedOrderID,
		RelatedUserID:   input.RelatedUserID,
		CommissionLevel: input.CommissionLevel,
		Description:     input.Description,
		Status:          status,
		IdempotencyKey:  input.IdempotencyKey,
	}

	if err := srv.walletRepo.Append(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateWalletEntry) {
			return nil, errors.WithStack(err)
		}

		return nil, mapRepositoryError(err, "failed to append wallet entry")
	}

	srv.log(ctx).Info("Wallet entry appended",
		slog.String("user_id", entry.UserID.String()),
		slog.String("type", string(entry.Type)),
		slog.String("amount", entry.Amount.String()),
		slog.String("balance_after", entry.BalanceAfter.String()),
	)

	return entry, nil
}

// Adjust records an admin ADJUSTMENT (either sign) or BONUS (positive only).
func (srv *walletService) Adjust(ctx context.Context, actor entity.Actor, userID uuid.UUID, input *usecase.AdjustmentInput) (*entity.WalletTransaction, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	switch input.Type {
	case entity.WalletAdjustment:
		if input.Amount.IsZero() {
			return nil, domainerrors.ErrValidationFailed.WithDetails("adjustment amount must not be zero")
		}
	case entity.WalletBonus:
		if !input.Amount.IsPositive() {
			return nil, domainerrors.ErrValidationFailed.WithDetails("bonus amount must be positive")
		}
	default:
		return nil, domainerrors.ErrValidationFailed.WithDetails("only ADJUSTMENT and BONUS entries can be issued")
	}

	adminID := actor.UserID

	return srv.Credit(ctx, &usecase.WalletEntryInput{
		UserID:        userID,
		Type:          input.Type,
		Amount:        input.Amount,
		Status:        entity.WalletStatusCompleted,
		RelatedUserID: &adminID,
		Description:   strings.TrimSpace(input.Description),
	})
}

func (srv *walletService) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	balance, err := srv.walletRepo.Balance(ctx, userID)
	if err != nil {
		return decimal.Zero, mapRepositoryError(err, "failed to read balance")
	}

	return balance, nil
}

func (srv *walletService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error) {
	limit, offset = normalizePage(limit, offset)

	entries, err := srv.walletRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to list wallet entries")
	}

	return entries, nil
}

// Verify replays COMPLETED entries oldest first. The ledger is consistent when
// every snapshot matches the running sum and the last snapshot equals the replay.
func (srv *walletService) Verify(ctx context.Context, actor entity.Actor, userID uuid.UUID) (*usecase.WalletVerification, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, domainerrors.ErrForbidden
	}

	entries, err := srv.walletRepo.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to list wallet entries")
	}

	result := &usecase.WalletVerification{
		UserID:          userID,
		Entries:         len(entries),
		ReplayedBalance: entity.ReplayBalance(entries),
		LatestBalance:   decimal.Zero,
		Consistent:      true,
	}

	running := decimal.Zero
	for _, entry := range entries {
		running = entry.NextBalance(running)
		if !entry.BalanceAfter.Equal(running) {
			result.Consistent = false
		}
	}
	if len(entries) > 0 {
		result.LatestBalance = entries[len(entries)-1].BalanceAfter
	}
	if !result.LatestBalance.Equal(result.ReplayedBalance) {
		result.Consistent = false
	}

	if !result.Consistent {
		srv.log(ctx).Error("Wallet ledger inconsistent",
			slog.String("user_id", userID.String()),
			slog.String("replayed", result.ReplayedBalance.String()),
			slog.String("latest", result.LatestBalance.String()),
		)
	}

	return result, nil
}
