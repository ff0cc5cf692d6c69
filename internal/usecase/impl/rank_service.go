package impl

import (
	"context"
	"fmt"
	"log/slog"

	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/repository"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type rankService struct {
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
}

// RankServiceParams holds dependencies for RankService, injected by Fx.
type RankServiceParams struct {
	fx.In

	ProfileRepo repository.ProfileRepository
	Logger      *slog.Logger
}

// NewRankService creates the rank ledger usecase.
func NewRankService(params RankServiceParams) usecase.RankUsecase {
	return &rankService{
		profileRepo: params.ProfileRepo,
		logger:      params.Logger,
	}
}

func (srv *rankService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreditPoints increments current and lifetime points in one statement.
func (srv *rankService) CreditPoints(ctx context.Context, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("points must be positive, got %d", amount))
	}

	if err := srv.profileRepo.CreditPoints(ctx, userID, amount); err != nil {
		return mapRepositoryError(err, "failed to credit points")
	}

	srv.log(ctx).Debug("Points credited", slog.String("user_id", userID.String()), slog.Int64("amount", amount))

	return nil
}

// Promote overwrites the rank. It does not compare with the current one.
func (srv *rankService) Promote(ctx context.Context, userID uuid.UUID, rank entity.Rank) error {
	if !rank.IsValid() {
		return domainerrors.ErrUnknownRank.WithDetails(rank.String())
	}

	if err := srv.profileRepo.UpdateRank(ctx, userID, rank); err != nil {
		return mapRepositoryError(err, "failed to update rank")
	}

	srv.log(ctx).Info("Rank updated", slog.String("user_id", userID.String()), slog.String("rank", rank.String()))

	return nil
}

func (srv *rankService) Raise(ctx context.Context, userID uuid.UUID, rank entity.Rank) error {
	if !rank.IsValid() {
		return domainerrors.ErrUnknownRank.WithDetails(rank.String())
	}

	if err := srv.profileRepo.RaiseRank(ctx, userID, rank); err != nil {
		return mapRepositoryError(err, "failed to raise rank")
	}

	srv.log(ctx).Info("Rank raised", slog.String("user_id", userID.String()), slog.String("rank", rank.String()))

	return nil
}

func (srv *rankService) GetStanding(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := srv.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to find profile")
	}

	return profile, nil
}
