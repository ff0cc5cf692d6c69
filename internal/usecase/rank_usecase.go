package usecase

import (
	"context"

	"mlm/internal/domain/entity"

	"github.com/google/uuid"
)

// RankUsecase is the rank ledger: points and tiers of an affiliate.
type RankUsecase interface {
	// CreditPoints adds amount to both current and lifetime points.
	CreditPoints(ctx context.Context, userID uuid.UUID, amount int64) error

	// Promote sets the rank unconditionally. Callers compare ranks first.
	Promote(ctx context.Context, userID uuid.UUID, rank entity.Rank) error

	// Raise sets the rank only if it outranks the current one.
	Raise(ctx context.Context, userID uuid.UUID, rank entity.Rank) error

	// GetStanding returns the profile holding rank and points.
	GetStanding(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
}
