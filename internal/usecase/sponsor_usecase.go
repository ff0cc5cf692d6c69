package usecase

import (
	"context"

	"mlm/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateProfileInput registers an affiliate for a signed-up user.
type CreateProfileInput struct {
	UserID       uuid.UUID `json:"-"`
	Name         string    `json:"name" validate:"required,max=120"`
	ReferralCode string    `json:"referral_code,omitempty" validate:"omitempty,max=32"`
}

// AncestorWalker lazily yields the ancestors of a user, one sponsor hop per Next.
// It stops at the depth limit, at a user without sponsor, or at an inactive sponsor,
// and cannot be restarted.
type AncestorWalker interface {
	// Next advances to the next ancestor. It returns false when the walk is over or failed.
	Next(ctx context.Context) bool

	// ID returns the current ancestor.
	ID() uuid.UUID

	// Depth returns the number of hops from the start to the current ancestor.
	Depth() int

	// Err returns the error that stopped the walk, if any.
	Err() error
}

// SponsorUsecase maintains the sponsor graph and its genealogy index.
type SponsorUsecase interface {
	// CreateProfile creates the affiliate profile of a user, optionally sponsored by a referral code.
	CreateProfile(ctx context.Context, input *CreateProfileInput) (*entity.Profile, error)

	// GetProfile returns an affiliate profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)

	// Assign sets the sponsor of a user after self, activity and cycle checks.
	Assign(ctx context.Context, userID, sponsorID uuid.UUID) error

	// AssignByReferralCode resolves a referral code and assigns its owner as sponsor.
	AssignByReferralCode(ctx context.Context, userID uuid.UUID, code string) (*entity.Profile, error)

	// Detach clears the sponsor of a user.
	Detach(ctx context.Context, userID uuid.UUID) error

	// AncestorWalk returns a fresh walker starting at start. A non-positive or
	// too large maxDepth falls back to the configured limit.
	AncestorWalk(start uuid.UUID, maxDepth int) AncestorWalker

	// Upline returns the indexed ancestors of a user.
	Upline(ctx context.Context, userID uuid.UUID) ([]entity.GenealogyEntry, error)

	// Downline returns the indexed descendants of a user up to maxLevel.
	Downline(ctx context.Context, userID uuid.UUID, maxLevel int) ([]entity.GenealogyEntry, error)
}
