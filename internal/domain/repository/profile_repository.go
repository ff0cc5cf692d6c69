package repository

import (
	"context"

	"mlm/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for affiliate persistence.
var (
	// ErrProfileNotFound is returned when a profile is not found.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrDuplicateProfile is returned when a profile already exists for the user.
	ErrDuplicateProfile = errors.New("profile already exists")
	// ErrDuplicateReferralCode is returned when a referral code is reused.
	ErrDuplicateReferralCode = errors.New("referral code already exists")
	// ErrRankNotRaised is returned when a rank does not outrank the stored one.
	ErrRankNotRaised = errors.New("rank is not higher than the current one")
)

// ProfileRepository holds affiliates: the sponsor graph nodes and the rank ledger counters.
type ProfileRepository interface {
	// Create persists a new profile.
	Create(ctx context.Context, profile *entity.Profile) error

	// FindByID retrieves a profile by user id.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)

	// FindByReferralCode retrieves a profile by its referral code.
	FindByReferralCode(ctx context.Context, code string) (*entity.Profile, error)

	// FindSponsorLink returns the sponsor graph node of a user.
	FindSponsorLink(ctx context.Context, id uuid.UUID) (*entity.SponsorLink, error)

	// ListChildren returns the users directly sponsored by id.
	ListChildren(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)

	// LockSponsorGraph serializes sponsor assignments until the surrounding
	// transaction ends. Outside a transaction it only orders the single call.
	LockSponsorGraph(ctx context.Context) error

	// SetSponsor sets or clears (nil) the sponsor of a user.
	SetSponsor(ctx context.Context, id uuid.UUID, sponsorID *uuid.UUID) error

	// UpdateRank sets the rank of a user.
	UpdateRank(ctx context.Context, id uuid.UUID, rank entity.Rank) error

	// RaiseRank sets the rank only if it outranks the stored one, checked and
	// written atomically. Returns ErrRankNotRaised otherwise.
	RaiseRank(ctx context.Context, id uuid.UUID, rank entity.Rank) error

	// CreditPoints atomically adds amount to both current and lifetime points.
	CreditPoints(ctx context.Context, id uuid.UUID, amount int64) error
}

// GenealogyRepository is the denormalized ancestor index derived from sponsor links.
type GenealogyRepository interface {
	// RebuildSubtree recomputes the rows of userID and of every descendant of userID,
	// following sponsor links up to maxDepth levels.
	RebuildSubtree(ctx context.Context, userID uuid.UUID, maxDepth int) error

	// DeleteByUser removes every row keyed by userID.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error

	// Ancestors returns the indexed ancestors of userID ordered by level.
	Ancestors(ctx context.Context, userID uuid.UUID, maxLevel int) ([]entity.GenealogyEntry, error)

	// Descendants returns the indexed descendants of ancestorID ordered by level.
	Descendants(ctx context.Context, ancestorID uuid.UUID, maxLevel int) ([]entity.GenealogyEntry, error)
}
