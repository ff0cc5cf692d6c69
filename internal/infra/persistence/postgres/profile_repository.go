package postgres

import (
	"context"
	"time"

	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/lifecycle"
	"mlm/internal/domain/repository"
	"mlm/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// profileRepository implements repository.ProfileRepository using GORM.
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository is the constructor for profileRepository.
func NewProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	profileM := fromProfileDomain(profile)
	if err := repo.db.WithContext(ctx).Create(profileM).Error; err != nil {
		if uniqueViolationOn(err, "referral_code") {
			return repository.ErrDuplicateReferralCode
		}
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateProfile
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create profile")
	}
	profile.CreatedAt = profileM.CreatedAt
	profile.UpdatedAt = profileM.UpdatedAt

	return nil
}

func (repo *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	return repo.first(ctx, repo.db.Where("id = ?", id))
}

func (repo *profileRepository) FindByReferralCode(ctx context.Context, code string) (*entity.Profile, error) {
	return repo.first(ctx, repo.db.Where("UPPER(referral_code) = UPPER(?)", code))
}

func (repo *profileRepository) first(ctx context.Context, scope *gorm.DB) (*entity.Profile, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var profileM model.ProfileModel
	if err := scope.WithContext(ctx).First(&profileM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find profile")
	}

	return toProfileDomain(&profileM)
}

func (repo *profileRepository) FindSponsorLink(ctx context.Context, id uuid.UUID) (*entity.SponsorLink, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var link struct {
		ID        uuid.UUID
		SponsorID *uuid.UUID
		IsActive  bool
	}
	result := repo.db.WithContext(ctx).
		Model(&model.ProfileModel{}).
		Select("id, sponsor_id, is_active").
		Where("id = ?", id).
		Limit(1).
		Scan(&link)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to find sponsor link")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrProfileNotFound
	}

	return &entity.SponsorLink{ID: link.ID, SponsorID: link.SponsorID, IsActive: link.IsActive}, nil
}

func (repo *profileRepository) ListChildren(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var children []uuid.UUID
	if err := repo.db.WithContext(ctx).
		Model(&model.ProfileModel{}).
		Where("sponsor_id = ?", id).
		Order("id").
		Pluck("id", &children).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list sponsored profiles")
	}

	return children, nil
}

// sponsorGraphLockKey is the pg_advisory_xact_lock key shared by every sponsor assignment.
const sponsorGraphLockKey int64 = 0x6d6c6d5f73706f6e

// LockSponsorGraph takes a transaction-scoped advisory lock. Concurrent Assign
// calls then walk the chain one at a time, so two of them cannot both pass the
// cycle check and close a loop together.
func (repo *profileRepository) LockSponsorGraph(ctx context.Context) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	if err := repo.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", sponsorGraphLockKey).Error; err != nil {
		return errors.Wrap(err, "failed to lock sponsor graph")
	}

	return nil
}

func (repo *profileRepository) SetSponsor(ctx context.Context, id uuid.UUID, sponsorID *uuid.UUID) error {
	return repo.update(ctx, id, map[string]any{"sponsor_id": sponsorID})
}

func (repo *profileRepository) UpdateRank(ctx context.Context, id uuid.UUID, rank entity.Rank) error {
	return repo.update(ctx, id, map[string]any{"rank": rank.String()})
}

// RaiseRank locks the profile row, compares ranks in Go and writes under the lock.
func (repo *profileRepository) RaiseRank(ctx context.Context, id uuid.UUID, rank entity.Rank) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profileM model.ProfileModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "rank").
			Where("id = ?", id).
			First(&profileM).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrProfileNotFound
			}

			return errors.Wrap(err, "failed to lock profile")
		}

		current, err := entity.ParseRank(profileM.Rank)
		if err != nil {
			return errors.Wrapf(err, "profile %s has unreadable rank", id)
		}
		if !rank.Outranks(current) {
			return repository.ErrRankNotRaised
		}

		err = tx.Model(&model.ProfileModel{}).
			Where("id = ?", id).
			Updates(map[string]any{"rank": rank.String(), "updated_at": time.Now()}).Error

		return errors.Wrap(err, "failed to raise rank")
	})
}

// CreditPoints: UPDATE profiles SET current_points = current_points + ?, lifetime_points = lifetime_points + ? WHERE id = ?.
func (repo *profileRepository) CreditPoints(ctx context.Context, id uuid.UUID, amount int64) error {
	return repo.update(ctx, id, map[string]any{
		"current_points":  gorm.Expr("current_points + ?", amount),
		"lifetime_points": gorm.Expr("lifetime_points + ?", amount),
	})
}

func (repo *profileRepository) update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	updates["updated_at"] = time.Now()
	result := repo.db.WithContext(ctx).
		Model(&model.ProfileModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update profile")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProfileNotFound
	}

	return nil
}

func toProfileDomain(data *model.ProfileModel) (*entity.Profile, error) {
	rank, err := entity.ParseRank(data.Rank)
	if err != nil {
		return nil, errors.Wrapf(err, "profile %s has unreadable rank", data.ID)
	}

	return &entity.Profile{
		ID:             data.ID,
		Name:           data.Name,
		ReferralCode:   data.ReferralCode,
		SponsorID:      data.SponsorID,
		Rank:           rank,
		CurrentPoints:  data.CurrentPoints,
		LifetimePoints: data.LifetimePoints,
		IsActive:       data.IsActive,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}, nil
}

func fromProfileDomain(data *entity.Profile) *model.ProfileModel {
	return &model.ProfileModel{
		ID:             data.ID,
		Name:           data.Name,
		ReferralCode:   data.ReferralCode,
		SponsorID:      data.SponsorID,
		Rank:           data.Rank.String(),
		CurrentPoints:  data.CurrentPoints,
		LifetimePoints: data.LifetimePoints,
		IsActive:       data.IsActive,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}
