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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// walletRepository implements the append-only repository.WalletRepository.
type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository is the constructor for walletRepository.
func NewWalletRepository(db *gorm.DB) repository.WalletRepository {
	return &walletRepository{db: db}
}

// Append locks the owner's profile row so concurrent appends for the same user
// serialize on reading the previous balance_after. created_at and seq are both
// assigned under that lock, so seq order is append order.
func (repo *walletRepository) Append(ctx context.Context, entry *entity.WalletTransaction) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.ProfileModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", entry.UserID).
			First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrProfileNotFound
			}

			return errors.Wrap(err, "failed to lock wallet owner")
		}

		previous, err := latestBalance(tx, entry.UserID)
		if err != nil {
			return err
		}
		entry.CreatedAt = time.Now()
		entry.BalanceAfter = entry.NextBalance(previous)

		if err := tx.Create(fromWalletDomain(entry)).Error; err != nil {
			if isUniqueConstraintViolation(err) {
				return repository.ErrDuplicateWalletEntry
			}

			return domainerrors.NewDatabaseExecuteError(err, "failed to append wallet entry")
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func latestBalance(db *gorm.DB, userID uuid.UUID) (decimal.Decimal, error) {
	var latest model.WalletTransactionModel
	err := db.Select("balance_after").
		Where("user_id = ?", userID).
		Order("seq DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}

		return decimal.Zero, errors.Wrap(err, "failed to read wallet balance")
	}

	return latest.BalanceAfter, nil
}

func (repo *walletRepository) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	return latestBalance(repo.db.WithContext(ctx), userID)
}

func (repo *walletRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	query := repo.db.WithContext(ctx).Where("user_id = ?", userID).Order("seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return findWalletEntries(query)
}

func (repo *walletRepository) ListAllByUser(ctx context.Context, userID uuid.UUID) ([]*entity.WalletTransaction, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	return findWalletEntries(repo.db.WithContext(ctx).Where("user_id = ?", userID).Order("seq ASC"))
}

func findWalletEntries(query *gorm.DB) ([]*entity.WalletTransaction, error) {
	var entryMs []*model.WalletTransactionModel
	if err := query.Find(&entryMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list wallet entries")
	}

	entries := make([]*entity.WalletTransaction, len(entryMs))
	for i, entryM := range entryMs {
		entries[i] = toWalletDomain(entryM)
	}

	return entries, nil
}

func toWalletDomain(data *model.WalletTransactionModel) *entity.WalletTransaction {
	entry := &entity.WalletTransaction{
		ID:              data.ID,
		UserID:          data.UserID,
		Type:            entity.WalletTransactionType(data.Type),
		Amount:          data.Amount,
		BalanceAfter:    data.BalanceAfter,
		RelatedOrderID:  data.RelatedOrderID,
		RelatedUserID:   data.RelatedUserID,
		CommissionLevel: data.CommissionLevel,
		Description:     data.Description,
		Status:          entity.WalletTransactionStatus(data.Status),
		CreatedAt:       data.CreatedAt,
	}
	if data.IdempotencyKey != nil {
		entry.IdempotencyKey = *data.IdempotencyKey
	}

	return entry
}

func fromWalletDomain(data *entity.WalletTransaction) *model.WalletTransactionModel {
	entryM := &model.WalletTransactionModel{
		ID:              data.ID,
		UserID:          data.UserID,
		Type:            string(data.Type),
		Amount:          data.Amount,
		BalanceAfter:    data.BalanceAfter,
		RelatedOrderID:  data.RelatedOrderID,
		RelatedUserID:   data.RelatedUserID,
		CommissionLevel: data.CommissionLevel,
		Description:     data.Description,
		Status:          string(data.Status),
		CreatedAt:       data.CreatedAt,
	}
	if data.IdempotencyKey != "" {
		key := data.IdempotencyKey
		entryM.IdempotencyKey = &key
	}

	return entryM
}
