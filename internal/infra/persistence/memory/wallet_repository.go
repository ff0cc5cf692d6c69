package memory

import (
	"context"
	"time"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/repository"
	"mlm/internal/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type walletRepository struct {
	store *Store
	undo  *undoLog
}

// NewWalletRepository creates a WalletRepository backed by the store.
func NewWalletRepository(store *Store) repository.WalletRepository {
	return &walletRepository{store: store}
}

// Append computes BalanceAfter from the latest entry while holding the write lock,
// so concurrent appends for one user never read the same previous balance.
// CreatedAt is stamped under the same lock, keeping it in insertion order.
func (r *walletRepository) Append(ctx context.Context, entry *entity.WalletTransaction) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.data
	if _, ok := data.profiles[entry.UserID]; !ok {
		return repository.ErrProfileNotFound
	}
	if entry.IdempotencyKey != "" && data.walletKeys[entry.IdempotencyKey] {
		return repository.ErrDuplicateWalletEntry
	}

	previous := decimal.Zero
	if entries := data.wallet[entry.UserID]; len(entries) > 0 {
		previous = entries[len(entries)-1].BalanceAfter
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	entry.BalanceAfter = entry.NextBalance(previous)

	data.wallet[entry.UserID] = append(data.wallet[entry.UserID], cloneWalletTx(entry))
	if entry.IdempotencyKey != "" {
		data.walletKeys[entry.IdempotencyKey] = true
	}

	userID, id, key := entry.UserID, entry.ID, entry.IdempotencyKey
	delta := entry.BalanceAfter.Sub(previous)
	r.undo.record(func(data *state) {
		data.wallet[userID] = removeWalletEntry(data.wallet[userID], id, delta)
		if key != "" {
			delete(data.walletKeys, key)
		}
	})

	return nil
}

func (r *walletRepository) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := r.store.data.wallet[userID]
	if len(entries) == 0 {
		return decimal.Zero, nil
	}

	return entries[len(entries)-1].BalanceAfter, nil
}

func (r *walletRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored := r.store.data.wallet[userID]
	entries := make([]*entity.WalletTransaction, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		entries = append(entries, cloneWalletTx(stored[i]))
	}

	return paginate(entries, limit, offset), nil
}

func (r *walletRepository) ListAllByUser(ctx context.Context, userID uuid.UUID) ([]*entity.WalletTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored := r.store.data.wallet[userID]
	entries := make([]*entity.WalletTransaction, len(stored))
	for i, entry := range stored {
		entries[i] = cloneWalletTx(entry)
	}

	return entries, nil
}

// removeWalletEntry drops one entry and takes its delta out of every later snapshot.
func removeWalletEntry(entries []*entity.WalletTransaction, id uuid.UUID, delta decimal.Decimal) []*entity.WalletTransaction {
	for i, entry := range entries {
		if entry.ID != id {
			continue
		}
		for _, later := range entries[i+1:] {
			later.BalanceAfter = later.BalanceAfter.Sub(delta)
		}

		return append(entries[:i:i], entries[i+1:]...)
	}

	return entries
}
