package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockFixture struct {
	store       *Store
	inventory   repository.InventoryRepository
	productID   uuid.UUID
	warehouseID uuid.UUID
}

func newStockFixture(t *testing.T, quantity int) stockFixture {
	t.Helper()

	ctx := context.Background()
	store := NewStore()
	product := &entity.Product{SKU: "SKU-1", Name: "Protein", Price: decimal.NewFromInt(10), IsActive: true}
	require.NoError(t, NewProductRepository(store).Create(ctx, product))
	warehouse := &entity.Warehouse{Code: "CEN", Name: "Central", IsCentral: true, IsActive: true}
	require.NoError(t, NewWarehouseRepository(store).Create(ctx, warehouse))

	inventory := NewInventoryRepository(store)
	_, err := inventory.AddStock(ctx, product.ID, warehouse.ID, quantity)
	require.NoError(t, err)

	return stockFixture{store: store, inventory: inventory, productID: product.ID, warehouseID: warehouse.ID}
}

func (f stockFixture) item(t *testing.T) *entity.InventoryItem {
	t.Helper()

	item, err := f.inventory.FindItem(context.Background(), f.productID, f.warehouseID)
	require.NoError(t, err)

	return item
}

func TestInventory_ConcurrentReserveNeverOversells(t *testing.T) {
	f := newStockFixture(t, 10)

	var (
		wg      sync.WaitGroup
		success atomic.Int32
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.inventory.Reserve(context.Background(), f.productID, f.warehouseID, 1); err == nil {
				success.Add(1)
			} else {
				assert.ErrorIs(t, err, repository.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	item := f.item(t)
	assert.Equal(t, int32(10), success.Load())
	assert.Equal(t, 0, item.Quantity)
	assert.Equal(t, 10, item.ReservedQuantity)
}

func TestInventory_ReserveReleaseRestoresCounts(t *testing.T) {
	f := newStockFixture(t, 10)
	ctx := context.Background()

	require.NoError(t, f.inventory.Reserve(ctx, f.productID, f.warehouseID, 4))
	require.NoError(t, f.inventory.Release(ctx, f.productID, f.warehouseID, 4))

	item := f.item(t)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, 0, item.ReservedQuantity)
}

func TestInventory_ReserveConfirmConsumesStock(t *testing.T) {
	f := newStockFixture(t, 10)
	ctx := context.Background()

	require.NoError(t, f.inventory.Reserve(ctx, f.productID, f.warehouseID, 3))
	require.NoError(t, f.inventory.Confirm(ctx, f.productID, f.warehouseID, 3))

	item := f.item(t)
	assert.Equal(t, 7, item.Quantity)
	assert.Equal(t, 0, item.ReservedQuantity)
}

func TestInventory_Guards(t *testing.T) {
	f := newStockFixture(t, 2)
	ctx := context.Background()

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name:    "reserve more than available",
			run:     func() error { return f.inventory.Reserve(ctx, f.productID, f.warehouseID, 3) },
			wantErr: repository.ErrInsufficientStock,
		},
		{
			name:    "confirm without reservation",
			run:     func() error { return f.inventory.Confirm(ctx, f.productID, f.warehouseID, 1) },
			wantErr: repository.ErrInsufficientReservation,
		},
		{
			name:    "release without reservation",
			run:     func() error { return f.inventory.Release(ctx, f.productID, f.warehouseID, 1) },
			wantErr: repository.ErrInsufficientReservation,
		},
		{
			name:    "non-positive quantity",
			run:     func() error { return f.inventory.Reserve(ctx, f.productID, f.warehouseID, 0) },
			wantErr: repository.ErrInvalidQuantity,
		},
		{
			name:    "unknown pair",
			run:     func() error { return f.inventory.Reserve(ctx, uuid.New(), f.warehouseID, 1) },
			wantErr: repository.ErrInventoryItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.wantErr)
		})
	}

	item := f.item(t)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 0, item.ReservedQuantity)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	f := newStockFixture(t, 5)
	ctx := context.Background()
	tm := NewTransactionManager(f.store)
	orderID := uuid.New()

	err := tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		order := &entity.Order{ID: orderID, OrderNumber: "ORD-1", PaymentStatus: entity.OrderStatusPending}
		if err := repos.NewOrderRepository().Create(ctx, order); err != nil {
			return err
		}
		if err := repos.NewInventoryRepository().Reserve(ctx, f.productID, f.warehouseID, 2); err != nil {
			return err
		}

		return repos.NewInventoryRepository().Reserve(ctx, f.productID, f.warehouseID, 10)
	})
	require.ErrorIs(t, err, repository.ErrInsufficientStock)

	_, err = NewOrderRepository(f.store).FindByID(ctx, orderID)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)

	item := f.item(t)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, 0, item.ReservedQuantity)
}

func TestTransactionManager_RollbackKeepsConcurrentWrites(t *testing.T) {
	f := newStockFixture(t, 10)
	ctx := context.Background()
	tm := NewTransactionManager(f.store)
	profiles := NewProfileRepository(f.store)
	wallet := NewWalletRepository(f.store)

	userID := uuid.New()
	require.NoError(t, profiles.Create(ctx, &entity.Profile{ID: userID, ReferralCode: "OUT", Rank: entity.RankBronze, IsActive: true}))
	require.NoError(t, f.inventory.Reserve(ctx, f.productID, f.warehouseID, 2))

	err := tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		if err := repos.NewInventoryRepository().Reserve(ctx, f.productID, f.warehouseID, 3); err != nil {
			return err
		}
		if err := repos.NewProfileRepository().UpdateRank(ctx, userID, entity.RankGold); err != nil {
			return err
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, profiles.CreditPoints(ctx, userID, 10))
			assert.NoError(t, f.inventory.Release(ctx, f.productID, f.warehouseID, 2))
			assert.NoError(t, wallet.Append(ctx, &entity.WalletTransaction{
				UserID: userID, Type: entity.WalletBonus, Amount: decimal.NewFromInt(5), Status: entity.WalletStatusCompleted,
			}))
		}()
		wg.Wait()

		return errors.New("payment gateway timeout")
	})
	require.EqualError(t, err, "payment gateway timeout")

	item := f.item(t)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, 0, item.ReservedQuantity)

	profile, err := profiles.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), profile.CurrentPoints)
	assert.Equal(t, int64(10), profile.LifetimePoints)
	assert.Equal(t, entity.RankBronze, profile.Rank)

	balance, err := wallet.Balance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(balance), balance.String())
}

func TestTransactionManager_RollbackRebasesLaterWalletEntries(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	tm := NewTransactionManager(store)
	wallet := NewWalletRepository(store)
	userID := uuid.New()
	require.NoError(t, NewProfileRepository(store).Create(ctx, &entity.Profile{ID: userID, ReferralCode: "REB", Rank: entity.RankBronze, IsActive: true}))

	err := tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		if err := repos.NewWalletRepository().Append(ctx, &entity.WalletTransaction{
			UserID: userID, Type: entity.WalletCommission, Amount: decimal.NewFromInt(10), Status: entity.WalletStatusCompleted, IdempotencyKey: "commission:1",
		}); err != nil {
			return err
		}
		// Appended outside the transaction on top of the uncommitted entry.
		if err := wallet.Append(ctx, &entity.WalletTransaction{
			UserID: userID, Type: entity.WalletBonus, Amount: decimal.NewFromInt(5), Status: entity.WalletStatusCompleted,
		}); err != nil {
			return err
		}

		return errors.New("abort")
	})
	require.Error(t, err)

	all, err := wallet.ListAllByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, decimal.NewFromInt(5).Equal(all[0].BalanceAfter), all[0].BalanceAfter.String())
	assert.True(t, entity.ReplayBalance(all).Equal(all[0].BalanceAfter))

	// The rolled back idempotency key is free again.
	require.NoError(t, wallet.Append(ctx, &entity.WalletTransaction{
		UserID: userID, Type: entity.WalletCommission, Amount: decimal.NewFromInt(10), Status: entity.WalletStatusCompleted, IdempotencyKey: "commission:1",
	}))
}

func TestTransactionManager_RollbackRevertsOrderWrites(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	tm := NewTransactionManager(store)
	orders := NewOrderRepository(store)
	profiles := NewProfileRepository(store)

	sponsorID, userID := uuid.New(), uuid.New()
	require.NoError(t, profiles.Create(ctx, &entity.Profile{ID: sponsorID, ReferralCode: "SPN", Rank: entity.RankBronze, IsActive: true}))
	require.NoError(t, profiles.Create(ctx, &entity.Profile{ID: userID, ReferralCode: "USR", Rank: entity.RankBronze, IsActive: true}))
	order := &entity.Order{ID: uuid.New(), OrderNumber: "ORD-9", PaymentStatus: entity.OrderStatusPending}
	require.NoError(t, orders.Create(ctx, order))

	err := tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		notes := "duplicate"
		if err := repos.NewOrderRepository().TransitionStatus(ctx, order.ID, entity.OrderStatusPending, entity.OrderStatusRejected, &notes); err != nil {
			return err
		}
		if err := repos.NewProfileRepository().SetSponsor(ctx, userID, &sponsorID); err != nil {
			return err
		}

		return errors.New("abort")
	})
	require.Error(t, err)

	found, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, found.PaymentStatus)
	assert.Nil(t, found.AdminNotes)

	link, err := profiles.FindSponsorLink(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, link.SponsorID)
}

func TestTransactionManager_Commits(t *testing.T) {
	f := newStockFixture(t, 5)
	ctx := context.Background()
	tm := NewTransactionManager(f.store)

	err := tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		return repos.NewInventoryRepository().Reserve(ctx, f.productID, f.warehouseID, 2)
	})
	require.NoError(t, err)

	item := f.item(t)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, 2, item.ReservedQuantity)
}

func TestOrderRepository_TransitionStatusIsConditional(t *testing.T) {
	store := NewStore()
	repo := NewOrderRepository(store)
	ctx := context.Background()
	order := &entity.Order{ID: uuid.New(), OrderNumber: "ORD-2", PaymentStatus: entity.OrderStatusPending}
	require.NoError(t, repo.Create(ctx, order))

	notes := "blurry proof"
	require.NoError(t, repo.TransitionStatus(ctx, order.ID, entity.OrderStatusPending, entity.OrderStatusRejected, &notes))

	err := repo.TransitionStatus(ctx, order.ID, entity.OrderStatusPending, entity.OrderStatusApproved, nil)
	assert.ErrorIs(t, err, repository.ErrOrderStatusChanged)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusRejected, found.PaymentStatus)
	require.NotNil(t, found.AdminNotes)
	assert.Equal(t, notes, *found.AdminNotes)
}

func TestWalletRepository_AppendSnapshotsBalance(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, NewProfileRepository(store).Create(ctx, &entity.Profile{ID: userID, ReferralCode: "ABC", Rank: entity.RankBronze, IsActive: true}))
	wallet := NewWalletRepository(store)

	entries := []*entity.WalletTransaction{
		{UserID: userID, Type: entity.WalletCommission, Amount: decimal.RequireFromString("10.50"), Status: entity.WalletStatusCompleted},
		{UserID: userID, Type: entity.WalletBonus, Amount: decimal.RequireFromString("99"), Status: entity.WalletStatusPending},
		{UserID: userID, Type: entity.WalletAdjustment, Amount: decimal.RequireFromString("-0.50"), Status: entity.WalletStatusCompleted, IdempotencyKey: "adj-1"},
	}
	for _, entry := range entries {
		require.NoError(t, wallet.Append(ctx, entry))
	}

	assert.True(t, decimal.RequireFromString("10.50").Equal(entries[0].BalanceAfter))
	assert.True(t, decimal.RequireFromString("10.50").Equal(entries[1].BalanceAfter))
	assert.True(t, decimal.RequireFromString("10").Equal(entries[2].BalanceAfter))

	err := wallet.Append(ctx, &entity.WalletTransaction{UserID: userID, Type: entity.WalletAdjustment, Amount: decimal.NewFromInt(1), Status: entity.WalletStatusCompleted, IdempotencyKey: "adj-1"})
	assert.True(t, errors.Is(err, repository.ErrDuplicateWalletEntry))

	all, err := wallet.ListAllByUser(ctx, userID)
	require.NoError(t, err)
	balance, err := wallet.Balance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, entity.ReplayBalance(all).Equal(balance))

	history, err := wallet.ListByUser(ctx, userID, 2, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entries[2].ID, history[0].ID)
}

func TestWalletRepository_ConcurrentAppendsReplayToBalance(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, NewProfileRepository(store).Create(ctx, &entity.Profile{ID: userID, ReferralCode: "CON", Rank: entity.RankBronze, IsActive: true}))
	wallet := NewWalletRepository(store)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := entity.WalletStatusCompleted
			if i%5 == 0 {
				status = entity.WalletStatusPending
			}
			assert.NoError(t, wallet.Append(ctx, &entity.WalletTransaction{
				UserID: userID, Type: entity.WalletCommission, Amount: decimal.RequireFromString("1.25"), Status: status,
			}))
		}()
	}
	wg.Wait()

	all, err := wallet.ListAllByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 50)

	running := decimal.Zero
	for i, entry := range all {
		running = entry.NextBalance(running)
		assert.True(t, running.Equal(entry.BalanceAfter), "entry %d", i)
		if i > 0 {
			assert.False(t, entry.CreatedAt.Before(all[i-1].CreatedAt), "entry %d is older than its predecessor", i)
		}
	}

	balance, err := wallet.Balance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("50").Equal(balance), balance.String())
}

func TestGenealogyRepository_RebuildSubtree(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	profiles := NewProfileRepository(store)
	genealogy := NewGenealogyRepository(store)

	root, mid, leaf := uuid.New(), uuid.New(), uuid.New()
	for i, id := range []uuid.UUID{root, mid, leaf} {
		require.NoError(t, profiles.Create(ctx, &entity.Profile{ID: id, ReferralCode: "CODE" + string(rune('A'+i)), Rank: entity.RankBronze, IsActive: true}))
	}
	require.NoError(t, profiles.SetSponsor(ctx, leaf, &mid))
	require.NoError(t, profiles.SetSponsor(ctx, mid, &root))

	require.NoError(t, genealogy.RebuildSubtree(ctx, mid, 20))

	ancestors, err := genealogy.Ancestors(ctx, leaf, 0)
	require.NoError(t, err)
	assert.Equal(t, []entity.GenealogyEntry{
		{UserID: leaf, AncestorID: mid, Level: 1},
		{UserID: leaf, AncestorID: root, Level: 2},
	}, ancestors)

	descendants, err := genealogy.Descendants(ctx, root, 1)
	require.NoError(t, err)
	assert.Equal(t, []entity.GenealogyEntry{{UserID: mid, AncestorID: root, Level: 1}}, descendants)

	require.NoError(t, genealogy.RebuildSubtree(ctx, leaf, 1))
	ancestors, err = genealogy.Ancestors(ctx, leaf, 0)
	require.NoError(t, err)
	assert.Len(t, ancestors, 1)
}
