// Package memory is an in-process implementation of every repository, used for
// local development and tests. All state lives in flat maps keyed by id, guarded
// by one mutex, so each repository call is atomic on its own.
package memory

import (
	"context"
	"sync"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/repository"

	"github.com/google/uuid"
)

type inventoryKey struct {
	productID   uuid.UUID
	warehouseID uuid.UUID
}

type state struct {
	orders     map[uuid.UUID]*entity.Order
	orderSeq   []uuid.UUID
	audit      map[uuid.UUID][]*entity.OrderAuditEntry
	products   map[uuid.UUID]*entity.Product
	warehouses map[uuid.UUID]*entity.Warehouse
	whSeq      []uuid.UUID
	inventory  map[inventoryKey]*entity.InventoryItem
	profiles   map[uuid.UUID]*entity.Profile
	genealogy  map[uuid.UUID][]entity.GenealogyEntry
	wallet     map[uuid.UUID][]*entity.WalletTransaction
	walletKeys map[string]bool
}

func newState() *state {
	return &state{
		orders:     make(map[uuid.UUID]*entity.Order),
		audit:      make(map[uuid.UUID][]*entity.OrderAuditEntry),
		products:   make(map[uuid.UUID]*entity.Product),
		warehouses: make(map[uuid.UUID]*entity.Warehouse),
		inventory:  make(map[inventoryKey]*entity.InventoryItem),
		profiles:   make(map[uuid.UUID]*entity.Profile),
		genealogy:  make(map[uuid.UUID][]entity.GenealogyEntry),
		wallet:     make(map[uuid.UUID][]*entity.WalletTransaction),
		walletKeys: make(map[string]bool),
	}
}

// undoLog collects the inverse of every write made through a transaction's
// repositories. Entries run newest first under the store lock, so a rollback
// only reverts this transaction's writes and leaves concurrent writes intact.
type undoLog struct {
	entries []func(*state)
}

// record is called with the store lock held. A nil log records nothing.
func (l *undoLog) record(undo func(*state)) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, undo)
}

func (l *undoLog) rollback(data *state) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		l.entries[i](data)
	}
	l.entries = nil
}

// Store owns the shared state and hands out repositories bound to it.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

// NewTransactionManager returns a TransactionManager over the store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// transactionManager serializes transactions and undoes a failed one's writes.
// Single repository calls made outside Execute are still atomic on their own.
type transactionManager struct {
	store *Store
}

type repositoryFactory struct {
	store *Store
	undo  *undoLog
}

func (f *repositoryFactory) NewOrderRepository() repository.OrderRepository {
	return &orderRepository{store: f.store, undo: f.undo}
}

func (f *repositoryFactory) NewInventoryRepository() repository.InventoryRepository {
	return &inventoryRepository{store: f.store, undo: f.undo}
}

func (f *repositoryFactory) NewProfileRepository() repository.ProfileRepository {
	return &profileRepository{store: f.store, undo: f.undo}
}

func (f *repositoryFactory) NewWalletRepository() repository.WalletRepository {
	return &walletRepository{store: f.store, undo: f.undo}
}

// Execute runs fn and reverts its writes if fn returns an error or panics.
func (tm *transactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	undo := &undoLog{}
	rollback := func() {
		tm.store.mu.Lock()
		undo.rollback(tm.store.data)
		tm.store.mu.Unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()

	if err := fn(&repositoryFactory{store: tm.store, undo: undo}); err != nil {
		rollback()

		return err
	}

	return nil
}

func cloneOrder(o *entity.Order) *entity.Order {
	v := *o
	v.Items = append([]entity.OrderItem(nil), o.Items...)
	if o.UserID != nil {
		id := *o.UserID
		v.UserID = &id
	}
	if o.AffiliateID != nil {
		id := *o.AffiliateID
		v.AffiliateID = &id
	}
	if o.AdminNotes != nil {
		notes := *o.AdminNotes
		v.AdminNotes = &notes
	}

	return &v
}

func cloneProfile(p *entity.Profile) *entity.Profile {
	v := *p
	if p.SponsorID != nil {
		id := *p.SponsorID
		v.SponsorID = &id
	}

	return &v
}

func cloneWalletTx(t *entity.WalletTransaction) *entity.WalletTransaction {
	v := *t
	if t.RelatedOrderID != nil {
		id := *t.RelatedOrderID
		v.RelatedOrderID = &id
	}
	if t.RelatedUserID != nil {
		id := *t.RelatedUserID
		v.RelatedUserID = &id
	}
	if t.CommissionLevel != nil {
		level := *t.CommissionLevel
		v.CommissionLevel = &level
	}

	return &v
}
