package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/repository"
	"mlm/internal/errors"

	"github.com/google/uuid"
)

type inventoryRepository struct {
	store *Store
	undo  *undoLog
}

// NewInventoryRepository creates an InventoryRepository backed by the store.
func NewInventoryRepository(store *Store) repository.InventoryRepository {
	return &inventoryRepository{store: store}
}

func (r *inventoryRepository) FindItem(ctx context.Context, productID, warehouseID uuid.UUID) (*entity.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.data.inventory[inventoryKey{productID: productID, warehouseID: warehouseID}]
	if !ok {
		return nil, repository.ErrInventoryItemNotFound
	}
	found := *item

	return &found, nil
}

func (r *inventoryRepository) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*entity.InventoryItem, error) {
	return r.list(ctx, func(item *entity.InventoryItem) bool {
		return item.WarehouseID == warehouseID
	})
}

func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]*entity.InventoryItem, error) {
	return r.list(ctx, func(item *entity.InventoryItem) bool {
		return item.NeedsReorder()
	})
}

func (r *inventoryRepository) list(ctx context.Context, keep func(*entity.InventoryItem) bool) ([]*entity.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	items := make([]*entity.InventoryItem, 0)
	for _, item := range r.store.data.inventory {
		if keep(item) {
			v := *item
			items = append(items, &v)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].WarehouseID != items[j].WarehouseID {
			return strings.Compare(items[i].WarehouseID.String(), items[j].WarehouseID.String()) < 0
		}

		return strings.Compare(items[i].ProductID.String(), items[j].ProductID.String()) < 0
	})

	return items, nil
}

func (r *inventoryRepository) AddStock(ctx context.Context, productID, warehouseID uuid.UUID, qty int) (*entity.InventoryItem, error) {
	if qty <= 0 {
		return nil, repository.ErrInvalidQuantity
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.data.warehouses[warehouseID]; !ok {
		return nil, repository.ErrWarehouseNotFound
	}
	if _, ok := r.store.data.products[productID]; !ok {
		return nil, repository.ErrProductNotFound
	}

	key := inventoryKey{productID: productID, warehouseID: warehouseID}
	item, existed := r.store.data.inventory[key]
	if !existed {
		item = &entity.InventoryItem{ProductID: productID, WarehouseID: warehouseID}
		r.store.data.inventory[key] = item
	}
	item.Quantity += qty
	r.undo.record(func(data *state) {
		item, ok := data.inventory[key]
		if !ok {
			return
		}
		item.Quantity -= qty
		if !existed && item.Quantity == 0 && item.ReservedQuantity == 0 {
			delete(data.inventory, key)
		}
	})
	item.UpdatedAt = time.Now()
	updated := *item

	return &updated, nil
}

func (r *inventoryRepository) Reserve(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error {
	return r.apply(ctx, productID, warehouseID, qty, func(item *entity.InventoryItem) error {
		if item.Quantity < qty {
			return repository.ErrInsufficientStock
		}
		item.Quantity -= qty
		item.ReservedQuantity += qty

		return nil
	}, func(item *entity.InventoryItem) {
		item.Quantity += qty
		item.ReservedQuantity -= qty
	})
}

func (r *inventoryRepository) Confirm(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error {
	return r.apply(ctx, productID, warehouseID, qty, func(item *entity.InventoryItem) error {
		if item.ReservedQuantity < qty {
			return repository.ErrInsufficientReservation
		}
		item.ReservedQuantity -= qty

		return nil
	}, func(item *entity.InventoryItem) {
		item.ReservedQuantity += qty
	})
}

func (r *inventoryRepository) Release(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error {
	return r.apply(ctx, productID, warehouseID, qty, func(item *entity.InventoryItem) error {
		if item.ReservedQuantity < qty {
			return repository.ErrInsufficientReservation
		}
		item.ReservedQuantity -= qty
		item.Quantity += qty

		return nil
	}, func(item *entity.InventoryItem) {
		item.Quantity -= qty
		item.ReservedQuantity += qty
	})
}

// apply runs one guarded mutation under the write lock, like a conditional UPDATE.
// revert is the relative inverse, recorded when the call runs inside a transaction.
func (r *inventoryRepository) apply(ctx context.Context, productID, warehouseID uuid.UUID, qty int, mutate func(*entity.InventoryItem) error, revert func(*entity.InventoryItem)) error {
	if qty <= 0 {
		return repository.ErrInvalidQuantity
	}
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := inventoryKey{productID: productID, warehouseID: warehouseID}
	item, ok := r.store.data.inventory[key]
	if !ok {
		return repository.ErrInventoryItemNotFound
	}
	if err := mutate(item); err != nil {
		return err
	}
	item.UpdatedAt = time.Now()
	r.undo.record(func(data *state) {
		if item, ok := data.inventory[key]; ok {
			revert(item)
		}
	})

	return nil
}

type warehouseRepository struct {
	store *Store
}

// NewWarehouseRepository creates a WarehouseRepository backed by the store.
func NewWarehouseRepository(store *Store) repository.WarehouseRepository {
	return &warehouseRepository{store: store}
}

func (r *warehouseRepository) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.data.warehouses {
		if existing.Code == warehouse.Code {
			return repository.ErrDuplicateWarehouseCode
		}
	}
	if warehouse.ID == uuid.Nil {
		warehouse.ID = uuid.New()
	}
	if warehouse.CreatedAt.IsZero() {
		warehouse.CreatedAt = time.Now()
	}
	stored := *warehouse
	r.store.data.warehouses[warehouse.ID] = &stored
	r.store.data.whSeq = append(r.store.data.whSeq, warehouse.ID)

	return nil
}

func (r *warehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Warehouse, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	warehouse, ok := r.store.data.warehouses[id]
	if !ok {
		return nil, repository.ErrWarehouseNotFound
	}
	found := *warehouse

	return &found, nil
}

func (r *warehouseRepository) FindCentral(ctx context.Context) (*entity.Warehouse, error) {
	warehouses, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, warehouse := range warehouses {
		if warehouse.IsCentral && warehouse.IsActive {
			return warehouse, nil
		}
	}

	return nil, repository.ErrWarehouseNotFound
}

// List returns warehouses in creation order.
func (r *warehouseRepository) List(ctx context.Context) ([]*entity.Warehouse, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	warehouses := make([]*entity.Warehouse, 0, len(r.store.data.whSeq))
	for _, id := range r.store.data.whSeq {
		if warehouse, ok := r.store.data.warehouses[id]; ok {
			v := *warehouse
			warehouses = append(warehouses, &v)
		}
	}

	return warehouses, nil
}
