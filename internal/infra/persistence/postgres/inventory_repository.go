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

// inventoryRepository implements repository.InventoryRepository. Every mutation is
// a single conditional UPDATE so the counts cannot go negative under concurrency.
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository is the constructor for inventoryRepository.
func NewInventoryRepository(db *gorm.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (repo *inventoryRepository) FindItem(ctx context.Context, productID, warehouseID uuid.UUID) (*entity.InventoryItem, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var itemM model.InventoryItemModel
	err := repo.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&itemM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrInventoryItemNotFound
		}

		return nil, errors.Wrap(err, "failed to find inventory item")
	}

	return toInventoryItemDomain(&itemM), nil
}

func (repo *inventoryRepository) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*entity.InventoryItem, error) {
	return repo.list(ctx, repo.db.Where("warehouse_id = ?", warehouseID))
}

func (repo *inventoryRepository) ListLowStock(ctx context.Context) ([]*entity.InventoryItem, error) {
	return repo.list(ctx, repo.db.Where("quantity <= reorder_point"))
}

func (repo *inventoryRepository) list(ctx context.Context, scope *gorm.DB) ([]*entity.InventoryItem, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var itemMs []*model.InventoryItemModel
	if err := scope.WithContext(ctx).Order("warehouse_id, product_id").Find(&itemMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list inventory items")
	}

	items := make([]*entity.InventoryItem, len(itemMs))
	for i, itemM := range itemMs {
		items[i] = toInventoryItemDomain(itemM)
	}

	return items, nil
}

// AddStock upserts the row: INSERT ... ON CONFLICT (product_id, warehouse_id) DO UPDATE SET quantity = quantity + qty.
func (repo *inventoryRepository) AddStock(ctx context.Context, productID, warehouseID uuid.UUID, qty int) (*entity.InventoryItem, error) {
	if qty <= 0 {
		return nil, repository.ErrInvalidQuantity
	}

	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	itemM := &model.InventoryItemModel{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		UpdatedAt:   time.Now(),
	}
	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("inventory_items.quantity + ?", qty),
			"updated_at": time.Now(),
		}),
	}).Create(itemM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return nil, repository.ErrWarehouseNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to add stock")
	}

	return repo.FindItem(ctx, productID, warehouseID)
}

// Reserve: UPDATE inventory_items SET quantity = quantity - qty, reserved_quantity = reserved_quantity + qty
// WHERE product_id = ? AND warehouse_id = ? AND quantity >= qty.
func (repo *inventoryRepository) Reserve(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error {
	return repo.conditionalUpdate(ctx, productID, warehouseID, qty,
		"quantity >= ?",
		map[string]any{
			"quantity":          gorm.Expr("quantity - ?", qty),
			"reserved_quantity": gorm.Expr("reserved_quantity + ?", qty),
		},
		repository.ErrInsufficientStock,
	)
}

func (repo *inventoryRepository) Confirm(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error {
	return repo.conditionalUpdate(ctx, productID, warehouseID, qty,
		"reserved_quantity >= ?",
		map[string]any{
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", qty),
		},
		repository.ErrInsufficientReservation,
	)
}

func (repo *inventoryRepository) Release(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error {
	return repo.conditionalUpdate(ctx, productID, warehouseID, qty,
		"reserved_quantity >= ?",
		map[string]any{
			"quantity":          gorm.Expr("quantity + ?", qty),
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", qty),
		},
		repository.ErrInsufficientReservation,
	)
}

func (repo *inventoryRepository) conditionalUpdate(
	ctx context.Context,
	productID, warehouseID uuid.UUID,
	qty int,
	guard string,
	updates map[string]any,
	guardErr error,
) error {
	if qty <= 0 {
		return repository.ErrInvalidQuantity
	}

	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	updates["updated_at"] = time.Now()
	result := repo.db.WithContext(ctx).
		Model(&model.InventoryItemModel{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Where(guard, qty).
		Updates(updates)
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return guardErr
		}

		return errors.Wrap(result.Error, "failed to update inventory item")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.InventoryItemModel{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to check inventory item existence")
	}
	if count == 0 {
		return repository.ErrInventoryItemNotFound
	}

	return guardErr
}

// warehouseRepository implements repository.WarehouseRepository using GORM.
type warehouseRepository struct {
	db *gorm.DB
}

// NewWarehouseRepository is the constructor for warehouseRepository.
func NewWarehouseRepository(db *gorm.DB) repository.WarehouseRepository {
	return &warehouseRepository{db: db}
}

func (repo *warehouseRepository) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	if warehouse.ID == uuid.Nil {
		warehouse.ID = uuid.New()
	}
	warehouseM := &model.WarehouseModel{
		ID:        warehouse.ID,
		Code:      warehouse.Code,
		Name:      warehouse.Name,
		IsCentral: warehouse.IsCentral,
		IsActive:  warehouse.IsActive,
		CreatedAt: warehouse.CreatedAt,
	}
	if err := repo.db.WithContext(ctx).Create(warehouseM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateWarehouseCode
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create warehouse")
	}
	warehouse.CreatedAt = warehouseM.CreatedAt

	return nil
}

func (repo *warehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Warehouse, error) {
	return repo.first(ctx, repo.db.Where("id = ?", id))
}

// FindCentral picks the first active central warehouse by creation order, then id.
func (repo *warehouseRepository) FindCentral(ctx context.Context) (*entity.Warehouse, error) {
	return repo.first(ctx, repo.db.Where("is_central = ? AND is_active = ?", true, true).Order("created_at ASC, id ASC"))
}

func (repo *warehouseRepository) first(ctx context.Context, scope *gorm.DB) (*entity.Warehouse, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var warehouseM model.WarehouseModel
	if err := scope.WithContext(ctx).First(&warehouseM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrWarehouseNotFound
		}

		return nil, errors.Wrap(err, "failed to find warehouse")
	}

	return toWarehouseDomain(&warehouseM), nil
}

func (repo *warehouseRepository) List(ctx context.Context) ([]*entity.Warehouse, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var warehouseMs []*model.WarehouseModel
	if err := repo.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&warehouseMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list warehouses")
	}

	warehouses := make([]*entity.Warehouse, len(warehouseMs))
	for i, warehouseM := range warehouseMs {
		warehouses[i] = toWarehouseDomain(warehouseM)
	}

	return warehouses, nil
}

func toInventoryItemDomain(data *model.InventoryItemModel) *entity.InventoryItem {
	return &entity.InventoryItem{
		ProductID:        data.ProductID,
		WarehouseID:      data.WarehouseID,
		Quantity:         data.Quantity,
		ReservedQuantity: data.ReservedQuantity,
		MinStockLevel:    data.MinStockLevel,
		ReorderPoint:     data.ReorderPoint,
		UpdatedAt:        data.UpdatedAt,
	}
}

func toWarehouseDomain(data *model.WarehouseModel) *entity.Warehouse {
	return &entity.Warehouse{
		ID:        data.ID,
		Code:      data.Code,
		Name:      data.Name,
		IsCentral: data.IsCentral,
		IsActive:  data.IsActive,
		CreatedAt: data.CreatedAt,
	}
}
