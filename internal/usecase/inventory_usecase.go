package usecase

import (
	"context"

	"mlm/internal/domain/entity"

	"github.com/google/uuid"
)

// StockInput adds units to a (product, warehouse) pair.
type StockInput struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
}

// InventoryUsecase exposes the inventory ledger.
type InventoryUsecase interface {
	// Reserve holds qty units for a pending order.
	Reserve(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error

	// Confirm turns a reservation into a permanent deduction.
	Confirm(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error

	// Release returns reserved units to the available pool.
	Release(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error

	// AddStock receives new units. Admin only.
	AddStock(ctx context.Context, actor entity.Actor, input *StockInput) (*entity.InventoryItem, error)

	// GetStock lists the items of a warehouse. Admin only.
	GetStock(ctx context.Context, actor entity.Actor, warehouseID uuid.UUID) ([]*entity.InventoryItem, error)

	// ListLowStock lists items at or below their reorder point. Admin only.
	ListLowStock(ctx context.Context, actor entity.Actor) ([]*entity.InventoryItem, error)
}
