package repository

import (
	"context"

	"mlm/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for inventory persistence.
var (
	// ErrInventoryItemNotFound is returned when no row exists for a (product, warehouse) pair.
	ErrInventoryItemNotFound = errors.New("inventory item not found")
	// ErrInsufficientStock is returned when a reservation asks for more than is available.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInsufficientReservation is returned when confirm or release asks for more than is reserved.
	ErrInsufficientReservation = errors.New("insufficient reserved quantity")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrWarehouseNotFound is returned when a warehouse lookup matches nothing.
	ErrWarehouseNotFound = errors.New("warehouse not found")
	// ErrDuplicateWarehouseCode is returned when a warehouse code is reused.
	ErrDuplicateWarehouseCode = errors.New("warehouse code already exists")
)

// InventoryRepository is the inventory ledger. Every mutation is one atomic
// conditional update against a single (product, warehouse) row.
type InventoryRepository interface {
	// FindItem retrieves the counts for a (product, warehouse) pair.
	FindItem(ctx context.Context, productID, warehouseID uuid.UUID) (*entity.InventoryItem, error)

	// ListByWarehouse returns every item stocked in a warehouse.
	ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*entity.InventoryItem, error)

	// ListLowStock returns items whose available quantity reached their reorder point.
	ListLowStock(ctx context.Context) ([]*entity.InventoryItem, error)

	// AddStock increases available quantity, creating the row on first addition.
	AddStock(ctx context.Context, productID, warehouseID uuid.UUID, qty int) (*entity.InventoryItem, error)

	// Reserve moves qty units from quantity to reserved_quantity when quantity >= qty.
	Reserve(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error

	// Confirm makes a reservation permanent by decrementing reserved_quantity when reserved_quantity >= qty.
	Confirm(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error

	// Release returns qty reserved units to quantity when reserved_quantity >= qty.
	Release(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error
}

// WarehouseRepository defines the interface for warehouse-related database operations.
type WarehouseRepository interface {
	// Create persists a new warehouse.
	Create(ctx context.Context, warehouse *entity.Warehouse) error

	// FindByID retrieves a warehouse by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Warehouse, error)

	// FindCentral returns the first active central warehouse by creation order.
	FindCentral(ctx context.Context) (*entity.Warehouse, error)

	// List returns all warehouses.
	List(ctx context.Context) ([]*entity.Warehouse, error)
}
