package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Warehouse is a stock location. Checkout fulfils from the first active central one.
type Warehouse struct {
	ID        uuid.UUID
	Code      string
	Name      string
	IsCentral bool
	IsActive  bool
	CreatedAt time.Time
}

// InventoryItem holds the counts for one (product, warehouse) pair.
// Quantity is what is still available; reserved units were already carved out of it.
type InventoryItem struct {
	ProductID        uuid.UUID
	WarehouseID      uuid.UUID
	Quantity         int
	ReservedQuantity int
	MinStockLevel    int
	ReorderPoint     int
	UpdatedAt        time.Time
}

// CanReserve reports whether qty units are available.
func (i *InventoryItem) CanReserve(qty int) bool {
	return qty > 0 && i.Quantity >= qty
}

// NeedsReorder reports whether available stock reached the reorder point.
func (i *InventoryItem) NeedsReorder() bool {
	return i.Quantity <= i.ReorderPoint
}

// Product is a catalog entry. Pack products carry the rank they grant.
type Product struct {
	ID        uuid.UUID
	SKU       string
	Name      string
	Price     decimal.Decimal
	Points    int64
	IsPack    bool
	PackRank  string
	ImageURL  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TargetRank parses the configured pack rank. Non-pack products grant nothing.
func (p *Product) TargetRank() (Rank, bool, error) {
	if !p.IsPack || p.PackRank == "" {
		return 0, false, nil
	}

	rank, err := ParseRank(p.PackRank)
	if err != nil {
		return 0, false, err
	}

	return rank, true, nil
}
