package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WarehouseModel mirrors the 'warehouses' table.
type WarehouseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Code      string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(120);not null"`
	IsCentral bool      `gorm:"not null;default:false"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// InventoryItemModel mirrors the 'inventory_items' table. Both counts are
// guarded by CHECK constraints in addition to the conditional updates.
type InventoryItemModel struct {
	ProductID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	WarehouseID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity         int       `gorm:"not null;default:0;check:inventory_quantity_non_negative,quantity >= 0"`
	ReservedQuantity int       `gorm:"not null;default:0;check:inventory_reserved_non_negative,reserved_quantity >= 0"`
	MinStockLevel    int       `gorm:"not null;default:0"`
	ReorderPoint     int       `gorm:"not null;default:0"`
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ProductModel mirrors the 'products' table.
type ProductModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	SKU       string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Price     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Points    int64           `gorm:"not null;default:0"`
	IsPack    bool            `gorm:"not null;default:false"`
	PackRank  string          `gorm:"type:varchar(64)"`
	ImageURL  string          `gorm:"type:text"`
	IsActive  bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
