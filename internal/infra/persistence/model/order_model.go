package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel mirrors the 'orders' table.
type OrderModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderNumber       string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	UserID            *uuid.UUID      `gorm:"type:uuid;index"`
	AffiliateID       *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	DiscountAmount    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	ShippingCost      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	PointsEarned      int64           `gorm:"not null;default:0"`
	WarehouseID       uuid.UUID       `gorm:"type:uuid;not null"`
	FulfillmentStatus string          `gorm:"type:varchar(20);not null;default:'unfulfilled'"`
	PaymentStatus     string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentProofURL   string          `gorm:"type:text;not null"`
	ShippingAddress   string          `gorm:"type:text"`
	AdminNotes        *string         `gorm:"type:text"`
	CreatedAt         time.Time       `gorm:"index"`
	UpdatedAt         time.Time

	Items []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel mirrors the 'order_items' table.
type OrderItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity      int             `gorm:"not null;check:order_items_quantity_positive,quantity > 0"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PointsPerUnit int64           `gorm:"not null;default:0"`
}

// TableName explicitly sets the table name for GORM.
func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderAuditEntryModel mirrors the 'order_audit_entries' table.
type OrderAuditEntryModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Action    string    `gorm:"type:varchar(16);not null"`
	Step      string    `gorm:"type:varchar(64);not null"`
	Essential bool      `gorm:"not null"`
	Outcome   string    `gorm:"type:varchar(16);not null"`
	Detail    string    `gorm:"type:text"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrderAuditEntryModel) TableName() string {
	return "order_audit_entries"
}
