package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfileModel mirrors the 'profiles' table. ID is the user id issued by the identity provider.
type ProfileModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name           string     `gorm:"type:varchar(100)"`
	ReferralCode   string     `gorm:"type:varchar(32);not null;uniqueIndex"`
	SponsorID      *uuid.UUID `gorm:"type:uuid;index"`
	Rank           string     `gorm:"type:varchar(16);not null;default:'BRONZE'"`
	CurrentPoints  int64      `gorm:"not null;default:0"`
	LifetimePoints int64      `gorm:"not null;default:0"`
	IsActive       bool       `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProfileModel) TableName() string {
	return "profiles"
}

// GenealogyModel mirrors the 'genealogy' table, the denormalized ancestor index.
type GenealogyModel struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	AncestorID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Level      int       `gorm:"not null;check:genealogy_level_positive,level > 0"`
}

// TableName explicitly sets the table name for GORM.
func (GenealogyModel) TableName() string {
	return "genealogy"
}

// WalletTransactionModel mirrors the 'wallet_transactions' table. Rows are insert-only
// and ordered per user by Seq, which the database assigns inside the append lock.
type WalletTransactionModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	Seq             int64           `gorm:"autoIncrement;not null;uniqueIndex;index:idx_wallet_user_seq,priority:2"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_wallet_user_seq,priority:1"`
	Type            string          `gorm:"type:varchar(16);not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	BalanceAfter    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	RelatedOrderID  *uuid.UUID      `gorm:"type:uuid;index"`
	RelatedUserID   *uuid.UUID      `gorm:"type:uuid"`
	CommissionLevel *int
	Description     string    `gorm:"type:text"`
	Status          string    `gorm:"type:varchar(16);not null"`
	IdempotencyKey  *string   `gorm:"type:varchar(128);uniqueIndex"`
	CreatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (WalletTransactionModel) TableName() string {
	return "wallet_transactions"
}

// All lists every model for schema migration.
func All() []any {
	return []any{
		&WarehouseModel{},
		&ProductModel{},
		&InventoryItemModel{},
		&ProfileModel{},
		&GenealogyModel{},
		&OrderModel{},
		&OrderItemModel{},
		&OrderAuditEntryModel{},
		&WalletTransactionModel{},
	}
}
