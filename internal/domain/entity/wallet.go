package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletTransactionType classifies a wallet ledger entry.
type WalletTransactionType string

const (
	WalletCommission WalletTransactionType = "COMMISSION"
	WalletPurchase   WalletTransactionType = "PURCHASE"
	WalletWithdrawal WalletTransactionType = "WITHDRAWAL"
	WalletAdjustment WalletTransactionType = "ADJUSTMENT"
	WalletBonus      WalletTransactionType = "BONUS"
)

// IsValid checks if the type is one of the declared values.
func (t WalletTransactionType) IsValid() bool {
	switch t {
	case WalletCommission, WalletPurchase, WalletWithdrawal, WalletAdjustment, WalletBonus:
		return true
	default:
		return false
	}
}

// WalletTransactionStatus is the settlement state of an entry.
type WalletTransactionStatus string

const (
	WalletStatusCompleted WalletTransactionStatus = "COMPLETED"
	WalletStatusPending   WalletTransactionStatus = "PENDING"
	WalletStatusCancelled WalletTransactionStatus = "CANCELLED"
)

// IsValid checks if the status is one of the declared values.
func (s WalletTransactionStatus) IsValid() bool {
	switch s {
	case WalletStatusCompleted, WalletStatusPending, WalletStatusCancelled:
		return true
	default:
		return false
	}
}

// WalletTransaction is an append-only ledger entry. BalanceAfter is a snapshot
// taken at insert time and never recomputed.
type WalletTransaction struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Type            WalletTransactionType
	Amount          decimal.Decimal
	BalanceAfter    decimal.Decimal
	RelatedOrderID  *uuid.UUID
	RelatedUserID   *uuid.UUID
	CommissionLevel *int
	Description     string
	Status          WalletTransactionStatus
	IdempotencyKey  string
	CreatedAt       time.Time
}

// CountsTowardBalance reports whether the entry moves the balance.
func (t *WalletTransaction) CountsTowardBalance() bool {
	return t.Status == WalletStatusCompleted
}

// NextBalance returns the balance after applying t on top of previous.
func (t *WalletTransaction) NextBalance(previous decimal.Decimal) decimal.Decimal {
	if !t.CountsTowardBalance() {
		return previous
	}

	return previous.Add(t.Amount)
}

// ReplayBalance sums COMPLETED entries in order.
func ReplayBalance(entries []*WalletTransaction) decimal.Decimal {
	balance := decimal.Zero
	for _, entry := range entries {
		balance = entry.NextBalance(balance)
	}

	return balance
}
