package service

import (
	"mlm/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// PricingPolicy prices shipping and discounts for a cart snapshot.
type PricingPolicy interface {
	Quote(items []entity.OrderItem) (shipping, discount decimal.Decimal)
}

// FreePricing charges no shipping and grants no discount.
type FreePricing struct{}

func (FreePricing) Quote([]entity.OrderItem) (decimal.Decimal, decimal.Decimal) {
	return decimal.Zero, decimal.Zero
}
