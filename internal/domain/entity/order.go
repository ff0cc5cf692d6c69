package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the payment status of an order and drives the approval state machine.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:  {OrderStatusApproved: true, OrderStatusRejected: true},
	OrderStatusApproved: {},
	OrderStatusRejected: {},
}

// CanTransition reports whether an order may move from one payment status to another.
func CanTransition(from, to OrderStatus) bool {
	return orderTransitions[from][to]
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusApproved || s == OrderStatusRejected
}

// IsValid checks if the status is one of the declared values.
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]

	return ok
}

// FulfillmentStatus tracks the physical shipment of an order.
type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentProcessing  FulfillmentStatus = "processing"
	FulfillmentShipped     FulfillmentStatus = "shipped"
	FulfillmentDelivered   FulfillmentStatus = "delivered"
)

// Order is one customer purchase intent.
type Order struct {
	ID                uuid.UUID
	OrderNumber       string
	UserID            *uuid.UUID
	AffiliateID       *uuid.UUID
	Subtotal          decimal.Decimal
	DiscountAmount    decimal.Decimal
	ShippingCost      decimal.Decimal
	TotalAmount       decimal.Decimal
	PointsEarned      int64
	WarehouseID       uuid.UUID
	FulfillmentStatus FulfillmentStatus
	PaymentStatus     OrderStatus
	PaymentProofURL   string
	ShippingAddress   string
	AdminNotes        *string
	Items             []OrderItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem is a line item snapshotted at checkout.
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	Quantity      int
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	PointsPerUnit int64
}

// NewOrderItem snapshots a product line. The caller validates quantity.
func NewOrderItem(productID uuid.UUID, quantity int, unitPrice decimal.Decimal, pointsPerUnit int64) OrderItem {
	return OrderItem{
		ID:            uuid.New(),
		ProductID:     productID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalPrice:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		PointsPerUnit: pointsPerUnit,
	}
}

// Points returns the loyalty points this line contributes.
func (i OrderItem) Points() int64 {
	return i.PointsPerUnit * int64(i.Quantity)
}

// OrderTotals is the monetary summary computed once at creation.
type OrderTotals struct {
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PointsEarned   int64
}

// ComputeTotals sums the line items: total = subtotal + shipping - discount.
func ComputeTotals(items []OrderItem, shipping, discount decimal.Decimal) OrderTotals {
	totals := OrderTotals{
		Subtotal:       decimal.Zero,
		ShippingCost:   shipping,
		DiscountAmount: discount,
	}
	for _, item := range items {
		totals.Subtotal = totals.Subtotal.Add(item.TotalPrice)
		totals.PointsEarned += item.Points()
	}
	totals.TotalAmount = totals.Subtotal.Add(shipping).Sub(discount)

	return totals
}

// ApplyTotals copies computed totals onto the order.
func (o *Order) ApplyTotals(t OrderTotals) {
	o.Subtotal = t.Subtotal
	o.ShippingCost = t.ShippingCost
	o.DiscountAmount = t.DiscountAmount
	o.TotalAmount = t.TotalAmount
	o.PointsEarned = t.PointsEarned
}

// IsOwnedBy reports whether the order belongs to the given user.
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// NewOrderNumber builds a human readable order number, e.g. ORD-20250102-1A2B3C4D.
func NewOrderNumber(now time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])

	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID *uuid.UUID
	Status *OrderStatus
	Limit  int
	Offset int
}
