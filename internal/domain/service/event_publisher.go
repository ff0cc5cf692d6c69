package service

import (
	"context"
	"time"
)

// Order event types.
const (
	EventOrderPlaced   = "order.placed"
	EventOrderApproved = "order.approved"
	EventOrderRejected = "order.rejected"
)

// OrderEvent is published after an order changes state.
type OrderEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	EventVersion  int       `json:"event_version"`
	OccurredAt    time.Time `json:"occurred_at"`
	RequestID     string    `json:"request_id,omitempty"` // For distributed tracing
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        string    `json:"user_id,omitempty"`
	AffiliateID   string    `json:"affiliate_id,omitempty"`
	PaymentStatus string    `json:"payment_status"`
	TotalAmount   string    `json:"total_amount"`
	PointsEarned  int64     `json:"points_earned"`
	Warnings      []string  `json:"warnings,omitempty"` // Best-effort step failures
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishOrderEvent publishes an order lifecycle event
	PublishOrderEvent(ctx context.Context, event *OrderEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
