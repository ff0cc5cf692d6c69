// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"mlm/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for order persistence.
var (
	// ErrOrderNotFound is returned when an order is not found.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderStatusChanged is returned when a conditional status update matched no row
	// because the order is no longer in the expected status.
	ErrOrderStatusChanged = errors.New("order status changed concurrently")
	// ErrDuplicateOrderNumber is returned when the human order number collides.
	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// Create persists an order together with its items.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID retrieves an order and its items.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// List retrieves orders matching the filter, newest first, without items.
	List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error)

	// TransitionStatus moves an order from one payment status to another in a single
	// conditional update. adminNotes is stored when non-nil.
	// Returns ErrOrderStatusChanged when the order is not in the expected status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.OrderStatus, adminNotes *string) error

	// Delete removes an order and its items.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Domain-specific errors for order audit persistence.
var (
	// ErrAuditEntryInvalid is returned when an audit entry misses its order reference.
	ErrAuditEntryInvalid = errors.New("audit entry is missing its order")
)

// OrderAuditRepository stores the per-step outcome of admin workflows.
type OrderAuditRepository interface {
	// Append stores audit entries in the given order.
	Append(ctx context.Context, entries []*entity.OrderAuditEntry) error

	// ListByOrder returns the entries of an order, oldest first.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.OrderAuditEntry, error)
}
