package usecase

import (
	"context"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/service"

	"github.com/google/uuid"
)

// CheckoutItem is one cart line. Price and points are snapshotted from the catalog at checkout.
type CheckoutItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CheckoutInput carries everything needed to turn a cart into a pending order.
type CheckoutInput struct {
	Items           []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string         `json:"shipping_address" validate:"required,max=500"`
	PaymentProofURL string         `json:"payment_proof_url" validate:"required,max=1024"`
	AffiliateID     *uuid.UUID     `json:"affiliate_id,omitempty"`
	IdempotencyKey  string         `json:"-"`
}

// StepReport is the outcome of one named workflow step.
type StepReport struct {
	Name      string             `json:"name"`
	Essential bool               `json:"essential"`
	Outcome   entity.StepOutcome `json:"outcome"`
	Detail    string             `json:"detail,omitempty"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// WorkflowResult is returned by approve and reject. The order reflects the state
// after the essential step; Steps exposes every best-effort failure.
type WorkflowResult struct {
	Order *entity.Order `json:"order"`
	Steps []StepReport  `json:"steps"`
}

// Warnings flattens the non-fatal problems of every step.
func (r *WorkflowResult) Warnings() []string {
	var warnings []string
	for _, step := range r.Steps {
		if step.Outcome == entity.StepFailed && !step.Essential {
			warnings = append(warnings, step.Name+": "+step.Detail)
		}
		for _, w := range step.Warnings {
			warnings = append(warnings, step.Name+": "+w)
		}
	}

	return warnings
}

// Step returns the report of a named step.
func (r *WorkflowResult) Step(name string) (StepReport, bool) {
	for _, step := range r.Steps {
		if step.Name == name {
			return step, true
		}
	}

	return StepReport{}, false
}

// OrderUsecase is the order workflow: the order state machine and its side effects.
type OrderUsecase interface {
	// Checkout validates the cart, creates a pending order and reserves its stock.
	Checkout(ctx context.Context, actor entity.Actor, input *CheckoutInput) (*entity.Order, error)

	// Approve runs the approval pipeline for a pending order. Admin only.
	Approve(ctx context.Context, actor entity.Actor, orderID uuid.UUID) (*WorkflowResult, error)

	// Reject releases the order's reservations and marks it rejected. Admin only.
	Reject(ctx context.Context, actor entity.Actor, orderID uuid.UUID, reason string) (*WorkflowResult, error)

	// GetOrder returns an order to its owner or to an admin.
	GetOrder(ctx context.Context, actor entity.Actor, orderID uuid.UUID) (*entity.Order, error)

	// ListOrders lists all orders for admins and the caller's own orders otherwise.
	ListOrders(ctx context.Context, actor entity.Actor, filter entity.OrderFilter) ([]*entity.Order, error)

	// GetOrderStatus returns the payment status, served from cache when possible.
	GetOrderStatus(ctx context.Context, actor entity.Actor, orderID uuid.UUID) (*service.OrderStatusSnapshot, error)

	// ListAuditTrail returns the recorded workflow steps of an order. Admin only.
	ListAuditTrail(ctx context.Context, actor entity.Actor, orderID uuid.UUID) ([]*entity.OrderAuditEntry, error)
}
