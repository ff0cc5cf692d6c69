package handler

import (
	"time"

	"mlm/internal/domain/entity"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	OrderNumber       string              `json:"order_number"`
	UserID            *uuid.UUID          `json:"user_id,omitempty"`
	AffiliateID       *uuid.UUID          `json:"affiliate_id,omitempty"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	DiscountAmount    decimal.Decimal     `json:"discount_amount"`
	ShippingCost      decimal.Decimal     `json:"shipping_cost"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	PointsEarned      int64               `json:"points_earned"`
	WarehouseID       uuid.UUID           `json:"warehouse_id"`
	PaymentStatus     string              `json:"payment_status"`
	FulfillmentStatus string              `json:"fulfillment_status"`
	PaymentProofURL   string              `json:"payment_proof_url"`
	ShippingAddress   string              `json:"shipping_address"`
	AdminNotes        *string             `json:"admin_notes,omitempty"`
	Items             []OrderItemResponse `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PointsPerUnit int64           `json:"points_per_unit"`
}

func newOrderResponse(order *entity.Order) *OrderResponse {
	if order == nil {
		return nil
	}

	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
			PointsPerUnit: item.PointsPerUnit,
		})
	}

	return &OrderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		UserID:            order.UserID,
		AffiliateID:       order.AffiliateID,
		Subtotal:          order.Subtotal,
		DiscountAmount:    order.DiscountAmount,
		ShippingCost:      order.ShippingCost,
		TotalAmount:       order.TotalAmount,
		PointsEarned:      order.PointsEarned,
		WarehouseID:       order.WarehouseID,
		PaymentStatus:     string(order.PaymentStatus),
		FulfillmentStatus: string(order.FulfillmentStatus),
		PaymentProofURL:   order.PaymentProofURL,
		ShippingAddress:   order.ShippingAddress,
		AdminNotes:        order.AdminNotes,
		Items:             items,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

func newOrderResponses(orders []*entity.Order) []*OrderResponse {
	out := make([]*OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, newOrderResponse(order))
	}

	return out
}

// WorkflowResponse is returned by approve and reject.
type WorkflowResponse struct {
	Order *OrderResponse       `json:"order"`
	Steps []usecase.StepReport `json:"steps"`
}

func newWorkflowResponse(result *usecase.WorkflowResult) *WorkflowResponse {
	return &WorkflowResponse{
		Order: newOrderResponse(result.Order),
		Steps: result.Steps,
	}
}

type AuditEntryResponse struct {
	Action    string    `json:"action"`
	Step      string    `json:"step"`
	Essential bool      `json:"essential"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	ActorID   uuid.UUID `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newAuditResponses(entries []*entity.OrderAuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			Action:    string(e.Action),
			Step:      e.Step,
			Essential: e.Essential,
			Outcome:   string(e.Outcome),
			Detail:    e.Detail,
			ActorID:   e.ActorID,
			CreatedAt: e.CreatedAt,
		})
	}

	return out
}

// ProfileResponse is the public view of an affiliate.
type ProfileResponse struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	ReferralCode   string      `json:"referral_code"`
	SponsorID      *uuid.UUID  `json:"sponsor_id,omitempty"`
	Rank           entity.Rank `json:"rank"`
	CurrentPoints  int64       `json:"current_points"`
	LifetimePoints int64       `json:"lifetime_points"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
}

func newProfileResponse(p *entity.Profile) *ProfileResponse {
	return &ProfileResponse{
		ID:             p.ID,
		Name:           p.Name,
		ReferralCode:   p.ReferralCode,
		SponsorID:      p.SponsorID,
		Rank:           p.Rank,
		CurrentPoints:  p.CurrentPoints,
		LifetimePoints: p.LifetimePoints,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
	}
}

// GenealogyResponse is one upline or downline member.
type GenealogyResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Level  int       `json:"level"`
}

// newUplineResponses reports the ancestors; newDownlineResponses the descendants.
func newUplineResponses(entries []entity.GenealogyEntry) []GenealogyResponse {
	out := make([]GenealogyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, GenealogyResponse{UserID: e.AncestorID, Level: e.Level})
	}

	return out
}

func newDownlineResponses(entries []entity.GenealogyEntry) []GenealogyResponse {
	out := make([]GenealogyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, GenealogyResponse{UserID: e.UserID, Level: e.Level})
	}

	return out
}

type ProductResponse struct {
	ID       uuid.UUID       `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Points   int64           `json:"points"`
	IsPack   bool            `json:"is_pack"`
	PackRank string          `json:"pack_rank,omitempty"`
	ImageURL string          `json:"image_url,omitempty"`
	IsActive bool            `json:"is_active"`
}

func newProductResponse(p *entity.Product) *ProductResponse {
	return &ProductResponse{
		ID:       p.ID,
		SKU:      p.SKU,
		Name:     p.Name,
		Price:    p.Price,
		Points:   p.Points,
		IsPack:   p.IsPack,
		PackRank: p.PackRank,
		ImageURL: p.ImageURL,
		IsActive: p.IsActive,
	}
}

func newProductResponses(products []*entity.Product) []*ProductResponse {
	out := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}

	return out
}

type WarehouseResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsCentral bool      `json:"is_central"`
	IsActive  bool      `json:"is_active"`
}

func newWarehouseResponse(w *entity.Warehouse) *WarehouseResponse {
	return &WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		IsCentral: w.IsCentral,
		IsActive:  w.IsActive,
	}
}

type InventoryItemResponse struct {
	ProductID        uuid.UUID `json:"product_id"`
	WarehouseID      uuid.UUID `json:"warehouse_id"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reserved_quantity"`
	ReorderPoint     int       `json:"reorder_point"`
	NeedsReorder     bool      `json:"needs_reorder"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newInventoryResponses(items []*entity.InventoryItem) []InventoryItemResponse {
	out := make([]InventoryItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, InventoryItemResponse{
			ProductID:        item.ProductID,
			WarehouseID:      item.WarehouseID,
			Quantity:         item.Quantity,
			ReservedQuantity: item.ReservedQuantity,
			ReorderPoint:     item.ReorderPoint,
			NeedsReorder:     item.NeedsReorder(),
			UpdatedAt:        item.UpdatedAt,
		})
	}

	return out
}

type WalletTransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Status          string          `json:"status"`
	RelatedOrderID  *uuid.UUID      `json:"related_order_id,omitempty"`
	RelatedUserID   *uuid.UUID      `json:"related_user_id,omitempty"`
	CommissionLevel *int            `json:"commission_level,omitempty"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
}

func newWalletTransactionResponse(tx *entity.WalletTransaction) *WalletTransactionResponse {
	return &WalletTransactionResponse{
		ID:              tx.ID,
		Type:            string(tx.Type),
		Amount:          tx.Amount,
		BalanceAfter:    tx.BalanceAfter,
		Status:          string(tx.Status),
		RelatedOrderID:  tx.RelatedOrderID,
		RelatedUserID:   tx.RelatedUserID,
		CommissionLevel: tx.CommissionLevel,
		Description:     tx.Description,
		CreatedAt:       tx.CreatedAt,
	}
}
