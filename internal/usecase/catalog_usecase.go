package usecase

import (
	"context"

	"mlm/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInput creates a catalog entry.
type ProductInput struct {
	SKU      string          `json:"sku" validate:"required,max=64"`
	Name     string          `json:"name" validate:"required,max=200"`
	Price    decimal.Decimal `json:"price"`
	Points   int64           `json:"points" validate:"gte=0"`
	IsPack   bool            `json:"is_pack"`
	PackRank string          `json:"pack_rank,omitempty" validate:"required_if=IsPack true"`
	ImageURL string          `json:"image_url,omitempty" validate:"omitempty,url"`
}

// WarehouseInput creates a stock location.
type WarehouseInput struct {
	Code      string `json:"code" validate:"required,max=32"`
	Name      string `json:"name" validate:"required,max=120"`
	IsCentral bool   `json:"is_central"`
}

// CatalogUsecase manages products and warehouses.
type CatalogUsecase interface {
	// CreateProduct adds a product. Admin only.
	CreateProduct(ctx context.Context, actor entity.Actor, input *ProductInput) (*entity.Product, error)

	// GetProduct returns a product.
	GetProduct(ctx context.Context, productID uuid.UUID) (*entity.Product, error)

	// ListProducts returns the active catalog.
	ListProducts(ctx context.Context) ([]*entity.Product, error)

	// CreateWarehouse adds a warehouse. Admin only.
	CreateWarehouse(ctx context.Context, actor entity.Actor, input *WarehouseInput) (*entity.Warehouse, error)

	// ListWarehouses returns every warehouse. Admin only.
	ListWarehouses(ctx context.Context, actor entity.Actor) ([]*entity.Warehouse, error)
}
