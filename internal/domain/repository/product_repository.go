package repository

import (
	"context"

	"mlm/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for catalog persistence.
var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateSKU is returned when a SKU is reused.
	ErrDuplicateSKU = errors.New("sku already exists")
)

// ProductRepository defines the interface for catalog database operations.
type ProductRepository interface {
	// Create persists a new product.
	Create(ctx context.Context, product *entity.Product) error

	// FindByID retrieves a product by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByIDs retrieves the products with the given IDs, keyed by ID. Missing IDs are absent.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error)

	// List returns products, optionally only active ones.
	List(ctx context.Context, activeOnly bool) ([]*entity.Product, error)
}
