package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/repository"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type catalogService struct {
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	logger        *slog.Logger
}

// CatalogServiceParams holds dependencies for CatalogService, injected by Fx.
type CatalogServiceParams struct {
	fx.In

	ProductRepo   repository.ProductRepository
	WarehouseRepo repository.WarehouseRepository
	Logger        *slog.Logger
}

// NewCatalogService creates the catalog usecase.
func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	return &catalogService{
		productRepo:   params.ProductRepo,
		warehouseRepo: params.WarehouseRepo,
		logger:        params.Logger,
	}
}

func (srv *catalogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateProduct stores a product. Pack ranks are stored under their canonical name.
func (srv *catalogService) CreateProduct(ctx context.Context, actor entity.Actor, input *usecase.ProductInput) (*entity.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	name := strings.TrimSpace(input.Name)
	switch {
	case sku == "":
		return nil, domainerrors.ErrValidationFailed.WithDetails("sku is required")
	case name == "":
		return nil, domainerrors.ErrValidationFailed.WithDetails("name is required")
	case input.Price.IsNegative():
		return nil, domainerrors.ErrValidationFailed.WithDetails("price must not be negative")
	case input.Points < 0:
		return nil, domainerrors.ErrValidationFailed.WithDetails("points must not be negative")
	}

	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New(),
		SKU:       sku,
		Name:      name,
		Price:     input.Price,
		Points:    input.Points,
		IsPack:    input.IsPack,
		ImageURL:  strings.TrimSpace(input.ImageURL),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if input.IsPack {
		rank, err := entity.ParseRank(input.PackRank)
		if err != nil {
			return nil, domainerrors.ErrUnknownRank.WithDetails(input.PackRank)
		}
		product.PackRank = rank.String()
	}

	if err := srv.productRepo.Create(ctx, product); err != nil {
		return nil, mapRepositoryError(err, "failed to create product")
	}

	srv.log(ctx).Info("Product created", slog.String("product_id", product.ID.String()), slog.String("sku", product.SKU))

	return product, nil
}

func (srv *catalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to find product")
	}

	return product, nil
}

func (srv *catalogService) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	products, err := srv.productRepo.List(ctx, true)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to list products")
	}

	return products, nil
}

func (srv *catalogService) CreateWarehouse(ctx context.Context, actor entity.Actor, input *usecase.WarehouseInput) (*entity.Warehouse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("code and name are required")
	}

	warehouse := &entity.Warehouse{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		IsCentral: input.IsCentral,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := srv.warehouseRepo.Create(ctx, warehouse); err != nil {
		return nil, mapRepositoryError(err, "failed to create warehouse")
	}

	srv.log(ctx).Info("Warehouse created",
		slog.String("warehouse_id", warehouse.ID.String()),
		slog.String("code", warehouse.Code),
		slog.Bool("central", warehouse.IsCentral),
	)

	return warehouse, nil
}

func (srv *catalogService) ListWarehouses(ctx context.Context, actor entity.Actor) ([]*entity.Warehouse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	warehouses, err := srv.warehouseRepo.List(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to list warehouses")
	}

	return warehouses, nil
}
