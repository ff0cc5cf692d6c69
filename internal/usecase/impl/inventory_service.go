package impl

import (
	"context"
	"log/slog"

	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/repository"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	warehouseRepo repository.WarehouseRepository
	productRepo   repository.ProductRepository
	logger        *slog.Logger
}

// InventoryServiceParams holds dependencies for InventoryService, injected by Fx.
type InventoryServiceParams struct {
	fx.In

	InventoryRepo repository.InventoryRepository
	WarehouseRepo repository.WarehouseRepository
	ProductRepo   repository.ProductRepository
	Logger        *slog.Logger
}

// NewInventoryService creates the inventory ledger usecase.
func NewInventoryService(params InventoryServiceParams) usecase.InventoryUsecase {
	return &inventoryService{
		inventoryRepo: params.InventoryRepo,
		warehouseRepo: params.WarehouseRepo,
		productRepo:   params.ProductRepo,
		logger:        params.Logger,
	}
}

func (srv *inventoryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *inventoryService) Reserve(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error {
	if qty <= 0 {
		return domainerrors.ErrInvalidQuantity
	}

	return mapRepositoryError(srv.inventoryRepo.Reserve(ctx, productID, warehouseID, qty), "failed to reserve stock")
}

func (srv *inventoryService) Confirm(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error {
	if qty <= 0 {
		return domainerrors.ErrInvalidQuantity
	}

	return mapRepositoryError(srv.inventoryRepo.Confirm(ctx, productID, warehouseID, qty), "failed to confirm stock")
}

func (srv *inventoryService) Release(ctx context.Context, productID, warehouseID uuid.UUID, qty int) error {
	if qty <= 0 {
		return domainerrors.ErrInvalidQuantity
	}

	return mapRepositoryError(srv.inventoryRepo.Release(ctx, productID, warehouseID, qty), "failed to release stock")
}

// AddStock receives units into a warehouse after checking both ends exist.
func (srv *inventoryService) AddStock(ctx context.Context, actor entity.Actor, input *usecase.StockInput) (*entity.InventoryItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, domainerrors.ErrInvalidQuantity
	}

	if _, err := srv.productRepo.FindByID(ctx, input.ProductID); err != nil {
		return nil, mapRepositoryError(err, "failed to find product")
	}
	if _, err := srv.warehouseRepo.FindByID(ctx, input.WarehouseID); err != nil {
		return nil, mapRepositoryError(err, "failed to find warehouse")
	}

	item, err := srv.inventoryRepo.AddStock(ctx, input.ProductID, input.WarehouseID, input.Quantity)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to add stock")
	}

	srv.log(ctx).Info("Stock added",
		slog.String("product_id", input.ProductID.String()),
		slog.String("warehouse_id", input.WarehouseID.String()),
		slog.Int("quantity", input.Quantity),
		slog.Int("available", item.Quantity),
	)

	return item, nil
}

func (srv *inventoryService) GetStock(ctx context.Context, actor entity.Actor, warehouseID uuid.UUID) ([]*entity.InventoryItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := srv.warehouseRepo.FindByID(ctx, warehouseID); err != nil {
		return nil, mapRepositoryError(err, "failed to find warehouse")
	}

	items, err := srv.inventoryRepo.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to list stock")
	}

	return items, nil
}

func (srv *inventoryService) ListLowStock(ctx context.Context, actor entity.Actor) ([]*entity.InventoryItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	items, err := srv.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to list low stock")
	}

	return items, nil
}
