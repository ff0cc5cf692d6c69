package handler

import (
	"net/http"

	"mlm/internal/delivery/http/response"
	"mlm/internal/domain/entity"
	"mlm/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// CatalogHandlerParams holds dependencies for CatalogHandler, injected by Fx.
type CatalogHandlerParams struct {
	fx.In

	CatalogUC   usecase.CatalogUsecase
	InventoryUC usecase.InventoryUsecase
}

// CatalogHandler serves products, warehouses and stock levels.
type CatalogHandler struct {
	catalogUC   usecase.CatalogUsecase
	inventoryUC usecase.InventoryUsecase
}

func NewCatalogHandler(params CatalogHandlerParams) *CatalogHandler {
	return &CatalogHandler{
		catalogUC:   params.CatalogUC,
		inventoryUC: params.InventoryUC,
	}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	products, err := h.catalogUC.ListProducts(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProductResponses(products))
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	productID, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.HandleAppError(c, err)
	}

	product, err := h.catalogUC.GetProduct(c.Request().Context(), productID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProductResponse(product))
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var input usecase.ProductInput
	if err := bindAndValidate(c, &input); err != nil {
		return response.HandleAppError(c, err)
	}

	product, err := h.catalogUC.CreateProduct(c.Request().Context(), actor, &input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newProductResponse(product))
}

func (h *CatalogHandler) CreateWarehouse(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var input usecase.WarehouseInput
	if err := bindAndValidate(c, &input); err != nil {
		return response.HandleAppError(c, err)
	}

	warehouse, err := h.catalogUC.CreateWarehouse(c.Request().Context(), actor, &input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newWarehouseResponse(warehouse))
}

func (h *CatalogHandler) ListWarehouses(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	warehouses, err := h.catalogUC.ListWarehouses(c.Request().Context(), actor)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	out := make([]*WarehouseResponse, 0, len(warehouses))
	for _, w := range warehouses {
		out = append(out, newWarehouseResponse(w))
	}

	return response.Success(c, http.StatusOK, out)
}

// AddStock receives units into a warehouse.
func (h *CatalogHandler) AddStock(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var input usecase.StockInput
	if err := bindAndValidate(c, &input); err != nil {
		return response.HandleAppError(c, err)
	}

	item, err := h.inventoryUC.AddStock(c.Request().Context(), actor, &input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newInventoryResponses([]*entity.InventoryItem{item})[0])
}

func (h *CatalogHandler) GetStock(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	warehouseID, err := parseUUIDParam(c, "warehouseId")
	if err != nil {
		return response.HandleAppError(c, err)
	}

	items, err := h.inventoryUC.GetStock(c.Request().Context(), actor, warehouseID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newInventoryResponses(items))
}

func (h *CatalogHandler) ListLowStock(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	items, err := h.inventoryUC.ListLowStock(c.Request().Context(), actor)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newInventoryResponses(items))
}
