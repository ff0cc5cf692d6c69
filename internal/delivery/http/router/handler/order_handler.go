package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/delivery/http/response"
	"mlm/internal/domain/entity"
	"mlm/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// OrderHandlerParams holds dependencies for OrderHandler, injected by Fx.
type OrderHandlerParams struct {
	fx.In

	OrderUC usecase.OrderUsecase
	Logger  *slog.Logger
}

// OrderHandler serves checkout, order reads and the admin approval workflow.
type OrderHandler struct {
	orderUC usecase.OrderUsecase
	logger  *slog.Logger
}

func NewOrderHandler(params OrderHandlerParams) *OrderHandler {
	return &OrderHandler{
		orderUC: params.OrderUC,
		logger:  params.Logger,
	}
}

// RejectOrderRequest is the optional body of a rejection.
type RejectOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Checkout turns the cart into a pending order. A repeated Idempotency-Key
// returns the order of the first attempt.
func (h *OrderHandler) Checkout(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var input usecase.CheckoutInput
	if err := bindAndValidate(c, &input); err != nil {
		return response.HandleAppError(c, err)
	}
	input.IdempotencyKey = c.Request().Header.Get(deliverycontext.HeaderIdempotencyKey)

	order, err := h.orderUC.Checkout(c.Request().Context(), actor, &input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newOrderResponse(order))
}

// ListOrders supports ?status=pending|approved|rejected&limit=&offset=.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	p, err := pageParams(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	filter := entity.OrderFilter{Limit: p.limit, Offset: p.offset}
	if raw := c.QueryParam("status"); raw != "" {
		status := entity.OrderStatus(raw)
		filter.Status = &status
	}

	orders, err := h.orderUC.ListOrders(c.Request().Context(), actor, filter)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newOrderResponses(orders))
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.HandleAppError(c, err)
	}

	order, err := h.orderUC.GetOrder(c.Request().Context(), actor, orderID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newOrderResponse(order))
}

func (h *OrderHandler) GetOrderStatus(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.HandleAppError(c, err)
	}

	snapshot, err := h.orderUC.GetOrderStatus(c.Request().Context(), actor, orderID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, snapshot)
}

// ApproveOrder runs the approval pipeline. Failed best-effort steps are
// reported as warnings next to a 200.
func (h *OrderHandler) ApproveOrder(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.HandleAppError(c, err)
	}

	result, err := h.orderUC.Approve(c.Request().Context(), actor, orderID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.SuccessWithWarnings(c, http.StatusOK, newWorkflowResponse(result), result.Warnings())
}

func (h *OrderHandler) RejectOrder(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var req RejectOrderRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return response.HandleAppError(c, err)
		}
	}

	result, err := h.orderUC.Reject(c.Request().Context(), actor, orderID, req.Reason)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.SuccessWithWarnings(c, http.StatusOK, newWorkflowResponse(result), result.Warnings())
}

func (h *OrderHandler) GetAuditTrail(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.HandleAppError(c, err)
	}

	entries, err := h.orderUC.ListAuditTrail(c.Request().Context(), actor, orderID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newAuditResponses(entries))
}
