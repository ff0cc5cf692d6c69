package handler

import (
	"net/http"

	"mlm/internal/delivery/http/response"
	"mlm/internal/domain/entity"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// WalletHandlerParams holds dependencies for WalletHandler, injected by Fx.
type WalletHandlerParams struct {
	fx.In

	WalletUC usecase.WalletUsecase
}

type WalletHandler struct {
	walletUC usecase.WalletUsecase
}

func NewWalletHandler(params WalletHandlerParams) *WalletHandler {
	return &WalletHandler{walletUC: params.WalletUC}
}

type BalanceResponse struct {
	UserID  uuid.UUID       `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// AdjustmentRequest is an admin ADJUSTMENT (either sign) or BONUS (positive) entry.
type AdjustmentRequest struct {
	Type        string          `json:"type" validate:"required,oneof=ADJUSTMENT BONUS"`
	Amount      decimal.Decimal `json:"amount" validate:"decimal_ne0"`
	Description string          `json:"description" validate:"required,max=255"`
}

func (h *WalletHandler) GetBalance(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	balance, err := h.walletUC.Balance(c.Request().Context(), actor.UserID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, BalanceResponse{UserID: actor.UserID, Balance: balance})
}

// ListTransactions returns the caller's ledger newest first.
func (h *WalletHandler) ListTransactions(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	p, err := pageParams(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	txs, err := h.walletUC.History(c.Request().Context(), actor.UserID, p.limit, p.offset)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	out := make([]*WalletTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newWalletTransactionResponse(tx))
	}

	return response.Success(c, http.StatusOK, out)
}

func (h *WalletHandler) Adjust(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var req AdjustmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	tx, err := h.walletUC.Adjust(c.Request().Context(), actor, userID, &usecase.AdjustmentInput{
		Type:        entity.WalletTransactionType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newWalletTransactionResponse(tx))
}

// Verify replays the ledger of a user and compares it with the stored balance.
func (h *WalletHandler) Verify(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return response.HandleAppError(c, err)
	}

	verification, err := h.walletUC.Verify(c.Request().Context(), actor, userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, verification)
}
