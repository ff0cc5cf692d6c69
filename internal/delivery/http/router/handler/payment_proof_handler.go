package handler

import (
	"io"
	"net/http"

	"mlm/internal/delivery/http/response"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const proofFormField = "file"

// PaymentProofHandlerParams holds dependencies for PaymentProofHandler, injected by Fx.
type PaymentProofHandlerParams struct {
	fx.In

	Storage service.ProofStorage
}

// PaymentProofHandler accepts proof uploads ahead of checkout. The returned URL
// is what the client sends as payment_proof_url.
type PaymentProofHandler struct {
	storage service.ProofStorage
}

func NewPaymentProofHandler(params PaymentProofHandlerParams) *PaymentProofHandler {
	return &PaymentProofHandler{storage: params.Storage}
}

type PaymentProofResponse struct {
	PaymentProofURL string `json:"payment_proof_url"`
}

// Upload expects a multipart form with the proof in the "file" field.
func (h *PaymentProofHandler) Upload(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	fileHeader, err := c.FormFile(proofFormField)
	if err != nil {
		return response.HandleAppError(c, domainerrors.ErrPaymentProofRequired.WrapMessage("multipart field \"file\" is missing"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.HandleAppError(c, domainerrors.ErrPaymentProofRequired.WrapMessage("unreadable upload"))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return response.HandleAppError(c, domainerrors.ErrPaymentProofRequired.WrapMessage("unreadable upload"))
	}

	url, err := h.storage.Upload(c.Request().Context(), &service.ProofUpload{
		UserID:      actor.UserID,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, PaymentProofResponse{PaymentProofURL: url})
}
