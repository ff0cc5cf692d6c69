package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"mlm/internal/delivery/http/response"
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/service"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const defaultDownlineLevels = 3

// AffiliateHandlerParams holds dependencies for AffiliateHandler, injected by Fx.
type AffiliateHandlerParams struct {
	fx.In

	SponsorUC usecase.SponsorUsecase
	RankUC    usecase.RankUsecase
	QRService service.ReferralQRService
	Logger    *slog.Logger
}

// AffiliateHandler serves the sponsor graph and the rank ledger.
type AffiliateHandler struct {
	sponsorUC usecase.SponsorUsecase
	rankUC    usecase.RankUsecase
	qrService service.ReferralQRService
	logger    *slog.Logger
}

func NewAffiliateHandler(params AffiliateHandlerParams) *AffiliateHandler {
	return &AffiliateHandler{
		sponsorUC: params.SponsorUC,
		rankUC:    params.RankUC,
		qrService: params.QRService,
		logger:    params.Logger,
	}
}

type JoinRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	ReferralCode string `json:"referral_code,omitempty" validate:"omitempty,max=32"`
}

type SponsorByCodeRequest struct {
	ReferralCode string `json:"referral_code" validate:"required,max=32"`
}

type AssignSponsorRequest struct {
	SponsorID uuid.UUID `json:"sponsor_id" validate:"required"`
}

type CreditPointsRequest struct {
	Points int64 `json:"points" validate:"required,gt=0"`
}

type SetRankRequest struct {
	Rank string `json:"rank" validate:"required,rank"`
}

// Join creates the caller's affiliate profile.
func (h *AffiliateHandler) Join(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var req JoinRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	profile, err := h.sponsorUC.CreateProfile(c.Request().Context(), &usecase.CreateProfileInput{
		UserID:       actor.UserID,
		Name:         req.Name,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newProfileResponse(profile))
}

func (h *AffiliateHandler) GetMe(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	profile, err := h.sponsorUC.GetProfile(c.Request().Context(), actor.UserID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProfileResponse(profile))
}

func (h *AffiliateHandler) GetUpline(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	entries, err := h.sponsorUC.Upline(c.Request().Context(), actor.UserID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newUplineResponses(entries))
}

// GetDownline supports ?levels=N, defaulting to three levels.
func (h *AffiliateHandler) GetDownline(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	levels := defaultDownlineLevels
	if raw := c.QueryParam("levels"); raw != "" {
		levels, err = strconv.Atoi(raw)
		if err != nil || levels <= 0 {
			return response.HandleAppError(c, domainerrors.ErrValidationFailed.WithDetails("levels must be a positive integer"))
		}
	}

	entries, err := h.sponsorUC.Downline(c.Request().Context(), actor.UserID, levels)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newDownlineResponses(entries))
}

// GetReferralQR renders the caller's signup link as a PNG.
func (h *AffiliateHandler) GetReferralQR(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	profile, err := h.sponsorUC.GetProfile(c.Request().Context(), actor.UserID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	png, err := h.qrService.GenerateReferralQR(profile.ReferralCode)
	if err != nil {
		return response.HandleAppError(c, err)
	}
	c.Response().Header().Set("X-Referral-Link", h.qrService.ReferralLink(profile.ReferralCode))

	return c.Blob(http.StatusOK, "image/png", png)
}

// SetSponsor attaches the caller under the owner of a referral code.
func (h *AffiliateHandler) SetSponsor(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var req SponsorByCodeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	profile, err := h.sponsorUC.AssignByReferralCode(c.Request().Context(), actor.UserID, req.ReferralCode)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProfileResponse(profile))
}

// adminTarget checks the admin capability and parses the :id of the affiliate.
func adminTarget(c echo.Context) (uuid.UUID, error) {
	actor, err := currentActor(c)
	if err != nil {
		return uuid.Nil, err
	}
	if !actor.IsAdmin() {
		return uuid.Nil, domainerrors.ErrUnauthorized
	}

	return parseUUIDParam(c, "id")
}

func (h *AffiliateHandler) AssignSponsor(c echo.Context) error {
	userID, err := adminTarget(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var req AssignSponsorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	ctx := c.Request().Context()
	if err := h.sponsorUC.Assign(ctx, userID, req.SponsorID); err != nil {
		return response.HandleAppError(c, err)
	}

	profile, err := h.sponsorUC.GetProfile(ctx, userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProfileResponse(profile))
}

func (h *AffiliateHandler) DetachSponsor(c echo.Context) error {
	userID, err := adminTarget(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	if err := h.sponsorUC.Detach(c.Request().Context(), userID); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AffiliateHandler) CreditPoints(c echo.Context) error {
	userID, err := adminTarget(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var req CreditPointsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	ctx := c.Request().Context()
	if err := h.rankUC.CreditPoints(ctx, userID, req.Points); err != nil {
		return response.HandleAppError(c, err)
	}

	return h.respondStanding(c, userID)
}

// SetRank raises the rank. Equal or lower ranks are refused with a conflict.
func (h *AffiliateHandler) SetRank(c echo.Context) error {
	userID, err := adminTarget(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	var req SetRankRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.HandleAppError(c, err)
	}

	rank, err := entity.ParseRank(req.Rank)
	if err != nil {
		return response.HandleAppError(c, domainerrors.ErrUnknownRank.WithDetails(req.Rank))
	}

	if err := h.rankUC.Raise(c.Request().Context(), userID, rank); err != nil {
		return response.HandleAppError(c, err)
	}

	return h.respondStanding(c, userID)
}

func (h *AffiliateHandler) respondStanding(c echo.Context, userID uuid.UUID) error {
	profile, err := h.rankUC.GetStanding(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProfileResponse(profile))
}
