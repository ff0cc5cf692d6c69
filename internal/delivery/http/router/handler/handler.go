// Package handler contains the HTTP handlers of the public API.
package handler

import (
	"net/http"

	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/delivery/http/response"
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// currentActor returns the caller set by the auth middleware.
func currentActor(c echo.Context) (entity.Actor, error) {
	actor, ok := deliverycontext.GetActor(c)
	if !ok {
		return entity.Actor{}, domainerrors.ErrUnauthenticated
	}

	return actor, nil
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WithDetails("invalid " + name)
	}

	return id, nil
}

// bindAndValidate binds the request into dst and runs the echo validator.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed request body")
	}

	return c.Validate(dst)
}

type page struct {
	limit  int
	offset int
}

func pageParams(c echo.Context) (page, error) {
	var p page
	err := echo.QueryParamsBinder(c).
		Int("limit", &p.limit).
		Int("offset", &p.offset).
		BindError()
	if err != nil {
		return page{}, domainerrors.ErrValidationFailed.WithDetails("limit and offset must be integers")
	}

	return p, nil
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
