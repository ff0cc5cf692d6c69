// Package impl contains the implementation of the application's business logic.
package impl

import (
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/repository"
	"mlm/internal/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func requireAuthenticated(actor entity.Actor) error {
	if !actor.IsAuthenticated() {
		return domainerrors.ErrUnauthenticated
	}

	return nil
}

func requireAdmin(actor entity.Actor) error {
	if !actor.IsAuthenticated() {
		return domainerrors.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return domainerrors.ErrUnauthorized
	}

	return nil
}

// normalizePage clamps a limit/offset pair.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// repositoryErrors maps persistence sentinels onto the application error taxonomy.
var repositoryErrors = []struct {
	sentinel error
	appErr   *domainerrors.BaseError
}{
	{repository.ErrOrderNotFound, domainerrors.ErrOrderNotFound},
	{repository.ErrOrderStatusChanged, domainerrors.ErrOrderStatusConflict},
	{repository.ErrProductNotFound, domainerrors.ErrProductNotFound},
	{repository.ErrProfileNotFound, domainerrors.ErrProfileNotFound},
	{repository.ErrRankNotRaised, domainerrors.ErrRankNotHigher},
	{repository.ErrWarehouseNotFound, domainerrors.ErrWarehouseNotFound},
	{repository.ErrInventoryItemNotFound, domainerrors.ErrInventoryItemNotFound},
	{repository.ErrInsufficientStock, domainerrors.ErrOutOfStock},
	{repository.ErrInsufficientReservation, domainerrors.ErrInsufficientReservation},
	{repository.ErrInvalidQuantity, domainerrors.ErrInvalidQuantity},
	{repository.ErrDuplicateSKU, domainerrors.ErrDuplicateSKU},
	{repository.ErrDuplicateReferralCode, domainerrors.ErrDuplicateReferralCode},
	{repository.ErrDuplicateWarehouseCode, domainerrors.ErrDuplicateWarehouseCode},
	{repository.ErrDuplicateProfile, domainerrors.ErrProfileAlreadyExists},
	{entity.ErrUnknownRank, domainerrors.ErrUnknownRank},
}

// mapRepositoryError translates known repository errors and wraps the rest with msg.
func mapRepositoryError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	for _, m := range repositoryErrors {
		if errors.Is(err, m.sentinel) {
			if err.Error() == m.sentinel.Error() {
				return m.appErr
			}

			return m.appErr.WithDetails(err.Error())
		}
	}

	return errors.Wrap(err, msg)
}
