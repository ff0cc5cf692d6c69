package errors

import (
	"fmt"
	"net/http"

	"mlm/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// WithMessage returns a copy carrying a more specific message under the same code
func (e *BaseError) WithMessage(message string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   message,
		details:   e.details,
	}
}

// Is matches any BaseError carrying the same error code, so copies made by
// WithDetails or WithMessage still satisfy errors.Is against the predefined value.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == t.errorCode
}

// Predefined error types
var (
	// Validation errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	ErrInvalidQuantity = NewBaseError(
		http.StatusBadRequest,
		"INVALID_QUANTITY",
		"quantity must be greater than zero",
		"",
	)

	ErrEmptyCart = NewBaseError(
		http.StatusBadRequest,
		"EMPTY_CART",
		"checkout requires at least one item",
		"",
	)

	ErrPaymentProofRequired = NewBaseError(
		http.StatusBadRequest,
		"PAYMENT_PROOF_REQUIRED",
		"a payment proof is required",
		"",
	)

	ErrUnknownRank = NewBaseError(
		http.StatusBadRequest,
		"UNKNOWN_RANK",
		"unrecognized rank",
		"",
	)

	ErrProductInactive = NewBaseError(
		http.StatusBadRequest,
		"PRODUCT_INACTIVE",
		"product is not available for sale",
		"",
	)

	ErrOrderWithoutUser = NewBaseError(
		http.StatusBadRequest,
		"ORDER_WITHOUT_USER",
		"order has no owning user",
		"",
	)

	// Authentication and authorization errors
	ErrUnauthenticated = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHENTICATED",
		"authentication required",
		"",
	)

	ErrUnauthorized = NewBaseError(
		http.StatusForbidden,
		"UNAUTHORIZED",
		"admin capability required",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"access to this resource is denied",
		"",
	)

	// Not found errors
	ErrOrderNotFound = NewBaseError(
		http.StatusNotFound,
		"ORDER_NOT_FOUND",
		"order not found",
		"",
	)

	ErrProductNotFound = NewBaseError(
		http.StatusNotFound,
		"PRODUCT_NOT_FOUND",
		"product not found",
		"",
	)

	ErrProfileNotFound = NewBaseError(
		http.StatusNotFound,
		"PROFILE_NOT_FOUND",
		"affiliate profile not found",
		"",
	)

	ErrWarehouseNotFound = NewBaseError(
		http.StatusNotFound,
		"WAREHOUSE_NOT_FOUND",
		"no active central warehouse is configured",
		"",
	)

	ErrInventoryItemNotFound = NewBaseError(
		http.StatusNotFound,
		"INVENTORY_ITEM_NOT_FOUND",
		"inventory item not found",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"resource not found",
		"",
	)

	// Conflict errors
	ErrOrderStatusConflict = NewBaseError(
		http.StatusConflict,
		"ORDER_STATUS_CONFLICT",
		"order is not pending",
		"",
	)

	ErrRankNotHigher = NewBaseError(
		http.StatusConflict,
		"RANK_NOT_HIGHER",
		"rank can only be raised",
		"",
	)

	ErrSponsorSelfReference = NewBaseError(
		http.StatusConflict,
		"SPONSOR_SELF_REFERENCE",
		"an affiliate cannot sponsor itself",
		"",
	)

	ErrSponsorInactive = NewBaseError(
		http.StatusConflict,
		"SPONSOR_INACTIVE",
		"sponsor is not active",
		"",
	)

	ErrSponsorCycle = NewBaseError(
		http.StatusConflict,
		"SPONSOR_CYCLE",
		"assignment would create a sponsor cycle",
		"",
	)

	ErrNoSponsor = NewBaseError(
		http.StatusConflict,
		"NO_SPONSOR",
		"affiliate has no sponsor",
		"",
	)

	ErrDuplicateSKU = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_SKU",
		"a product with this SKU already exists",
		"",
	)

	ErrDuplicateReferralCode = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_REFERRAL_CODE",
		"referral code is already taken",
		"",
	)

	ErrDuplicateWarehouseCode = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_WAREHOUSE_CODE",
		"a warehouse with this code already exists",
		"",
	)

	ErrProfileAlreadyExists = NewBaseError(
		http.StatusConflict,
		"PROFILE_ALREADY_EXISTS",
		"affiliate profile already exists",
		"",
	)

	ErrInsufficientReservation = NewBaseError(
		http.StatusConflict,
		"INSUFFICIENT_RESERVATION",
		"reserved quantity is lower than requested",
		"",
	)

	ErrCheckoutInProgress = NewBaseError(
		http.StatusConflict,
		"CHECKOUT_IN_PROGRESS",
		"a checkout with this idempotency key is still running",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"resource conflict",
		"",
	)

	// Resource errors
	ErrOutOfStock = NewBaseError(
		http.StatusConflict,
		"OUT_OF_STOCK",
		"insufficient stock",
		"",
	)

	// Infrastructure errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"transaction failed",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal server error",
		"",
	)
)

// NewOrderStatusConflict reports an attempt to act on an order that already left pending.
func NewOrderStatusConflict(current string) *BaseError {
	return ErrOrderStatusConflict.WithMessage(fmt.Sprintf("order is already %s", current))
}

// NewOutOfStock names the product that lacked stock.
func NewOutOfStock(productName string, requested, available int) *BaseError {
	return ErrOutOfStock.
		WithMessage(fmt.Sprintf("insufficient stock for %s", productName)).
		WithDetails(fmt.Sprintf("requested %d, available %d", requested, available))
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_ERROR"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
