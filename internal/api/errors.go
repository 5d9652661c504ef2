package api

import (
	"errors"
	"net/http"

	"ammScope/internal/amm"
)

// Error is an HTTP error with a client-facing message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

var (
	ErrAmountRequired      = newError(http.StatusBadRequest, "amount_in is required")
	ErrInvalidAmountFormat = newError(http.StatusBadRequest, "invalid amount_in format")
	ErrQueryFailed         = newError(http.StatusInternalServerError, "query failed")
)

// NewAddressRequired returns a 400 for a missing address field.
func NewAddressRequired(field string) error {
	return newError(http.StatusBadRequest, field+" address is required")
}

// NewInvalidAddress returns a 400 for a malformed address field.
func NewInvalidAddress(field string) error {
	return newError(http.StatusBadRequest, "invalid "+field+" address")
}

// poolError maps pool validation errors to 400 and everything else to 500.
func poolError(err error) *Error {
	switch {
	case errors.Is(err, amm.ErrInvalidAsset),
		errors.Is(err, amm.ErrInvalidAmount),
		errors.Is(err, amm.ErrInsufficientLiquidity):
		return newError(http.StatusBadRequest, err.Error())
	default:
		return ErrQueryFailed
	}
}
