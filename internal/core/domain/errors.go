package domain

import "errors"

var (
	// Conflict errors. Retryable by the caller after backoff.
	ErrSeatUnavailable = errors.New("seat is not available")
	ErrSeatBusy        = errors.New("seat is locked by another request")

	// Not-found errors. Fatal to the current call.
	ErrSeatNotFound        = errors.New("seat not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrTokenNotFound       = errors.New("token not found")
	ErrUserNotFound        = errors.New("user not found")

	// Validation errors.
	ErrReservationExpired    = errors.New("reservation hold has expired")
	ErrReservationNotPayable = errors.New("reservation is not in a payable state")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInvalidAmount         = errors.New("payment amount must be positive")
	ErrTokenNotActive        = errors.New("queue token is not active")
)
