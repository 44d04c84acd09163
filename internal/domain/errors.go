package domain

import (
	"errors"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation error")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrAlreadyOwned      = errors.New("game already owned")
	// ErrDuplicateOwnership конфликт при записи покупки, которая успела появиться в параллельной транзакции.
	ErrDuplicateOwnership = errors.New("duplicate ownership")

	ErrInvalidDiscountCode     = errors.New("invalid discount code")
	ErrDiscountAlreadyRedeemed = errors.New("discount code already redeemed")
	ErrDiscountCapExceeded     = errors.New("discount code usage limit exceeded")

	ErrInvalidCartTransition = errors.New("invalid cart status transition")
)
