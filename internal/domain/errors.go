package domain

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPaymentExpired        = errors.New("payment expired")
	ErrInvalidState          = errors.New("invalid payment state transition")
	ErrUnsupportedChain      = errors.New("unsupported chain")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrSubmissionFailed      = errors.New("transaction submission failed")
	ErrSweepDisabled         = errors.New("treasury sweep is disabled")
)
