package domain

import "errors"

// Error categories. Every error returned by the settlement flows wraps exactly one of these.
var (
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidInvoice    = errors.New("invalid invoice")
	ErrPaymentMismatch   = errors.New("payment mismatch")
	ErrRailFailure       = errors.New("rail failure")
	ErrStorageFailure    = errors.New("storage failure")
)

var (
	// Auth errors
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")

	// Ledger errors
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrPendingCreditNotFound = errors.New("pending credit not found")
)
