package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a ledger transaction.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusSettled  TransactionStatus = "settled"
	TransactionStatusCanceled TransactionStatus = "canceled"
)

// TransactionKind tells whether value entered or left a balance.
type TransactionKind string

const (
	TransactionKindDeposit  TransactionKind = "deposit"
	TransactionKindWithdraw TransactionKind = "withdraw"
)

// Transaction is an immutable record of a committed balance mutation.
type Transaction struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	Username    string
	Destination string
	Description string
	Currency    Currency
	Status      TransactionStatus
	Kind        TransactionKind
	Value       decimal.Decimal
	Fee         decimal.Decimal
}

// Validate checks the record before it is appended to the log.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: transaction id is required", ErrValidation)
	}
	if t.Username == "" {
		return fmt.Errorf("%w: transaction username is required", ErrValidation)
	}
	if !t.Currency.IsValid() {
		return fmt.Errorf("%w: unsupported currency %q", ErrValidation, t.Currency)
	}
	if t.Kind != TransactionKindDeposit && t.Kind != TransactionKindWithdraw {
		return fmt.Errorf("%w: unknown transaction kind %q", ErrValidation, t.Kind)
	}
	switch t.Status {
	case TransactionStatusPending, TransactionStatusSettled, TransactionStatusCanceled:
	default:
		return fmt.Errorf("%w: unknown transaction status %q", ErrValidation, t.Status)
	}
	if t.Value.IsNegative() || t.Fee.IsNegative() {
		return fmt.Errorf("%w: transaction value and fee must not be negative", ErrValidation)
	}
	if err := ValidateDescription(t.Description); err != nil {
		return err
	}
	return nil
}

// NetEffect is the signed amount this record moved on the owner's balance.
func (t *Transaction) NetEffect() decimal.Decimal {
	if t.Status != TransactionStatusSettled {
		return decimal.Zero
	}
	if t.Kind == TransactionKindDeposit {
		return t.Value
	}
	return t.Value.Add(t.Fee).Neg()
}
