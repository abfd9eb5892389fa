package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the amount a user holds in one currency. Amount is never negative.
type Balance struct {
	Username  string
	Currency  Currency
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BalanceKey identifies a balance row.
type BalanceKey struct {
	Username string
	Currency Currency
}

func (k BalanceKey) String() string {
	return k.Username + "/" + string(k.Currency)
}

// Less orders keys so that multi-row locks are always taken in the same order.
func (k BalanceKey) Less(other BalanceKey) bool {
	if k.Username != other.Username {
		return k.Username < other.Username
	}
	return k.Currency < other.Currency
}

// Adjustment is a signed change to one balance.
type Adjustment struct {
	Key   BalanceKey
	Delta decimal.Decimal
}

// LedgerBatch groups balance adjustments and the transaction records they justify.
// A store applies a batch atomically: either everything commits or nothing does.
type LedgerBatch struct {
	Adjustments  []Adjustment
	Transactions []*Transaction
}
