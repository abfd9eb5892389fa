package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is an inbound payment request issued by the invoice rail.
type Invoice struct {
	PaymentHash    string
	PaymentRequest string
	Amount         int64
	Memo           string
	Expiry         time.Duration
	ExpiresAt      time.Time
}

// DecodedInvoice is what the invoice rail reports about a bolt11 payment request.
type DecodedInvoice struct {
	PaymentHash string
	AmountMsat  int64
	Description string
	Payee       string
	Expiry      time.Duration
	Date        time.Time
}

// AmountSat is the invoice amount truncated to whole satoshis.
func (d *DecodedInvoice) AmountSat() int64 {
	return d.AmountMsat / 1000
}

// PaymentResult is the outcome of an outbound payment on either rail.
// An empty PaymentID means the rail did not confirm the payment.
type PaymentResult struct {
	PaymentID string
	FeePaid   decimal.Decimal
}

// Payment is an entry of the invoice rail's payment history.
type Payment struct {
	PaymentHash string
	Amount      int64
	FeeMsat     int64
	Pending     bool
	Time        time.Time
}

// SwapResult is the exchange rail's report of an executed swap.
// A nil Rate means the rail did not quote one, which makes the result unusable.
type SwapResult struct {
	InputAmount  decimal.Decimal
	OutputAmount decimal.Decimal
	Rate         *decimal.Decimal
}

// Usable reports whether the swap produced an output and a rate.
func (r *SwapResult) Usable() bool {
	return r != nil && r.Rate != nil && r.Rate.Sign() > 0 && r.OutputAmount.Sign() > 0
}
