package usecase

import "time"

const (
	// DefaultInvoiceExpiry is used when no expiry is configured for deposit invoices.
	DefaultInvoiceExpiry = 24 * time.Hour

	// DefaultExchangeMinWithdraw is the smallest amount, in satoshis, the exchange pays out.
	DefaultExchangeMinWithdraw = 1000

	// PaymentLookupLimit is how many recent payments are scanned to find a payment's fee.
	PaymentLookupLimit = 5

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
