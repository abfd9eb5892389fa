package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
)

// InvoiceRail is the lightning wallet that issues and pays invoices.
type InvoiceRail interface {
	CreateInvoice(ctx context.Context, amountSat int64, memo string) (*domain.Invoice, error)
	// PayInvoice pays an outbound bolt11 request and reports the fee actually paid, in satoshis.
	PayInvoice(ctx context.Context, paymentRequest string) (*domain.PaymentResult, error)
	// WalletBalance is the wallet's spendable balance in satoshis.
	WalletBalance(ctx context.Context) (int64, error)
	DecodeInvoice(ctx context.Context, paymentRequest string) (*domain.DecodedInvoice, error)
	IsInvoicePaid(ctx context.Context, paymentHash string) (bool, error)
	ListPayments(ctx context.Context, limit int) ([]domain.Payment, error)
}

// ExchangeRail is the margin exchange that converts between the two currencies.
type ExchangeRail interface {
	// Liquidity is the exchange account's balance in currency, in ledger units.
	Liquidity(ctx context.Context, currency domain.Currency) (decimal.Decimal, error)
	// RequestDeposit returns a bolt11 request that tops up the exchange account by amountSat.
	RequestDeposit(ctx context.Context, amountSat int64) (string, error)
	// Withdraw pays paymentRequest out of the exchange account.
	Withdraw(ctx context.Context, paymentRequest string) (*domain.PaymentResult, error)
	Swap(ctx context.Context, from, to domain.Currency, amount decimal.Decimal) (*domain.SwapResult, error)
}
