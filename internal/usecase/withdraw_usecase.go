package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
)

const flowWithdraw = "withdraw"

const (
	pathInvoiceRail  = "invoice_rail"
	pathExchangeRail = "exchange_rail"
	pathNone         = "none"
)

// WithdrawInput represents input for paying out a lightning invoice.
type WithdrawInput struct {
	Username       string
	PaymentRequest string
}

// Withdraw pays an external invoice out of the user's BTC balance. The amount plus fee is
// debited before any rail is called and restored if no rail confirms the payment.
func (uc *SettlementUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Transaction, error) {
	tx, path, err := uc.withdraw(ctx, input)

	outcome := "success"
	if err != nil {
		outcome = errorCategory(err)
		uc.recordError(flowWithdraw, err)
	}
	if uc.metrics != nil {
		uc.metrics.Withdrawals.WithLabelValues(path, outcome).Inc()
	}

	return tx, err
}

func (uc *SettlementUseCase) withdraw(ctx context.Context, input WithdrawInput) (*domain.Transaction, string, error) {
	const currency = domain.CurrencyBTC

	paymentRequest := strings.TrimSpace(input.PaymentRequest)
	if paymentRequest == "" {
		return nil, pathNone, fmt.Errorf("%w: payment_request is required", domain.ErrValidation)
	}

	decoded, err := uc.invoices.DecodeInvoice(ctx, paymentRequest)
	if err != nil || decoded == nil {
		return nil, pathNone, fmt.Errorf("%w: %v", domain.ErrInvalidInvoice, err)
	}

	amountSat := decoded.AmountSat()
	if amountSat < 1 {
		return nil, pathNone, fmt.Errorf("%w: invoice amount must be at least 1 sat", domain.ErrValidation)
	}
	amount := decimal.NewFromInt(amountSat)
	fee := domain.Fee(amount, uc.cfg.FeePercent, currency)
	debited := amount.Add(fee)

	log := uc.logger.With().
		Str("flow", flowWithdraw).
		Str("username", input.Username).
		Int64("amount", amountSat).
		Str("fee", fee.String()).
		Logger()

	balance, err := uc.ledger.GetBalance(ctx, input.Username, currency)
	if err != nil {
		return nil, pathNone, storageError(err)
	}
	if debited.GreaterThan(balance) {
		return nil, pathNone, fmt.Errorf("%w: balance %s %s is below %s including fee", domain.ErrInsufficientFunds, balance, currency, debited)
	}

	if err := uc.debit(ctx, input.Username, currency, debited); err != nil {
		return nil, pathNone, err
	}

	path := uc.choosePaymentPath(ctx, amountSat)

	var paid *domain.PaymentResult
	switch path {
	case pathInvoiceRail:
		paid, err = uc.invoices.PayInvoice(ctx, paymentRequest)
	case pathExchangeRail:
		paid, err = uc.exchange.Withdraw(ctx, paymentRequest)
	default:
		cause := fmt.Errorf("%w: no rail has %d sats of liquidity", domain.ErrRailFailure, amountSat)
		return nil, path, uc.compensate(ctx, flowWithdraw, input.Username, currency, debited, cause)
	}
	if err != nil || paid == nil || paid.PaymentID == "" {
		return nil, path, uc.compensate(ctx, flowWithdraw, input.Username, currency, debited, railError(path+" payment", err))
	}

	now := uc.now()
	tx := &domain.Transaction{
		ID:          paid.PaymentID,
		Username:    input.Username,
		Destination: input.Username,
		Currency:    currency,
		Value:       amount,
		Fee:         fee,
		Status:      domain.TransactionStatusSettled,
		Kind:        domain.TransactionKindWithdraw,
		Description: domain.TruncateDescription(decoded.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The payment has left the wallet, so the debit stands even if recording fails.
	if _, err := uc.ledger.RecordTransaction(context.WithoutCancel(ctx), tx); err != nil {
		log.Error().
			Err(err).
			Bool("critical", true).
			Str("payment_id", paid.PaymentID).
			Msg("withdrawal paid but transaction record failed")
		return nil, path, storageError(err)
	}

	if uc.metrics != nil && fee.Sign() > 0 {
		f, _ := fee.Float64()
		uc.metrics.FeesCharged.WithLabelValues(currency.String()).Add(f)
	}

	log.Info().Str("path", path).Str("payment_id", paid.PaymentID).Msg("withdrawal settled")

	return tx, path, nil
}

// choosePaymentPath prefers the invoice rail's own wallet and falls back to the exchange
// account. A rail whose balance cannot be read is treated as empty.
func (uc *SettlementUseCase) choosePaymentPath(ctx context.Context, amountSat int64) string {
	walletBalance, err := uc.invoices.WalletBalance(ctx)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("invoice rail balance unavailable")
	} else if walletBalance > amountSat {
		return pathInvoiceRail
	}

	if amountSat < uc.cfg.ExchangeMinWithdraw {
		return pathNone
	}

	liquidity, err := uc.exchange.Liquidity(ctx, domain.CurrencyBTC)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("exchange liquidity unavailable")
		return pathNone
	}
	if liquidity.GreaterThan(decimal.NewFromInt(amountSat)) {
		return pathExchangeRail
	}

	return pathNone
}
