package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/infrastructure/metrics"
)

// SettlementConfig holds the knobs of the settlement flows.
type SettlementConfig struct {
	SwapLimits          map[domain.Currency]domain.SwapLimits
	FeePercent          decimal.Decimal
	InvoiceExpiry       time.Duration
	ExchangeMinWithdraw int64
}

// SettlementUseCase orchestrates balance mutations around the invoice and exchange rails.
// Every debit it applies is either committed together with its transaction records or
// reversed before an error is returned.
type SettlementUseCase struct {
	ledger   LedgerStore
	pending  PendingCreditTracker
	invoices InvoiceRail
	exchange ExchangeRail
	idGen    IDGenerator
	cfg      SettlementConfig
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	ledger LedgerStore,
	pending PendingCreditTracker,
	invoices InvoiceRail,
	exchange ExchangeRail,
	idGen IDGenerator,
	cfg SettlementConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *SettlementUseCase {
	if cfg.InvoiceExpiry <= 0 {
		cfg.InvoiceExpiry = DefaultInvoiceExpiry
	}
	if cfg.ExchangeMinWithdraw <= 0 {
		cfg.ExchangeMinWithdraw = DefaultExchangeMinWithdraw
	}

	return &SettlementUseCase{
		ledger:   ledger,
		pending:  pending,
		invoices: invoices,
		exchange: exchange,
		idGen:    idGen,
		cfg:      cfg,
		logger:   logger.With().Str("component", "settlement").Logger(),
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// compensate returns amount to a balance debited earlier in the same operation.
// cause is the error that made the reversal necessary and is always part of the result.
func (uc *SettlementUseCase) compensate(
	ctx context.Context,
	flow, username string,
	currency domain.Currency,
	amount decimal.Decimal,
	cause error,
) error {
	if uc.metrics != nil {
		uc.metrics.Compensations.WithLabelValues(flow).Inc()
	}

	// The caller's context may already be canceled; the reversal must still land.
	restoreCtx := context.WithoutCancel(ctx)

	if _, err := uc.ledger.AdjustBalance(restoreCtx, username, currency, amount); err != nil {
		uc.logger.Error().
			Err(err).
			AnErr("cause", cause).
			Bool("critical", true).
			Str("flow", flow).
			Str("username", username).
			Str("currency", currency.String()).
			Str("amount", amount.String()).
			Msg("compensation failed, balance left debited")

		if uc.metrics != nil {
			uc.metrics.CompensationFailures.Inc()
		}

		return errors.Join(cause, fmt.Errorf("%w: compensation failed: %w", domain.ErrStorageFailure, err))
	}

	uc.logger.Warn().
		AnErr("cause", cause).
		Str("flow", flow).
		Str("username", username).
		Str("currency", currency.String()).
		Str("amount", amount.String()).
		Msg("debit compensated")

	return cause
}

// debit removes amount from a balance, mapping anything but a funds shortfall to a storage failure.
func (uc *SettlementUseCase) debit(ctx context.Context, username string, currency domain.Currency, amount decimal.Decimal) error {
	if _, err := uc.ledger.AdjustBalance(ctx, username, currency, amount.Neg()); err != nil {
		return storageError(err)
	}
	return nil
}

func (uc *SettlementUseCase) recordError(flow string, err error) {
	if uc.metrics == nil || err == nil {
		return
	}
	uc.metrics.SettlementErrors.WithLabelValues(flow, errorCategory(err)).Inc()
}

func railError(op string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s returned no usable result", domain.ErrRailFailure, op)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrRailFailure, op, err)
}

// storageError wraps store errors that are not already categorized.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInsufficientFunds) || errors.Is(err, domain.ErrStorageFailure) ||
		errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
}

func errorCategory(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInvalidInvoice):
		return "invalid_invoice"
	case errors.Is(err, domain.ErrPaymentMismatch):
		return "payment_mismatch"
	case errors.Is(err, domain.ErrStorageFailure):
		return "storage"
	case errors.Is(err, domain.ErrRailFailure):
		return "rail"
	default:
		return "unknown"
	}
}
