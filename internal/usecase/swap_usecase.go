package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
)

const flowSwap = "swap"

// SwapInput represents input for a swap into Currency.
type SwapInput struct {
	Username string
	Currency string
	Value    decimal.Decimal
}

// SwapOutput is what the target balance received.
type SwapOutput struct {
	Amount   decimal.Decimal
	Currency domain.Currency
}

// Swap moves value out of the counterpart currency of input.Currency into input.Currency
// through the exchange rail. The fee is charged only on the part of value that has to be
// moved onto the exchange over lightning because its own liquidity falls short.
func (uc *SettlementUseCase) Swap(ctx context.Context, input SwapInput) (*SwapOutput, error) {
	start := time.Now()

	target, err := domain.ParseCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	source := target.Counterpart()

	value := input.Value.Truncate(source.Precision())
	if err := uc.cfg.SwapLimits[source].Check(value, source); err != nil {
		return nil, err
	}

	out, err := uc.swap(ctx, input.Username, source, target, value)

	outcome := "success"
	if err != nil {
		outcome = errorCategory(err)
		uc.recordError(flowSwap, err)
	}
	if uc.metrics != nil {
		uc.metrics.Swaps.WithLabelValues(source.String(), outcome).Inc()
		uc.metrics.SwapDuration.Observe(time.Since(start).Seconds())
	}

	return out, err
}

func (uc *SettlementUseCase) swap(
	ctx context.Context,
	username string,
	source, target domain.Currency,
	value decimal.Decimal,
) (*SwapOutput, error) {
	log := uc.logger.With().
		Str("flow", flowSwap).
		Str("username", username).
		Str("source", source.String()).
		Str("target", target.String()).
		Str("value", value.String()).
		Logger()

	// 1. Check the source balance, creating the row on first reference.
	if err := uc.ledger.EnsureBalance(ctx, username, source); err != nil {
		return nil, storageError(err)
	}
	balance, err := uc.ledger.GetBalance(ctx, username, source)
	if err != nil {
		return nil, storageError(err)
	}
	if value.GreaterThan(balance) {
		return nil, fmt.Errorf("%w: balance %s %s is below %s", domain.ErrInsufficientFunds, balance, source, value)
	}

	// 2. Check the exchange can cover value on its own.
	liquidity, err := uc.exchange.Liquidity(ctx, source)
	if err != nil {
		return nil, railError("exchange liquidity", err)
	}

	fee := decimal.Zero
	if value.GreaterThan(liquidity) {
		fee, err = uc.topUpExchange(ctx, username, source, value, balance, liquidity)
		if err != nil {
			return nil, err
		}
	} else if err := uc.debit(ctx, username, source, value); err != nil {
		return nil, err
	}
	debited := value.Add(fee)

	// 3. Swap on the exchange.
	result, err := uc.exchange.Swap(ctx, source, target, value)
	if err != nil || !result.Usable() {
		return nil, uc.compensate(ctx, flowSwap, username, source, debited, railError("exchange swap", err))
	}

	// 4. Credit the target and record both legs atomically.
	now := uc.now()
	output := result.OutputAmount.Round(target.Precision())
	withdrawTx := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		Username:    username,
		Destination: username,
		Currency:    source,
		Value:       value,
		Fee:         fee,
		Status:      domain.TransactionStatusSettled,
		Kind:        domain.TransactionKindWithdraw,
		Description: fmt.Sprintf("swap %s to %s", source, target),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	depositTx := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		Username:    username,
		Destination: username,
		Currency:    target,
		Value:       output,
		Fee:         decimal.Zero,
		Status:      domain.TransactionStatusSettled,
		Kind:        domain.TransactionKindDeposit,
		Description: fmt.Sprintf("swap %s to %s", source, target),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = uc.ledger.Apply(ctx, domain.LedgerBatch{
		Adjustments: []domain.Adjustment{
			{Key: domain.BalanceKey{Username: username, Currency: target}, Delta: output},
		},
		Transactions: []*domain.Transaction{withdrawTx, depositTx},
	})
	if err != nil {
		log.Error().Err(err).Str("output", output.String()).Msg("swap executed on exchange but ledger commit failed")
		return nil, uc.compensate(ctx, flowSwap, username, source, debited, storageError(err))
	}

	if uc.metrics != nil && fee.Sign() > 0 {
		f, _ := fee.Float64()
		uc.metrics.FeesCharged.WithLabelValues(source.String()).Add(f)
	}

	log.Info().
		Str("fee", fee.String()).
		Str("output", output.String()).
		Str("rate", result.Rate.String()).
		Msg("swap settled")

	return &SwapOutput{Amount: output, Currency: target}, nil
}

// topUpExchange moves the liquidity shortfall onto the exchange over lightning and debits
// value plus the fee actually charged. It returns that fee. On failure nothing stays debited.
func (uc *SettlementUseCase) topUpExchange(
	ctx context.Context,
	username string,
	source domain.Currency,
	value, balance, liquidity decimal.Decimal,
) (decimal.Decimal, error) {
	if source != domain.CurrencyBTC {
		return decimal.Zero, fmt.Errorf("%w: exchange liquidity %s %s is below %s", domain.ErrRailFailure, liquidity, source, value)
	}

	shortfall := value.Sub(liquidity)
	estimate := domain.Fee(shortfall, uc.cfg.FeePercent, source)
	debited := value.Add(estimate)

	if debited.GreaterThan(balance) {
		return decimal.Zero, fmt.Errorf("%w: balance %s %s is below %s including fee", domain.ErrInsufficientFunds, balance, source, debited)
	}
	if err := uc.debit(ctx, username, source, debited); err != nil {
		return decimal.Zero, err
	}

	paymentRequest, err := uc.exchange.RequestDeposit(ctx, shortfall.IntPart())
	if err != nil || paymentRequest == "" {
		return decimal.Zero, uc.compensate(ctx, flowSwap, username, source, debited, railError("exchange deposit", err))
	}

	paid, err := uc.invoices.PayInvoice(ctx, paymentRequest)
	if err != nil || paid == nil || paid.PaymentID == "" {
		return decimal.Zero, uc.compensate(ctx, flowSwap, username, source, debited, railError("invoice payment", err))
	}

	if uc.metrics != nil {
		uc.metrics.SwapTopUps.Inc()
	}

	actual := paid.FeePaid.Round(source.Precision())
	if actual.IsNegative() || actual.Equal(estimate) {
		return estimate, nil
	}

	// Settle the difference between the estimated and the actual fee.
	if _, err := uc.ledger.AdjustBalance(ctx, username, source, estimate.Sub(actual)); err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			uc.logger.Warn().
				Str("username", username).
				Str("estimate", estimate.String()).
				Str("actual", actual.String()).
				Msg("actual top-up fee exceeds balance, charging estimate")
			return estimate, nil
		}
		return decimal.Zero, uc.compensate(ctx, flowSwap, username, source, debited, storageError(err))
	}

	return actual, nil
}
