package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
)

func TestSwap_LiquiditySufficient(t *testing.T) {
	h := newSettlementHarness(t)
	h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(10_000))

	h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(1_000_000), nil)
	h.exchange.EXPECT().
		Swap(gomock.Any(), domain.CurrencyBTC, domain.CurrencyUSD, decEq(sats(5_000))).
		Return(&domain.SwapResult{InputAmount: sats(5_000), OutputAmount: sats(4_950), Rate: rate("0.99")}, nil)

	out, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(5_000)})
	require.NoError(t, err)

	assert.Equal(t, domain.CurrencyUSD, out.Currency)
	assert.True(t, out.Amount.Equal(sats(4_950)), "output %s", out.Amount)
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(5_000)))
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyUSD).Equal(sats(4_950)))

	txs := h.ledger.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TransactionKindWithdraw, txs[0].Kind)
	assert.Equal(t, domain.CurrencyBTC, txs[0].Currency)
	assert.True(t, txs[0].Value.Equal(sats(5_000)))
	assert.True(t, txs[0].Fee.IsZero())
	assert.Equal(t, domain.TransactionKindDeposit, txs[1].Kind)
	assert.Equal(t, domain.CurrencyUSD, txs[1].Currency)
	assert.True(t, txs[1].Value.Equal(sats(4_950)))
	assert.NotEqual(t, txs[0].ID, txs[1].ID)
}

func TestSwap_SyntheticToBase(t *testing.T) {
	h := newSettlementHarness(t)
	h.ledger.SetBalance(testUser, domain.CurrencyUSD, decimal.RequireFromString("25.50"))

	h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyUSD).Return(decimal.NewFromInt(1000), nil)
	h.exchange.EXPECT().
		Swap(gomock.Any(), domain.CurrencyUSD, domain.CurrencyBTC, decEq(decimal.RequireFromString("10.25"))).
		Return(&domain.SwapResult{OutputAmount: sats(15_000), Rate: rate("1463.41")}, nil)

	// Sub-cent input is truncated to cents.
	out, err := h.uc.Swap(context.Background(), usecase.SwapInput{
		Username: testUser,
		Currency: "btc",
		Value:    decimal.RequireFromString("10.259"),
	})
	require.NoError(t, err)
	assert.True(t, out.Amount.Equal(sats(15_000)))
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyUSD).Equal(decimal.RequireFromString("15.25")))
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(15_000)))
}

func TestSwap_MinimumBoundary(t *testing.T) {
	t.Run("exactly minimum succeeds", func(t *testing.T) {
		h := newSettlementHarness(t)
		h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(500))

		h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(1_000), nil)
		h.exchange.EXPECT().Swap(gomock.Any(), domain.CurrencyBTC, domain.CurrencyUSD, decEq(sats(500))).
			Return(&domain.SwapResult{OutputAmount: decimal.RequireFromString("0.33"), Rate: rate("0.00066")}, nil)

		_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(500)})
		require.NoError(t, err)
		assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).IsZero())
	})

	t.Run("one unit below minimum is rejected before any balance read", func(t *testing.T) {
		h := newSettlementHarness(t)
		h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(10_000))

		_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(499)})
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, h.ledger.GetBalanceCalls.Load())
		assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(10_000)))
	})

	t.Run("above maximum is rejected", func(t *testing.T) {
		h := newSettlementHarness(t)

		_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "BTC", Value: decimal.NewFromInt(1001)})
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, h.ledger.GetBalanceCalls.Load())
	})

	t.Run("unsupported currency", func(t *testing.T) {
		h := newSettlementHarness(t)

		_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "EUR", Value: sats(1000)})
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestSwap_MissingBalanceRow(t *testing.T) {
	h := newSettlementHarness(t)

	_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(1_000)})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, h.ledger.HasBalanceRow(testUser, domain.CurrencyBTC), "zero row should be created lazily")
	assert.Empty(t, h.ledger.Transactions())
}

func TestSwap_CompensatesWhenSwapFails(t *testing.T) {
	tests := []struct {
		name   string
		result *domain.SwapResult
		err    error
	}{
		{name: "rail error", err: errors.New("502 bad gateway")},
		{name: "no result"},
		{name: "no rate", result: &domain.SwapResult{OutputAmount: sats(4_950)}},
		{name: "zero output", result: &domain.SwapResult{OutputAmount: decimal.Zero, Rate: rate("0.99")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newSettlementHarness(t)
			before := decimal.RequireFromString("10000")
			h.ledger.SetBalance(testUser, domain.CurrencyBTC, before)

			h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(1_000_000), nil)
			h.exchange.EXPECT().Swap(gomock.Any(), domain.CurrencyBTC, domain.CurrencyUSD, decEq(sats(5_000))).Return(tt.result, tt.err)

			_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(5_000)})
			require.ErrorIs(t, err, domain.ErrRailFailure)

			after := h.ledger.Balance(testUser, domain.CurrencyBTC)
			assert.Equal(t, before.String(), after.String())
			assert.True(t, h.ledger.Balance(testUser, domain.CurrencyUSD).IsZero())
			assert.Empty(t, h.ledger.Transactions())
			assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Compensations.WithLabelValues("swap")))
		})
	}
}

func TestSwap_TopUpChargesActualFeeOnShortfall(t *testing.T) {
	h := newSettlementHarness(t)
	h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(10_000))

	// Shortfall is 3000 sats, so the estimated fee is 30 and the rail charges 12.
	gomock.InOrder(
		h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(2_000), nil),
		h.exchange.EXPECT().RequestDeposit(gomock.Any(), int64(3_000)).Return("lnbc30u1topup", nil),
		h.invoices.EXPECT().PayInvoice(gomock.Any(), "lnbc30u1topup").
			Return(&domain.PaymentResult{PaymentID: "hash-topup", FeePaid: sats(12)}, nil),
		h.exchange.EXPECT().Swap(gomock.Any(), domain.CurrencyBTC, domain.CurrencyUSD, decEq(sats(5_000))).
			Return(&domain.SwapResult{OutputAmount: sats(4_950), Rate: rate("0.99")}, nil),
	)

	_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(5_000)})
	require.NoError(t, err)

	// Conservation: the source lost exactly value plus the fee that was charged.
	txs := h.ledger.Transactions()
	require.Len(t, txs, 2)
	charged := txs[0].Value.Add(txs[0].Fee)
	assert.True(t, txs[0].Fee.Equal(sats(12)), "fee %s", txs[0].Fee)
	assert.True(t, sats(10_000).Sub(h.ledger.Balance(testUser, domain.CurrencyBTC)).Equal(charged))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SwapTopUps))
}

func TestSwap_TopUpActualFeeAboveBalanceKeepsEstimate(t *testing.T) {
	h := newSettlementHarness(t)
	// 5000 value + 30 estimated fee leaves nothing for a larger actual fee.
	h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(5_030))

	h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(2_000), nil)
	h.exchange.EXPECT().RequestDeposit(gomock.Any(), int64(3_000)).Return("lnbc30u1topup", nil)
	h.invoices.EXPECT().PayInvoice(gomock.Any(), "lnbc30u1topup").
		Return(&domain.PaymentResult{PaymentID: "hash-topup", FeePaid: sats(45)}, nil)
	h.exchange.EXPECT().Swap(gomock.Any(), domain.CurrencyBTC, domain.CurrencyUSD, decEq(sats(5_000))).
		Return(&domain.SwapResult{OutputAmount: sats(4_950), Rate: rate("0.99")}, nil)

	_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(5_000)})
	require.NoError(t, err)

	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).IsZero())
	assert.True(t, h.ledger.Transactions()[0].Fee.Equal(sats(30)))
}

func TestSwap_TopUpFailuresCompensate(t *testing.T) {
	t.Run("deposit request fails", func(t *testing.T) {
		h := newSettlementHarness(t)
		h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(10_000))

		h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(0), nil)
		h.exchange.EXPECT().RequestDeposit(gomock.Any(), int64(5_000)).Return("", errors.New("timeout"))

		_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(5_000)})
		require.ErrorIs(t, err, domain.ErrRailFailure)
		assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(10_000)))
	})

	t.Run("payment fails", func(t *testing.T) {
		h := newSettlementHarness(t)
		h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(10_000))

		h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(0), nil)
		h.exchange.EXPECT().RequestDeposit(gomock.Any(), int64(5_000)).Return("lnbc50u1topup", nil)
		h.invoices.EXPECT().PayInvoice(gomock.Any(), "lnbc50u1topup").Return(nil, errors.New("no route"))

		_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(5_000)})
		require.ErrorIs(t, err, domain.ErrRailFailure)
		assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(10_000)))
		assert.Empty(t, h.ledger.Transactions())
	})

	t.Run("fee pushes total above balance", func(t *testing.T) {
		h := newSettlementHarness(t)
		h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(5_000))

		h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(0), nil)

		_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(5_000)})
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(5_000)))
	})
}

func TestSwap_SyntheticShortfallIsRailFailure(t *testing.T) {
	h := newSettlementHarness(t)
	h.ledger.SetBalance(testUser, domain.CurrencyUSD, decimal.NewFromInt(100))

	h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyUSD).Return(decimal.NewFromInt(10), nil)

	_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "BTC", Value: decimal.NewFromInt(50)})
	require.ErrorIs(t, err, domain.ErrRailFailure)
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyUSD).Equal(decimal.NewFromInt(100)))
}

func TestSwap_LedgerCommitFailureCompensates(t *testing.T) {
	h := newSettlementHarness(t)
	h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(10_000))
	h.ledger.ApplyFunc = func(context.Context, domain.LedgerBatch) error {
		return errors.New("connection reset")
	}

	h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(1_000_000), nil)
	h.exchange.EXPECT().Swap(gomock.Any(), domain.CurrencyBTC, domain.CurrencyUSD, decEq(sats(5_000))).
		Return(&domain.SwapResult{OutputAmount: sats(4_950), Rate: rate("0.99")}, nil)

	_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(5_000)})
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(10_000)))
}

func TestSwap_CompensationFailureIsCritical(t *testing.T) {
	h := newSettlementHarness(t)
	h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(10_000))

	h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(1_000_000), nil)
	h.exchange.EXPECT().Swap(gomock.Any(), domain.CurrencyBTC, domain.CurrencyUSD, decEq(sats(5_000))).
		DoAndReturn(func(context.Context, domain.Currency, domain.Currency, decimal.Decimal) (*domain.SwapResult, error) {
			h.ledger.AdjustBalanceFunc = func(context.Context, string, domain.Currency, decimal.Decimal) (decimal.Decimal, error) {
				return decimal.Zero, errors.New("database is gone")
			}
			return nil, errors.New("exchange down")
		})

	_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(5_000)})
	require.ErrorIs(t, err, domain.ErrRailFailure)
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CompensationFailures))
}

func TestSwap_ConcurrentRequestsNeverOverspend(t *testing.T) {
	h := newSettlementHarness(t)
	const (
		workers = 12
		value   = 3_000
		start   = 10_000
	)
	h.ledger.SetBalance(testUser, domain.CurrencyBTC, sats(start))

	h.exchange.EXPECT().Liquidity(gomock.Any(), domain.CurrencyBTC).Return(sats(1_000_000), nil).AnyTimes()
	h.exchange.EXPECT().Swap(gomock.Any(), domain.CurrencyBTC, domain.CurrencyUSD, decEq(sats(value))).
		Return(&domain.SwapResult{OutputAmount: decimal.RequireFromString("2.00"), Rate: rate("0.00066")}, nil).
		AnyTimes()

	var (
		wg        sync.WaitGroup
		successes atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.uc.Swap(context.Background(), usecase.SwapInput{Username: testUser, Currency: "USD", Value: sats(value)})
			if err == nil {
				successes.Add(1)
				return
			}
			if !errors.Is(err, domain.ErrInsufficientFunds) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, successes.Load(), int64(start/value))
	remaining := h.ledger.Balance(testUser, domain.CurrencyBTC)
	assert.False(t, remaining.IsNegative())
	assert.True(t, remaining.Equal(sats(start-successes.Load()*value)))
}
