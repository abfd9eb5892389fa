package usecase_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/infrastructure/metrics"
	"github.com/iho/lnstable/internal/usecase"
	"github.com/iho/lnstable/internal/usecase/mocks"
)

const testUser = "satoshi1"

type settlementHarness struct {
	uc       *usecase.SettlementUseCase
	ledger   *mocks.MockLedgerStore
	pending  *mocks.MockPendingCreditTracker
	invoices *mocks.MockInvoiceRail
	exchange *mocks.MockExchangeRail
	metrics  *metrics.Metrics
}

func newSettlementHarness(t *testing.T) *settlementHarness {
	t.Helper()

	ctrl := gomock.NewController(t)
	h := &settlementHarness{
		ledger:   mocks.NewMockLedgerStore(),
		pending:  mocks.NewMockPendingCreditTracker(),
		invoices: mocks.NewMockInvoiceRail(ctrl),
		exchange: mocks.NewMockExchangeRail(ctrl),
		metrics:  metrics.New(prometheus.NewRegistry()),
	}

	cfg := usecase.SettlementConfig{
		SwapLimits: map[domain.Currency]domain.SwapLimits{
			domain.CurrencyBTC: {Min: decimal.NewFromInt(500), Max: decimal.NewFromInt(10_000_000)},
			domain.CurrencyUSD: {Min: decimal.RequireFromString("0.01"), Max: decimal.NewFromInt(1000)},
		},
		FeePercent:          decimal.NewFromInt(1),
		InvoiceExpiry:       time.Hour,
		ExchangeMinWithdraw: 1000,
	}

	h.uc = usecase.NewSettlementUseCase(
		h.ledger,
		h.pending,
		h.invoices,
		h.exchange,
		mocks.NewMockIDGenerator(),
		cfg,
		zerolog.Nop(),
		h.metrics,
	)
	return h
}

func sats(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func rate(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type decimalMatcher struct {
	want decimal.Decimal
}

// decEq matches decimals by value, ignoring their internal representation.
func decEq(d decimal.Decimal) gomock.Matcher {
	return decimalMatcher{want: d}
}

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "is decimal " + m.want.String()
}
