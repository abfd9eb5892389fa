package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
)

const (
	depositHash   = "hash-deposit"
	depositBolt11 = "lnbc10u1pdeposit"
)

func expectDepositInvoice(h *settlementHarness, amount int64) {
	h.invoices.EXPECT().CreateInvoice(gomock.Any(), amount, "top up").Return(&domain.Invoice{
		PaymentHash:    depositHash,
		PaymentRequest: depositBolt11,
		Amount:         amount,
		Memo:           "top up",
		Expiry:         time.Hour,
	}, nil)
}

func expectPaidWebhook(h *settlementHarness, amount int64) {
	h.invoices.EXPECT().IsInvoicePaid(gomock.Any(), depositHash).Return(true, nil)
	h.invoices.EXPECT().DecodeInvoice(gomock.Any(), depositBolt11).
		Return(&domain.DecodedInvoice{PaymentHash: depositHash, AmountMsat: amount * 1000}, nil)
}

func webhook(amount int64) usecase.WebhookInput {
	return usecase.WebhookInput{Bolt11: depositBolt11, PaymentHash: depositHash, AmountMsat: amount * 1000}
}

func TestDeposit_CreditsExactlyOnce(t *testing.T) {
	h := newSettlementHarness(t)
	ctx := context.Background()

	expectDepositInvoice(h, 1_000)
	invoice, err := h.uc.RequestDeposit(ctx, usecase.DepositInput{Username: testUser, Value: sats(1_000), Description: "top up"})
	require.NoError(t, err)
	assert.Equal(t, depositBolt11, invoice.PaymentRequest)
	assert.False(t, invoice.ExpiresAt.IsZero())
	assert.Equal(t, 1, h.pending.Len())
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).IsZero(), "issuing an invoice must not credit")

	expectPaidWebhook(h, 1_000)
	result, err := h.uc.CreditPaidInvoice(ctx, webhook(1_000))
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	require.NotNil(t, result.Transaction)
	assert.Equal(t, depositHash, result.Transaction.ID)
	assert.Equal(t, "top up", result.Transaction.Description)
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(1_000)))

	expectPaidWebhook(h, 1_000)
	replay, err := h.uc.CreditPaidInvoice(ctx, webhook(1_000))
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(1_000)))
	assert.Len(t, h.ledger.Transactions(), 1)
}

func TestDeposit_RequestValidation(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.DepositInput
	}{
		{name: "zero", input: usecase.DepositInput{Username: testUser, Value: decimal.Zero}},
		{name: "negative", input: usecase.DepositInput{Username: testUser, Value: sats(-5)}},
		{name: "fractional sats", input: usecase.DepositInput{Username: testUser, Value: decimal.RequireFromString("10.5")}},
		{name: "long description", input: usecase.DepositInput{Username: testUser, Value: sats(10), Description: strings.Repeat("x", 65)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newSettlementHarness(t)

			_, err := h.uc.RequestDeposit(context.Background(), tt.input)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Zero(t, h.pending.Len())
		})
	}
}

func TestDeposit_RequestFailures(t *testing.T) {
	t.Run("rail error", func(t *testing.T) {
		h := newSettlementHarness(t)
		h.invoices.EXPECT().CreateInvoice(gomock.Any(), int64(1_000), "").Return(nil, errors.New("unauthorized"))

		_, err := h.uc.RequestDeposit(context.Background(), usecase.DepositInput{Username: testUser, Value: sats(1_000)})
		require.ErrorIs(t, err, domain.ErrRailFailure)
	})

	t.Run("tracker unavailable", func(t *testing.T) {
		h := newSettlementHarness(t)
		h.pending.RegisterFunc = func(context.Context, *domain.PendingCredit, time.Duration) error {
			return errors.New("redis: connection refused")
		}
		expectDepositInvoice(h, 1_000)

		_, err := h.uc.RequestDeposit(context.Background(), usecase.DepositInput{Username: testUser, Value: sats(1_000), Description: "top up"})
		require.ErrorIs(t, err, domain.ErrStorageFailure)
	})
}

func TestWebhook_RejectsMismatches(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.WebhookInput
		setup   func(h *settlementHarness)
		wantErr error
	}{
		{
			name:    "missing bolt11",
			input:   usecase.WebhookInput{PaymentHash: depositHash, AmountMsat: 1_000_000},
			setup:   func(*settlementHarness) {},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "not paid",
			input: webhook(1_000),
			setup: func(h *settlementHarness) {
				h.invoices.EXPECT().IsInvoicePaid(gomock.Any(), depositHash).Return(false, nil)
			},
			wantErr: domain.ErrPaymentMismatch,
		},
		{
			name:  "amount differs",
			input: webhook(2_000),
			setup: func(h *settlementHarness) {
				expectPaidWebhook(h, 1_000)
			},
			wantErr: domain.ErrPaymentMismatch,
		},
		{
			name:  "hash differs",
			input: usecase.WebhookInput{Bolt11: depositBolt11, PaymentHash: depositHash, AmountMsat: 1_000_000},
			setup: func(h *settlementHarness) {
				h.invoices.EXPECT().IsInvoicePaid(gomock.Any(), depositHash).Return(true, nil)
				h.invoices.EXPECT().DecodeInvoice(gomock.Any(), depositBolt11).
					Return(&domain.DecodedInvoice{PaymentHash: "other", AmountMsat: 1_000_000}, nil)
			},
			wantErr: domain.ErrPaymentMismatch,
		},
		{
			name:  "status unavailable",
			input: webhook(1_000),
			setup: func(h *settlementHarness) {
				h.invoices.EXPECT().IsInvoicePaid(gomock.Any(), depositHash).Return(false, errors.New("timeout"))
			},
			wantErr: domain.ErrRailFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newSettlementHarness(t)
			require.NoError(t, h.pending.Register(context.Background(), &domain.PendingCredit{
				CorrelationID: depositHash,
				Username:      testUser,
				Currency:      domain.CurrencyBTC,
				Kind:          domain.TransactionKindDeposit,
				Amount:        sats(1_000),
			}, time.Hour))
			tt.setup(h)

			_, err := h.uc.CreditPaidInvoice(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, h.pending.Len(), "pending credit must survive a rejected notification")
			assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).IsZero())
		})
	}
}

func TestWebhook_ExpiredPendingCreditIsNoop(t *testing.T) {
	h := newSettlementHarness(t)
	now := time.Now()
	h.pending.SetClock(func() time.Time { return now })
	require.NoError(t, h.pending.Register(context.Background(), &domain.PendingCredit{
		CorrelationID: depositHash,
		Username:      testUser,
		Currency:      domain.CurrencyBTC,
		Kind:          domain.TransactionKindDeposit,
		Amount:        sats(1_000),
	}, time.Minute))
	h.pending.SetClock(func() time.Time { return now.Add(2 * time.Minute) })

	expectPaidWebhook(h, 1_000)
	result, err := h.uc.CreditPaidInvoice(context.Background(), webhook(1_000))
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).IsZero())
}

func TestWebhook_CommitFailureRestoresPendingCredit(t *testing.T) {
	h := newSettlementHarness(t)
	ctx := context.Background()

	expectDepositInvoice(h, 1_000)
	_, err := h.uc.RequestDeposit(ctx, usecase.DepositInput{Username: testUser, Value: sats(1_000), Description: "top up"})
	require.NoError(t, err)

	h.ledger.ApplyFunc = func(context.Context, domain.LedgerBatch) error {
		return errors.New("serialization failure")
	}
	expectPaidWebhook(h, 1_000)
	_, err = h.uc.CreditPaidInvoice(ctx, webhook(1_000))
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, 1, h.pending.Len())

	// The rail redelivers and the store has recovered.
	h.ledger.ApplyFunc = nil
	expectPaidWebhook(h, 1_000)
	result, err := h.uc.CreditPaidInvoice(ctx, webhook(1_000))
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(1_000)))
}

func TestWebhook_ConcurrentDeliveriesCreditOnce(t *testing.T) {
	h := newSettlementHarness(t)
	require.NoError(t, h.pending.Register(context.Background(), &domain.PendingCredit{
		CorrelationID: depositHash,
		Username:      testUser,
		Currency:      domain.CurrencyBTC,
		Kind:          domain.TransactionKindDeposit,
		Amount:        sats(1_000),
	}, time.Hour))

	const deliveries = 8
	h.invoices.EXPECT().IsInvoicePaid(gomock.Any(), depositHash).Return(true, nil).Times(deliveries)
	h.invoices.EXPECT().DecodeInvoice(gomock.Any(), depositBolt11).
		Return(&domain.DecodedInvoice{PaymentHash: depositHash, AmountMsat: 1_000_000}, nil).Times(deliveries)

	var (
		wg       sync.WaitGroup
		credited atomic.Int64
	)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := h.uc.CreditPaidInvoice(context.Background(), webhook(1_000))
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if !result.Replayed {
				credited.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), credited.Load())
	assert.True(t, h.ledger.Balance(testUser, domain.CurrencyBTC).Equal(sats(1_000)))
}
