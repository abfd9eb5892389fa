package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
)

const (
	flowDeposit = "deposit"
	flowWebhook = "webhook"
)

// DepositInput represents input for requesting a deposit invoice.
type DepositInput struct {
	Username    string
	Value       decimal.Decimal
	Description string
}

// RequestDeposit issues an invoice for value sats and remembers whom to credit once it is paid.
// No balance changes here.
func (uc *SettlementUseCase) RequestDeposit(ctx context.Context, input DepositInput) (*domain.Invoice, error) {
	invoice, err := uc.requestDeposit(ctx, input)
	if err != nil {
		uc.recordError(flowDeposit, err)
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.DepositRequests.Inc()
	}
	return invoice, nil
}

func (uc *SettlementUseCase) requestDeposit(ctx context.Context, input DepositInput) (*domain.Invoice, error) {
	if !input.Value.IsInteger() || input.Value.LessThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: value must be a whole number of at least 1 sat", domain.ErrValidation)
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	invoice, err := uc.invoices.CreateInvoice(ctx, input.Value.IntPart(), input.Description)
	if err != nil {
		return nil, railError("create invoice", err)
	}
	if invoice == nil || invoice.PaymentHash == "" || invoice.PaymentRequest == "" {
		return nil, railError("create invoice", nil)
	}

	ttl := invoice.Expiry
	if ttl <= 0 {
		ttl = uc.cfg.InvoiceExpiry
	}

	now := uc.now()
	credit := &domain.PendingCredit{
		CorrelationID: invoice.PaymentHash,
		Username:      input.Username,
		Currency:      domain.CurrencyBTC,
		Kind:          domain.TransactionKindDeposit,
		Amount:        input.Value,
		Description:   input.Description,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
	if err := uc.pending.Register(ctx, credit, ttl); err != nil {
		return nil, storageError(err)
	}

	invoice.Expiry = ttl
	invoice.ExpiresAt = credit.ExpiresAt

	uc.logger.Info().
		Str("flow", flowDeposit).
		Str("username", input.Username).
		Str("payment_hash", invoice.PaymentHash).
		Str("amount", input.Value.String()).
		Msg("deposit invoice issued")

	return invoice, nil
}

// WebhookInput is the invoice rail's paid-invoice notification.
type WebhookInput struct {
	Bolt11      string
	PaymentHash string
	AmountMsat  int64
}

// WebhookResult tells whether the notification credited a balance.
// Replayed is true when the pending credit was already consumed or has expired.
type WebhookResult struct {
	Transaction *domain.Transaction
	Replayed    bool
}

// CreditPaidInvoice credits the balance behind a paid deposit invoice exactly once.
func (uc *SettlementUseCase) CreditPaidInvoice(ctx context.Context, input WebhookInput) (*WebhookResult, error) {
	result, err := uc.creditPaidInvoice(ctx, input)

	outcome := "credited"
	switch {
	case err != nil:
		outcome = errorCategory(err)
		uc.recordError(flowWebhook, err)
	case result.Replayed:
		outcome = "replayed"
	}
	if uc.metrics != nil {
		uc.metrics.WebhookCredits.WithLabelValues(outcome).Inc()
	}

	return result, err
}

func (uc *SettlementUseCase) creditPaidInvoice(ctx context.Context, input WebhookInput) (*WebhookResult, error) {
	bolt11 := strings.TrimSpace(input.Bolt11)
	if bolt11 == "" {
		return nil, fmt.Errorf("%w: bolt11 is required", domain.ErrValidation)
	}

	paid, err := uc.invoices.IsInvoicePaid(ctx, input.PaymentHash)
	if err != nil {
		return nil, railError("invoice status", err)
	}
	if !paid {
		return nil, fmt.Errorf("%w: invoice %s is not paid", domain.ErrPaymentMismatch, input.PaymentHash)
	}

	decoded, err := uc.invoices.DecodeInvoice(ctx, bolt11)
	if err != nil || decoded == nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentMismatch, err)
	}
	if decoded.PaymentHash != input.PaymentHash {
		return nil, fmt.Errorf("%w: payment hash does not match invoice", domain.ErrPaymentMismatch)
	}
	if decoded.AmountMsat != input.AmountMsat {
		return nil, fmt.Errorf("%w: amount %d msat does not match invoice amount %d msat",
			domain.ErrPaymentMismatch, input.AmountMsat, decoded.AmountMsat)
	}

	credit, err := uc.pending.Consume(ctx, decoded.PaymentHash)
	if errors.Is(err, domain.ErrPendingCreditNotFound) {
		uc.logger.Info().Str("payment_hash", decoded.PaymentHash).Msg("paid invoice already processed or expired")
		return &WebhookResult{Replayed: true}, nil
	}
	if err != nil {
		return nil, storageError(err)
	}

	now := uc.now()
	tx := &domain.Transaction{
		ID:          credit.CorrelationID,
		Username:    credit.Username,
		Destination: credit.Username,
		Currency:    credit.Currency,
		Value:       credit.Amount,
		Fee:         decimal.Zero,
		Status:      domain.TransactionStatusSettled,
		Kind:        credit.Kind,
		Description: credit.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = uc.ledger.Apply(ctx, domain.LedgerBatch{
		Adjustments: []domain.Adjustment{
			{Key: domain.BalanceKey{Username: credit.Username, Currency: credit.Currency}, Delta: credit.Amount},
		},
		Transactions: []*domain.Transaction{tx},
	})
	if err != nil {
		uc.restorePendingCredit(ctx, credit, now)
		return nil, storageError(err)
	}

	uc.logger.Info().
		Str("flow", flowWebhook).
		Str("username", credit.Username).
		Str("payment_hash", credit.CorrelationID).
		Str("amount", credit.Amount.String()).
		Msg("deposit credited")

	return &WebhookResult{Transaction: tx}, nil
}

// restorePendingCredit puts a consumed entry back so a redelivered notification can credit it.
func (uc *SettlementUseCase) restorePendingCredit(ctx context.Context, credit *domain.PendingCredit, now time.Time) {
	ttl := credit.RemainingTTL(now)
	if ttl <= 0 {
		ttl = time.Minute
	}

	if err := uc.pending.Register(context.WithoutCancel(ctx), credit, ttl); err != nil {
		uc.logger.Error().
			Err(err).
			Bool("critical", true).
			Str("payment_hash", credit.CorrelationID).
			Str("username", credit.Username).
			Str("amount", credit.Amount.String()).
			Msg("paid invoice could not be credited nor re-registered")
	}
}
