package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
)

func TestTransactionFromDomain(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tx := &domain.Transaction{
		ID:          "tx-1",
		Username:    "satoshi1",
		Destination: "satoshi1",
		Currency:    domain.CurrencyBTC,
		Status:      domain.TransactionStatusSettled,
		Kind:        domain.TransactionKindWithdraw,
		Value:       decimal.NewFromInt(1000),
		Fee:         decimal.NewFromInt(10),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	got := TransactionFromDomain(tx)
	if got.TxID != "tx-1" || got.Type != "withdraw" || got.Currency != "BTC" || got.Status != "settled" {
		t.Fatalf("unexpected response: %+v", got)
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := fields["description"]; ok {
		t.Fatalf("empty description should be omitted: %s", raw)
	}
	if fields["value"] != "1000" {
		t.Fatalf("value should be encoded as a decimal string, got %v", fields["value"])
	}
}

func TestBalancesFromDomain(t *testing.T) {
	got := BalancesFromDomain([]*domain.Balance{
		{Currency: domain.CurrencyBTC, Amount: decimal.NewFromInt(5)},
		{Currency: domain.CurrencyUSD, Amount: decimal.RequireFromString("1.25")},
	})

	if len(got.Balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(got.Balances))
	}
	if got.Balances[1].Currency != "USD" || !got.Balances[1].Balance.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("unexpected USD balance: %+v", got.Balances[1])
	}
}

func TestWebhookFromUseCase(t *testing.T) {
	credited := WebhookFromUseCase(&usecase.WebhookResult{Transaction: &domain.Transaction{ID: "hash1"}})
	if credited.Status != WebhookStatusCredited || credited.TxID != "hash1" {
		t.Fatalf("unexpected credited response: %+v", credited)
	}

	replayed := WebhookFromUseCase(&usecase.WebhookResult{Replayed: true})
	if replayed.Status != WebhookStatusReplayed || replayed.TxID != "" {
		t.Fatalf("unexpected replayed response: %+v", replayed)
	}
}

func TestReconciliationsFromUseCase(t *testing.T) {
	got := ReconciliationsFromUseCase([]*usecase.ReconciliationResult{{
		Currency:          domain.CurrencyUSD,
		RecordedBalance:   decimal.NewFromInt(10),
		CalculatedBalance: decimal.NewFromInt(9),
		Difference:        decimal.NewFromInt(1),
	}})

	if len(got) != 1 || got[0].IsReconciled || !got[0].Difference.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected reconciliation response: %+v", got)
	}
}
