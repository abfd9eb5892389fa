package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
	"github.com/iho/lnstable/internal/usecase/mocks"
)

func TestAccountUseCase_GetBalanceDefaultsToBTC(t *testing.T) {
	ledger := mocks.NewMockLedgerStore()
	ledger.SetBalance(testUser, domain.CurrencyBTC, decimal.NewFromInt(42))
	uc := usecase.NewAccountUseCase(ledger)

	balance, err := uc.GetBalance(context.Background(), testUser, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Currency != domain.CurrencyBTC || !balance.Amount.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("unexpected balance %+v", balance)
	}

	if _, err := uc.GetBalance(context.Background(), testUser, "DOGE"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAccountUseCase_ListBalancesFillsMissingCurrencies(t *testing.T) {
	ledger := mocks.NewMockLedgerStore()
	ledger.SetBalance(testUser, domain.CurrencyUSD, decimal.RequireFromString("3.50"))
	uc := usecase.NewAccountUseCase(ledger)

	balances, err := uc.ListBalances(context.Background(), testUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(balances))
	}
	if balances[0].Currency != domain.CurrencyBTC || !balances[0].Amount.IsZero() {
		t.Errorf("expected zero BTC first, got %+v", balances[0])
	}
	if balances[1].Currency != domain.CurrencyUSD || !balances[1].Amount.Equal(decimal.RequireFromString("3.5")) {
		t.Errorf("unexpected USD balance %+v", balances[1])
	}
}

func TestAccountUseCase_Transactions(t *testing.T) {
	ledger := mocks.NewMockLedgerStore()
	for i := 0; i < 12; i++ {
		_, err := ledger.RecordTransaction(context.Background(), &domain.Transaction{
			ID:       fmt.Sprintf("tx-%02d", i),
			Username: testUser,
			Currency: domain.CurrencyBTC,
			Kind:     domain.TransactionKindDeposit,
			Status:   domain.TransactionStatusSettled,
			Value:    decimal.NewFromInt(int64(i + 1)),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	uc := usecase.NewAccountUseCase(ledger)

	t.Run("page", func(t *testing.T) {
		txs, err := uc.ListTransactions(context.Background(), testUser, 10, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(txs) != 2 || txs[0].ID != "tx-10" {
			t.Fatalf("unexpected page %v", txs)
		}
	})

	t.Run("limit above cap", func(t *testing.T) {
		if _, err := uc.ListTransactions(context.Background(), testUser, 0, 11); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("other user's transaction is not visible", func(t *testing.T) {
		if _, err := uc.GetTransaction(context.Background(), "mallory1", "tx-01"); !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Fatalf("expected ErrTransactionNotFound, got %v", err)
		}
	})

	t.Run("own transaction", func(t *testing.T) {
		tx, err := uc.GetTransaction(context.Background(), testUser, "tx-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !tx.Value.Equal(decimal.NewFromInt(2)) {
			t.Fatalf("unexpected value %s", tx.Value)
		}
	})
}
