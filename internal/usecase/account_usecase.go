package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
)

// AccountUseCase serves read-only balance and transaction queries.
type AccountUseCase struct {
	ledger LedgerStore
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(ledger LedgerStore) *AccountUseCase {
	return &AccountUseCase{ledger: ledger}
}

// GetBalance returns one balance. An empty currency means BTC.
func (uc *AccountUseCase) GetBalance(ctx context.Context, username, currency string) (*domain.Balance, error) {
	c := domain.CurrencyBTC
	if currency != "" {
		parsed, err := domain.ParseCurrency(currency)
		if err != nil {
			return nil, err
		}
		c = parsed
	}

	amount, err := uc.ledger.GetBalance(ctx, username, c)
	if err != nil {
		return nil, storageError(err)
	}

	return &domain.Balance{Username: username, Currency: c, Amount: amount}, nil
}

// ListBalances returns a balance for every supported currency, zero where no row exists.
func (uc *AccountUseCase) ListBalances(ctx context.Context, username string) ([]*domain.Balance, error) {
	stored, err := uc.ledger.ListBalances(ctx, username)
	if err != nil {
		return nil, storageError(err)
	}

	byCurrency := make(map[domain.Currency]*domain.Balance, len(stored))
	for _, b := range stored {
		byCurrency[b.Currency] = b
	}

	balances := make([]*domain.Balance, 0, len(domain.Currencies))
	for _, c := range domain.Currencies {
		if b, ok := byCurrency[c]; ok {
			balances = append(balances, b)
			continue
		}
		balances = append(balances, &domain.Balance{Username: username, Currency: c, Amount: decimal.Zero})
	}

	return balances, nil
}

// GetTransaction returns one of the user's transactions.
func (uc *AccountUseCase) GetTransaction(ctx context.Context, username, txid string) (*domain.Transaction, error) {
	if txid == "" {
		return nil, fmt.Errorf("%w: txid is required", domain.ErrValidation)
	}
	return uc.ledger.GetTransaction(ctx, username, txid)
}

// ListTransactions pages through the user's transactions oldest first.
func (uc *AccountUseCase) ListTransactions(ctx context.Context, username string, offset, limit int) ([]*domain.Transaction, error) {
	offset, limit, err := domain.ValidatePagination(offset, limit)
	if err != nil {
		return nil, err
	}

	txs, err := uc.ledger.ListTransactions(ctx, username, offset, limit)
	if err != nil {
		return nil, storageError(err)
	}
	return txs, nil
}
