package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
)

// ReconciliationUseCase compares stored balances with the transaction log.
type ReconciliationUseCase struct {
	ledger LedgerStore
	now    func() time.Time
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledger LedgerStore) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledger: ledger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	Username          string
	Currency          domain.Currency
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileUser derives each balance of username from its settled transactions
// and compares it with the stored amount.
func (uc *ReconciliationUseCase) ReconcileUser(ctx context.Context, username string) ([]*ReconciliationResult, error) {
	txs, err := uc.ledger.ListAllTransactions(ctx, username)
	if err != nil {
		return nil, storageError(err)
	}

	calculated := make(map[domain.Currency]decimal.Decimal, len(domain.Currencies))
	for _, tx := range txs {
		calculated[tx.Currency] = calculated[tx.Currency].Add(tx.NetEffect())
	}

	checkedAt := uc.now()
	results := make([]*ReconciliationResult, 0, len(domain.Currencies))
	for _, c := range domain.Currencies {
		recorded, err := uc.ledger.GetBalance(ctx, username, c)
		if err != nil {
			return nil, storageError(err)
		}

		diff := recorded.Sub(calculated[c])
		results = append(results, &ReconciliationResult{
			Username:          username,
			Currency:          c,
			RecordedBalance:   recorded,
			CalculatedBalance: calculated[c],
			Difference:        diff,
			IsReconciled:      diff.IsZero(),
			LastChecked:       checkedAt,
		})
	}

	return results, nil
}
