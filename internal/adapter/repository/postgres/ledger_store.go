package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/infrastructure/postgres/generated"
	"github.com/iho/lnstable/internal/usecase"
)

var _ usecase.LedgerStore = (*LedgerStore)(nil)

// LedgerStore implements usecase.LedgerStore on PostgreSQL. Every balance
// mutation is a single conditional upsert, so the row lock Postgres takes
// serializes concurrent changes to one (username, currency) pair and a debit
// can never drive a balance below zero.
type LedgerStore struct {
	pool    pgxPool
	queries *generated.Queries
	txm     *TxManager
	retrier *Retrier
	now     func() time.Time
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *pgxpool.Pool, logger zerolog.Logger) *LedgerStore {
	return newLedgerStore(pool, logger)
}

func newLedgerStore(pool pgxPool, logger zerolog.Logger) *LedgerStore {
	return &LedgerStore{
		pool:    pool,
		queries: generated.New(pool),
		txm:     newTxManagerWithPool(pool),
		retrier: NewRetrier(logger.With().Str("component", "ledger_store").Logger()),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the database connection.
func (s *LedgerStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *LedgerStore) GetBalance(ctx context.Context, username string, currency domain.Currency) (decimal.Decimal, error) {
	amount, err := s.queries.GetBalance(ctx, generated.GetBalanceParams{
		Username: username,
		Currency: currency.String(),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance %s/%s: %w", username, currency, err)
	}
	return amount, nil
}

func (s *LedgerStore) EnsureBalance(ctx context.Context, username string, currency domain.Currency) error {
	err := s.queries.EnsureBalance(ctx, generated.EnsureBalanceParams{
		Username:  username,
		Currency:  currency.String(),
		CreatedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("ensure balance %s/%s: %w", username, currency, err)
	}
	return nil
}

func (s *LedgerStore) ListBalances(ctx context.Context, username string) ([]*domain.Balance, error) {
	rows, err := s.queries.ListBalances(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list balances %s: %w", username, err)
	}

	balances := make([]*domain.Balance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, &domain.Balance{
			Username:  row.Username,
			Currency:  domain.Currency(row.Currency),
			Amount:    row.Balance,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return balances, nil
}

func (s *LedgerStore) AdjustBalance(
	ctx context.Context,
	username string,
	currency domain.Currency,
	delta decimal.Decimal,
) (decimal.Decimal, error) {
	var next decimal.Decimal
	err := s.retrier.Retry(ctx, func() error {
		var err error
		next, err = s.adjust(ctx, s.queries, domain.BalanceKey{Username: username, Currency: currency}, delta)
		return err
	})
	return next, err
}

func (s *LedgerStore) adjust(ctx context.Context, q *generated.Queries, key domain.BalanceKey, delta decimal.Decimal) (decimal.Decimal, error) {
	next, err := q.AdjustBalance(ctx, generated.AdjustBalanceParams{
		Username:  key.Username,
		Currency:  key.Currency.String(),
		Balance:   delta,
		CreatedAt: s.now(),
	})
	switch {
	case err == nil:
		return next, nil
	// The upsert returns no row when the guard rejects the update, and a
	// brand-new row with a negative amount trips the CHECK constraint.
	case errors.Is(err, pgx.ErrNoRows), hasCode(err, pgErrCheckViolation):
		return decimal.Zero, fmt.Errorf("%w: %s cannot absorb %s", domain.ErrInsufficientFunds, key, delta)
	default:
		return decimal.Zero, fmt.Errorf("adjust balance %s: %w", key, err)
	}
}

func (s *LedgerStore) RecordTransaction(ctx context.Context, tx *domain.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if err := s.queries.InsertTransaction(ctx, transactionParams(tx)); err != nil {
		return "", insertError(tx, err)
	}
	return tx.ID, nil
}

// Apply commits batch in one database transaction. Balance rows are touched
// in key order so concurrent batches cannot deadlock on each other.
func (s *LedgerStore) Apply(ctx context.Context, batch domain.LedgerBatch) error {
	for _, tx := range batch.Transactions {
		if err := tx.Validate(); err != nil {
			return err
		}
	}

	keys, deltas := mergeAdjustments(batch.Adjustments)

	return s.retrier.Retry(ctx, func() error {
		return s.txm.WithTx(ctx, func(q *generated.Queries) error {
			for _, key := range keys {
				if _, err := s.adjust(ctx, q, key, deltas[key]); err != nil {
					return err
				}
			}
			for _, tx := range batch.Transactions {
				if err := q.InsertTransaction(ctx, transactionParams(tx)); err != nil {
					return insertError(tx, err)
				}
			}
			return nil
		})
	})
}

func (s *LedgerStore) GetTransaction(ctx context.Context, username, txid string) (*domain.Transaction, error) {
	row, err := s.queries.GetTransaction(ctx, generated.GetTransactionParams{Username: username, ID: txid})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", txid, err)
	}
	return rowToTransaction(row), nil
}

func (s *LedgerStore) ListTransactions(ctx context.Context, username string, offset, limit int) ([]*domain.Transaction, error) {
	rows, err := s.queries.ListTransactions(ctx, generated.ListTransactionsParams{
		Username: username,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions %s: %w", username, err)
	}
	return rowsToTransactions(rows), nil
}

func (s *LedgerStore) ListAllTransactions(ctx context.Context, username string) ([]*domain.Transaction, error) {
	rows, err := s.queries.ListAllTransactions(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list transactions %s: %w", username, err)
	}
	return rowsToTransactions(rows), nil
}

// mergeAdjustments sums deltas per balance and returns the keys in lock order.
func mergeAdjustments(adjustments []domain.Adjustment) ([]domain.BalanceKey, map[domain.BalanceKey]decimal.Decimal) {
	deltas := make(map[domain.BalanceKey]decimal.Decimal, len(adjustments))
	keys := make([]domain.BalanceKey, 0, len(adjustments))
	for _, adj := range adjustments {
		current, seen := deltas[adj.Key]
		if !seen {
			keys = append(keys, adj.Key)
		}
		deltas[adj.Key] = current.Add(adj.Delta)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys, deltas
}

func insertError(tx *domain.Transaction, err error) error {
	if hasCode(err, pgErrUniqueViolation) {
		return fmt.Errorf("transaction %s already recorded: %w", tx.ID, err)
	}
	return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
}

func transactionParams(tx *domain.Transaction) generated.InsertTransactionParams {
	return generated.InsertTransactionParams{
		ID:          tx.ID,
		Username:    tx.Username,
		Destination: tx.Destination,
		Description: tx.Description,
		Currency:    tx.Currency.String(),
		Status:      string(tx.Status),
		Kind:        string(tx.Kind),
		Value:       tx.Value,
		Fee:         tx.Fee,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:          row.ID,
		Username:    row.Username,
		Destination: row.Destination,
		Description: row.Description,
		Currency:    domain.Currency(row.Currency),
		Status:      domain.TransactionStatus(row.Status),
		Kind:        domain.TransactionKind(row.Kind),
		Value:       row.Value,
		Fee:         row.Fee,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func rowsToTransactions(rows []generated.Transaction) []*domain.Transaction {
	txs := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, rowToTransaction(row))
	}
	return txs
}
