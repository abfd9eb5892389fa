package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
)

// LedgerStore is the persistent store of balances and the append-only transaction log.
// Mutations of one (username, currency) balance are serialized by the store.
type LedgerStore interface {
	// GetBalance returns zero when the balance row does not exist.
	GetBalance(ctx context.Context, username string, currency domain.Currency) (decimal.Decimal, error)
	// EnsureBalance creates a zero balance row if none exists.
	EnsureBalance(ctx context.Context, username string, currency domain.Currency) error
	ListBalances(ctx context.Context, username string) ([]*domain.Balance, error)
	// AdjustBalance applies delta and returns the new amount. A debit that would
	// leave the balance negative fails with domain.ErrInsufficientFunds.
	AdjustBalance(ctx context.Context, username string, currency domain.Currency, delta decimal.Decimal) (decimal.Decimal, error)
	RecordTransaction(ctx context.Context, tx *domain.Transaction) (string, error)
	// Apply commits every adjustment and transaction record of batch, or none of them.
	Apply(ctx context.Context, batch domain.LedgerBatch) error
	GetTransaction(ctx context.Context, username, txid string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, username string, offset, limit int) ([]*domain.Transaction, error)
	ListAllTransactions(ctx context.Context, username string) ([]*domain.Transaction, error)
}

// PendingCreditTracker correlates issued invoices with the balance they credit.
type PendingCreditTracker interface {
	// Register stores credit under its correlation id, replacing any previous entry.
	Register(ctx context.Context, credit *domain.PendingCredit, ttl time.Duration) error
	// Consume atomically fetches and deletes the entry. Concurrent callers for
	// the same id see at most one success; the others get domain.ErrPendingCreditNotFound.
	Consume(ctx context.Context, correlationID string) (*domain.PendingCredit, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// TokenIssuer issues bearer tokens for authenticated users.
type TokenIssuer interface {
	Generate(username string) (token string, expiresAt time.Time, err error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key whose request failed so the caller may retry.
	Delete(ctx context.Context, key string) error
}
