package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
)

var _ usecase.PendingCreditTracker = (*PendingCreditTracker)(nil)

// PendingCreditTracker keeps issued-but-unpaid invoices in Redis under
// stable.tx.{payment_hash}. Redis expiry drops entries whose invoice lapsed.
type PendingCreditTracker struct {
	client *redis.Client
	prefix string
}

// NewPendingCreditTracker creates a new PendingCreditTracker.
func NewPendingCreditTracker(client *redis.Client) *PendingCreditTracker {
	return &PendingCreditTracker{
		client: client,
		prefix: "stable.tx.",
	}
}

// Register stores credit until ttl elapses, replacing any previous entry.
func (t *PendingCreditTracker) Register(ctx context.Context, credit *domain.PendingCredit, ttl time.Duration) error {
	if credit.CorrelationID == "" {
		return fmt.Errorf("%w: correlation id is required", domain.ErrValidation)
	}
	if ttl <= 0 {
		return fmt.Errorf("%w: pending credit ttl must be positive", domain.ErrValidation)
	}

	payload, err := json.Marshal(credit)
	if err != nil {
		return fmt.Errorf("encode pending credit: %w", err)
	}

	return t.client.Set(ctx, t.prefix+credit.CorrelationID, payload, ttl).Err()
}

// Consume fetches and deletes the entry in one GETDEL, so of several
// concurrent callers exactly one receives it.
func (t *PendingCreditTracker) Consume(ctx context.Context, correlationID string) (*domain.PendingCredit, error) {
	payload, err := t.client.GetDel(ctx, t.prefix+correlationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrPendingCreditNotFound
	}
	if err != nil {
		return nil, err
	}

	var credit domain.PendingCredit
	if err := json.Unmarshal(payload, &credit); err != nil {
		return nil, fmt.Errorf("decode pending credit %s: %w", correlationID, err)
	}
	return &credit, nil
}
