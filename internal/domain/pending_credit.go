package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingCredit links an issued invoice to the balance it credits once paid.
type PendingCredit struct {
	CorrelationID string          `json:"correlation_id"`
	Username      string          `json:"username"`
	Currency      Currency        `json:"currency"`
	Kind          TransactionKind `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

// RemainingTTL is how long the entry should still live at now. Zero means expired.
func (p *PendingCredit) RemainingTTL(now time.Time) time.Duration {
	d := p.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
