package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UserResponse is returned when an account is created.
type UserResponse struct {
	Username string `json:"username"`
}

// TokenResponse is an issued bearer token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenFromUseCase converts an auth result to response.
func TokenFromUseCase(r *usecase.AuthResult) *TokenResponse {
	return &TokenResponse{AccessToken: r.AccessToken, TokenType: r.TokenType, ExpiresAt: r.ExpiresAt}
}

// SwapResponse is the amount credited by a swap.
type SwapResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// SwapFromUseCase converts swap output to response.
func SwapFromUseCase(o *usecase.SwapOutput) *SwapResponse {
	return &SwapResponse{Amount: o.Amount, Currency: o.Currency.String()}
}

// BalanceResponse represents one balance in API responses.
type BalanceResponse struct {
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// BalanceFromDomain converts domain balance to response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{Currency: b.Currency.String(), Balance: b.Amount}
}

// ListBalancesResponse represents every balance of a user.
type ListBalancesResponse struct {
	Balances []*BalanceResponse `json:"balances"`
}

// BalancesFromDomain converts domain balances to response.
func BalancesFromDomain(balances []*domain.Balance) *ListBalancesResponse {
	result := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = BalanceFromDomain(b)
	}
	return &ListBalancesResponse{Balances: result}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	TxID        string          `json:"txid"`
	Username    string          `json:"username"`
	Destination string          `json:"destination"`
	Description string          `json:"description,omitempty"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Fee         decimal.Decimal `json:"fee"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		TxID:        t.ID,
		Username:    t.Username,
		Destination: t.Destination,
		Description: t.Description,
		Currency:    t.Currency.String(),
		Status:      string(t.Status),
		Type:        string(t.Kind),
		Value:       t.Value,
		Fee:         t.Fee,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ListTransactionsResponse represents a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Offset       int                    `json:"offset"`
	Limit        int                    `json:"limit"`
}

// TransactionsFromDomain converts domain transactions to response.
func TransactionsFromDomain(txs []*domain.Transaction, offset, limit int) *ListTransactionsResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return &ListTransactionsResponse{Transactions: result, Offset: offset, Limit: limit}
}

// InvoiceResponse is a deposit invoice.
type InvoiceResponse struct {
	PaymentHash    string    `json:"payment_hash"`
	PaymentRequest string    `json:"payment_request"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// InvoiceFromDomain converts domain invoice to response.
func InvoiceFromDomain(i *domain.Invoice) *InvoiceResponse {
	return &InvoiceResponse{PaymentHash: i.PaymentHash, PaymentRequest: i.PaymentRequest, ExpiresAt: i.ExpiresAt}
}

// Webhook statuses.
const (
	WebhookStatusCredited = "credited"
	WebhookStatusReplayed = "replayed"
)

// WebhookResponse acknowledges a paid-invoice notification.
type WebhookResponse struct {
	Status string `json:"status"`
	TxID   string `json:"txid,omitempty"`
}

// WebhookFromUseCase converts a webhook result to response.
func WebhookFromUseCase(r *usecase.WebhookResult) *WebhookResponse {
	if r.Replayed || r.Transaction == nil {
		return &WebhookResponse{Status: WebhookStatusReplayed}
	}
	return &WebhookResponse{Status: WebhookStatusCredited, TxID: r.Transaction.ID}
}

// ReconciliationResponse is the outcome of reconciling one balance.
type ReconciliationResponse struct {
	Currency          string          `json:"currency"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// ReconciliationsFromUseCase converts reconciliation results to response.
func ReconciliationsFromUseCase(results []*usecase.ReconciliationResult) []*ReconciliationResponse {
	out := make([]*ReconciliationResponse, len(results))
	for i, r := range results {
		out[i] = &ReconciliationResponse{
			Currency:          r.Currency.String(),
			RecordedBalance:   r.RecordedBalance,
			CalculatedBalance: r.CalculatedBalance,
			Difference:        r.Difference,
			IsReconciled:      r.IsReconciled,
			CheckedAt:         r.LastChecked,
		}
	}
	return out
}
