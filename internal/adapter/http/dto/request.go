package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/lnstable/internal/usecase"
)

// CredentialsRequest is the body of /api/create and /api/auth.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *CredentialsRequest) ToUseCaseInput() usecase.CredentialsInput {
	return usecase.CredentialsInput{Username: r.Username, Password: r.Password}
}

// SwapRequest asks to swap value of the other currency into Currency.
type SwapRequest struct {
	Currency string          `json:"currency"`
	Value    decimal.Decimal `json:"value"`
}

// ToUseCaseInput converts to use case input.
func (r *SwapRequest) ToUseCaseInput(username string) usecase.SwapInput {
	return usecase.SwapInput{Username: username, Currency: r.Currency, Value: r.Value}
}

// DepositRequest asks for a deposit invoice of Value sats.
type DepositRequest struct {
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(username string) usecase.DepositInput {
	return usecase.DepositInput{Username: username, Value: r.Value, Description: r.Description}
}

// WithdrawRequest asks to pay a bolt11 invoice.
type WithdrawRequest struct {
	PaymentRequest string `json:"payment_request"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput(username string) usecase.WithdrawInput {
	return usecase.WithdrawInput{Username: username, PaymentRequest: r.PaymentRequest}
}

// WebhookRequest is the paid-invoice notification sent by LNbits. Amount is in msat.
type WebhookRequest struct {
	Bolt11      string `json:"bolt11"`
	PaymentHash string `json:"payment_hash"`
	Amount      int64  `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *WebhookRequest) ToUseCaseInput() usecase.WebhookInput {
	return usecase.WebhookInput{Bolt11: r.Bolt11, PaymentHash: r.PaymentHash, AmountMsat: r.Amount}
}
