package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/lnstable/internal/adapter/http/dto"
	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
)

// SettlementService defines the money-moving operations.
type SettlementService interface {
	Swap(ctx context.Context, input usecase.SwapInput) (*usecase.SwapOutput, error)
	RequestDeposit(ctx context.Context, input usecase.DepositInput) (*domain.Invoice, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error)
	CreditPaidInvoice(ctx context.Context, input usecase.WebhookInput) (*usecase.WebhookResult, error)
}

// SettlementHandler handles swap, deposit, withdraw and the LNbits webhook.
type SettlementHandler struct {
	settlement SettlementService
	logger     zerolog.Logger
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlement SettlementService, logger zerolog.Logger) *SettlementHandler {
	return &SettlementHandler{settlement: settlement, logger: logger}
}

// Swap converts the counterpart currency into the requested one.
func (h *SettlementHandler) Swap(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	var req dto.SwapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	out, err := h.settlement.Swap(r.Context(), req.ToUseCaseInput(username))
	if err != nil {
		writeDomainError(w, err, "swap failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.SwapFromUseCase(out))
}

// Deposit issues an invoice that credits the caller's BTC balance once paid.
func (h *SettlementHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	var req dto.DepositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	invoice, err := h.settlement.RequestDeposit(r.Context(), req.ToUseCaseInput(username))
	if err != nil {
		writeDomainError(w, err, "deposit failed")
		return
	}

	writeJSON(w, http.StatusCreated, dto.InvoiceFromDomain(invoice))
}

// Withdraw pays a lightning invoice from the caller's BTC balance.
func (h *SettlementHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.settlement.Withdraw(r.Context(), req.ToUseCaseInput(username))
	if err != nil {
		writeDomainError(w, err, "withdraw failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Webhook receives LNbits paid-invoice notifications. It is unauthenticated;
// the invoice is re-checked against the rail before anything is credited.
func (h *SettlementHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req dto.WebhookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.settlement.CreditPaidInvoice(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.logger.Warn().Err(err).Str("payment_hash", req.PaymentHash).Msg("webhook rejected")
		writeDomainError(w, err, "webhook rejected")
		return
	}

	writeJSON(w, http.StatusOK, dto.WebhookFromUseCase(result))
}
