package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/lnstable/internal/adapter/http/dto"
	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
)

// AccountService defines the read side needed by AccountHandler.
type AccountService interface {
	GetBalance(ctx context.Context, username, currency string) (*domain.Balance, error)
	ListBalances(ctx context.Context, username string) ([]*domain.Balance, error)
	GetTransaction(ctx context.Context, username, txid string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, username string, offset, limit int) ([]*domain.Transaction, error)
}

// Reconciler checks stored balances against the transaction log.
type Reconciler interface {
	ReconcileUser(ctx context.Context, username string) ([]*usecase.ReconciliationResult, error)
}

// AccountHandler serves balances and transaction history of the caller.
type AccountHandler struct {
	accounts   AccountService
	reconciler Reconciler
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService, reconciler Reconciler) *AccountHandler {
	return &AccountHandler{accounts: accounts, reconciler: reconciler}
}

// Balance returns one balance; ?currency defaults to BTC.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	balance, err := h.accounts.GetBalance(r.Context(), username, r.URL.Query().Get("currency"))
	if err != nil {
		writeDomainError(w, err, "failed to get balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Balances returns every balance of the caller.
func (h *AccountHandler) Balances(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	balances, err := h.accounts.ListBalances(r.Context(), username)
	if err != nil {
		writeDomainError(w, err, "failed to list balances")
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(balances))
}

// Transaction returns one transaction of the caller.
func (h *AccountHandler) Transaction(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	tx, err := h.accounts.GetTransaction(r.Context(), username, chi.URLParam(r, "txid"))
	if err != nil {
		writeDomainError(w, err, "failed to get transaction")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Transactions pages through the caller's transactions.
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	offset, err := parseIntQuery(r, "offset", 0)
	if err != nil {
		writeDomainError(w, err, "invalid pagination")
		return
	}
	limit, err := parseIntQuery(r, "limit", domain.DefaultTransactionsLimit)
	if err != nil {
		writeDomainError(w, err, "invalid pagination")
		return
	}

	txs, err := h.accounts.ListTransactions(r.Context(), username, offset, limit)
	if err != nil {
		writeDomainError(w, err, "failed to list transactions")
		return
	}

	if limit <= 0 {
		limit = domain.DefaultTransactionsLimit
	}
	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs, offset, limit))
}

// Reconcile compares the caller's balances with their transaction log.
func (h *AccountHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	results, err := h.reconciler.ReconcileUser(r.Context(), username)
	if err != nil {
		writeDomainError(w, err, "failed to reconcile")
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationsFromUseCase(results))
}
