package handler

import (
	"context"
	"net/http"

	"github.com/iho/lnstable/internal/adapter/http/dto"
	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/usecase"
)

// UserService defines the behavior needed by UserHandler.
type UserService interface {
	CreateUser(ctx context.Context, input usecase.CredentialsInput) (*domain.User, error)
	Authenticate(ctx context.Context, input usecase.CredentialsInput) (*usecase.AuthResult, error)
}

// UserHandler handles sign-up and login.
type UserHandler struct {
	users UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create registers a new user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserResponse{Username: user.Username})
}

// Auth exchanges credentials for a bearer token.
func (h *UserHandler) Auth(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.users.Authenticate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenFromUseCase(result))
}
