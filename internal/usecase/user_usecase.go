package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/lnstable/internal/domain"
)

// UserUseCase handles account creation and authentication.
type UserUseCase struct {
	userRepo UserRepository
	tokens   TokenIssuer
	now      func() time.Time
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(userRepo UserRepository, tokens TokenIssuer) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		tokens:   tokens,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CredentialsInput carries a username and password as submitted.
type CredentialsInput struct {
	Username string
	Password string
}

// AuthResult is an issued bearer token.
type AuthResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// CreateUser registers a new user with a hashed password.
func (uc *UserUseCase) CreateUser(ctx context.Context, input CredentialsInput) (*domain.User, error) {
	username := domain.SanitizeUsername(input.Username)
	if err := domain.ValidateCredentials(username, input.Password); err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, storageError(err)
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:       username,
		HashedPassword: hashedPassword,
		CreatedAt:      uc.now(),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, storageError(err)
	}

	// Don't return hashed password
	user.HashedPassword = ""
	return user, nil
}

// Authenticate verifies credentials and issues a bearer token.
func (uc *UserUseCase) Authenticate(ctx context.Context, input CredentialsInput) (*AuthResult, error) {
	username := domain.SanitizeUsername(input.Username)

	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, domain.ErrInvalidCredentials)
		}
		return nil, storageError(err)
	}

	if err := VerifyPassword(user.HashedPassword, input.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, domain.ErrInvalidCredentials)
	}

	token, expiresAt, err := uc.tokens.Generate(user.Username)
	if err != nil {
		return nil, err
	}

	return &AuthResult{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a hash
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
