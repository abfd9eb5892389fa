package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/infrastructure/postgres/generated"
	"github.com/iho/lnstable/internal/usecase"
)

var _ usecase.UserRepository = (*UserRepository)(nil)

// UserRepository implements user persistence
type UserRepository struct {
	queries *generated.Queries
}

// NewUserRepository creates a new user repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return newUserRepository(pool)
}

func newUserRepository(db generated.DBTX) *UserRepository {
	return &UserRepository{queries: generated.New(db)}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.queries.CreateUser(ctx, generated.CreateUserParams{
		Username:     user.Username,
		PasswordHash: user.HashedPassword,
		CreatedAt:    user.CreatedAt,
	})
	if hasCode(err, pgErrUniqueViolation) {
		return domain.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row, err := r.queries.GetUserByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}

	return &domain.User{
		Username:       row.Username,
		HashedPassword: row.PasswordHash,
		CreatedAt:      row.CreatedAt,
	}, nil
}
