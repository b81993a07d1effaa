package ports

import (
	"context"

	"github.com/99minutos/opsboard/internal/core/domain"
)

// CreateUserInput is the DTO passed from the transport layer to UserService.
type CreateUserInput struct {
	Name   string
	Email  string
	Role   string
	Status string
	// IdempotencyKey, when set, makes retries of the same request return the
	// user created by the first attempt.
	IdempotencyKey string
}

// UpdateUserInput carries a partial update. Nil fields are not changed.
type UpdateUserInput struct {
	Name   *string
	Email  *string
	Role   *string
	Status *string
}

// UserService defines use-case operations for users.
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	// CreateUser reports replayed=true when an idempotency key returned an
	// earlier user instead of creating one.
	CreateUser(ctx context.Context, in CreateUserInput) (u *domain.User, replayed bool, err error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
