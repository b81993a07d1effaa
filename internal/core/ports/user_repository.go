package ports

import (
	"context"

	"github.com/99minutos/opsboard/internal/core/domain"
)

// UserRepository defines persistence operations for users.
// Lookups by an id that does not resolve return domain.ErrUserNotFound.
type UserRepository interface {
	// List returns every user, newest first.
	List(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create stores u and sets its ID. A taken email yields domain.ErrDuplicateEmail.
	Create(ctx context.Context, u *domain.User) error
	// Update applies patch and returns the stored document after the update.
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
