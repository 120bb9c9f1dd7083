package repository

import (
	"context"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
)

// AdminRepository defines the store operations for admin accounts and the
// shared user registry every admin can enumerate.
type AdminRepository interface {
	Create(ctx context.Context, a *entity.Admin) error
	GetByEmail(ctx context.Context, email string) (*entity.Admin, error)
	// AddUserToRegistry is idempotent; adding an already-registered user is a no-op.
	AddUserToRegistry(ctx context.Context, userID string) error
	// ListRegistryUsers returns the registered users in registration order.
	ListRegistryUsers(ctx context.Context) ([]*entity.User, error)
}
