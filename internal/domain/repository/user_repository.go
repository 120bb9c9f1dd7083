package repository

import (
	"context"
	"errors"
	"time"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
)

// ErrNotFound is returned when a record does not exist or is not visible to
// the caller. Cross-owner access is reported with the same error as absence.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint (email) is violated.
var ErrDuplicate = errors.New("duplicate")

// UserRepository defines the store operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Update persists category, about and banner changes.
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// SetFamilyHead points the user's family-head reference at memberID;
	// an empty memberID clears it.
	SetFamilyHead(ctx context.Context, userID, memberID string) error
	SetOTP(ctx context.Context, userID, code string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, userID string) error
}
