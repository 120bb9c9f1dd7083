package repository

import (
	"context"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
)

// MemberRepository defines the store operations for member contact records.
type MemberRepository interface {
	Create(ctx context.Context, m *entity.Member) error
	GetByID(ctx context.Context, id string) (*entity.Member, error)
	// GetOwned returns the member only when it belongs to userID;
	// otherwise ErrNotFound.
	GetOwned(ctx context.Context, id, userID string) (*entity.Member, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, m *entity.Member) error
	// DeleteOwned removes the member only when it belongs to userID.
	DeleteOwned(ctx context.Context, id, userID string) error
	SetPhotoURL(ctx context.Context, id, url string) error
	SetApproved(ctx context.Context, id string, approved bool) error
	ListApproved(ctx context.Context) ([]*entity.Member, error)
	// ListByUser returns the user's members ordered by creation time.
	ListByUser(ctx context.Context, userID string) ([]*entity.Member, error)
	// SearchApproved matches the query as a case-insensitive substring
	// against name, email, phone and address of approved members.
	SearchApproved(ctx context.Context, query string) ([]*entity.Member, error)
}
