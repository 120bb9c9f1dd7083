package application

import (
	"context"
	"io"
	"time"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
)

// ImageStore is the remote image-hosting capability. Objects are addressed
// by (id, folder); uploading under an existing id replaces the image.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, id, folder, contentType string) (string, error)
	Delete(ctx context.Context, id, folder string) error
}

// ImageUpload is a parsed multipart file ready for the image store. Handlers
// produce it so services never touch request framework types.
type ImageUpload struct {
	Reader      io.Reader
	ContentType string
}

// ResetTokenStore persists hashed reset-link tokens until they expire.
// Lookup returns repository.ErrNotFound for unknown or expired hashes.
type ResetTokenStore interface {
	Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, tokenHash string) (string, error)
	Delete(ctx context.Context, tokenHash string) error
}

// MemberSearchIndex is an optional secondary index over approved members.
// When unavailable the repository's substring search is authoritative.
type MemberSearchIndex interface {
	Index(ctx context.Context, m *entity.Member) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]*entity.Member, error)
}
