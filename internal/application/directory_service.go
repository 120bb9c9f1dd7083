package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
	repo "github.com/taranco/contact-directory-api/internal/domain/repository"
)

// DirectoryService is member CRUD scoped to an owning user, plus the public
// approved-member listing and search.
//
// A member row and its owner's family-head reference are two independent
// writes with no atomicity between them; a crash in between leaves the
// reference stale until the next write. Known gap, accepted.
type DirectoryService struct {
	Members repo.MemberRepository
	Users   repo.UserRepository
	Images  ImageStore
	Search  MemberSearchIndex // optional
	Logger  *logrus.Logger
}

func NewDirectoryService(members repo.MemberRepository, users repo.UserRepository, images ImageStore, search MemberSearchIndex, logger *logrus.Logger) *DirectoryService {
	return &DirectoryService{Members: members, Users: users, Images: images, Search: search, Logger: logger}
}

const photoFolder = "members"

type CreateMemberInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     string
	DOB         *time.Time
	FamilyHead  bool
}

// UpdateMemberInput carries only the fields present in the request; nil
// pointers and empty strings leave the stored value untouched.
type UpdateMemberInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     string
	DOB         *time.Time
	FamilyHead  *bool
}

// CreateMember persists the member, then attaches the photo, then maintains
// the owner's family-head reference. Member email is globally unique. The
// record is persisted before the photo upload: an upload failure surfaces as
// ErrUpstream but leaves the member stored without a photo.
func (s *DirectoryService) CreateMember(ctx context.Context, ownerID string, in CreateMemberInput, photo *ImageUpload) (*entity.Member, error) {
	if exists, err := s.Members.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrConflict
	}

	m := &entity.Member{
		UserID:      ownerID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		DOB:         in.DOB,
		FamilyHead:  in.FamilyHead,
	}
	if err := s.Members.Create(ctx, m); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if photo != nil {
		url, err := s.Images.Upload(ctx, photo.Reader, m.ID, photoFolder, photo.ContentType)
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("member_id", m.ID).Error("photo upload failed")
			}
			return nil, ErrUpstream
		}
		if err := s.Members.SetPhotoURL(ctx, m.ID, url); err != nil {
			return nil, err
		}
		m.PhotoURL = url
	}

	if in.FamilyHead {
		if err := s.Users.SetFamilyHead(ctx, ownerID, m.ID); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// UpdateMember applies owner-scoped updates. A member owned by someone else
// is indistinguishable from one that does not exist.
func (s *DirectoryService) UpdateMember(ctx context.Context, ownerID, memberID string, in UpdateMemberInput, photo *ImageUpload) (*entity.Member, error) {
	m, err := s.Members.GetOwned(ctx, memberID, ownerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.FirstName != "" {
		m.FirstName = in.FirstName
	}
	if in.LastName != "" {
		m.LastName = in.LastName
	}
	if in.Email != "" {
		m.Email = in.Email
	}
	if in.PhoneNumber != "" {
		m.PhoneNumber = in.PhoneNumber
	}
	if in.Address != "" {
		m.Address = in.Address
	}
	if in.DOB != nil {
		m.DOB = in.DOB
	}

	if photo != nil {
		url, err := s.Images.Upload(ctx, photo.Reader, m.ID, photoFolder, photo.ContentType)
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("member_id", m.ID).Error("photo upload failed")
			}
			return nil, ErrUpstream
		}
		m.PhotoURL = url
	}

	// The owner's family-head reference is re-asserted whenever the flag is
	// posted, not only when it changes, so a stale reference heals on the
	// next update.
	if in.FamilyHead != nil {
		m.FamilyHead = *in.FamilyHead
		ref := ""
		if m.FamilyHead {
			ref = m.ID
		}
		if err := s.Users.SetFamilyHead(ctx, ownerID, ref); err != nil {
			return nil, err
		}
	}

	if err := s.Members.Update(ctx, m); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.reindex(ctx, m)
	return m, nil
}

// DeleteMember removes an owned member, clears the owner's family-head
// reference when it pointed at this member, and best-effort deletes the
// stored photo. Returns the deleted member and the refreshed owner.
func (s *DirectoryService) DeleteMember(ctx context.Context, ownerID, memberID string) (*entity.Member, *entity.User, error) {
	m, err := s.Members.GetOwned(ctx, memberID, ownerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if err := s.Members.DeleteOwned(ctx, memberID, ownerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if m.FamilyHead {
		if err := s.Users.SetFamilyHead(ctx, ownerID, ""); err != nil {
			return nil, nil, err
		}
	}

	if s.Images != nil {
		if err := s.Images.Delete(ctx, m.ID, photoFolder); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("member_id", m.ID).Warn("photo deletion failed")
		}
	}
	if s.Search != nil {
		if err := s.Search.Remove(ctx, m.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("member_id", m.ID).Warn("search index removal failed")
		}
	}

	owner, err := s.Users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return m, owner, nil
}

// MemberDetail is a single member with its owner's public view and the
// owner's other members.
type MemberDetail struct {
	Member  *entity.Member
	Owner   *entity.User
	Related []*entity.Member
}

// GetMember is the public single-member read.
func (s *DirectoryService) GetMember(ctx context.Context, memberID string) (*MemberDetail, error) {
	m, err := s.Members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	owner, err := s.Users.GetByID(ctx, m.UserID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	siblings, err := s.Members.ListByUser(ctx, m.UserID)
	if err != nil {
		return nil, err
	}
	related := make([]*entity.Member, 0, len(siblings))
	for _, sib := range siblings {
		if sib.ID != m.ID {
			related = append(related, sib)
		}
	}
	return &MemberDetail{Member: m, Owner: owner, Related: related}, nil
}

// ListApproved returns the publicly visible members.
func (s *DirectoryService) ListApproved(ctx context.Context) ([]*entity.Member, error) {
	return s.Members.ListApproved(ctx)
}

// ListByOwner returns every member of one user in creation order.
func (s *DirectoryService) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Member, error) {
	return s.Members.ListByUser(ctx, ownerID)
}

// SearchApproved matches the query case-insensitively as a substring of any
// of first name, last name, email, phone or address; only approved members
// are searchable. The search index is preferred when configured, with the
// repository as fallback.
func (s *DirectoryService) SearchApproved(ctx context.Context, query string) ([]*entity.Member, error) {
	if s.Search != nil {
		res, err := s.Search.Search(ctx, query)
		if err == nil {
			return res, nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("search index unavailable, falling back to store")
		}
	}
	return s.Members.SearchApproved(ctx, query)
}

// reindex refreshes an approved member in the search index.
func (s *DirectoryService) reindex(ctx context.Context, m *entity.Member) {
	if s.Search == nil || !m.IsApproved {
		return
	}
	if err := s.Search.Index(ctx, m); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("member_id", m.ID).Warn("search index update failed")
	}
}
