package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
	repo "github.com/taranco/contact-directory-api/internal/domain/repository"
)

// UserService is the authenticated user's own profile view and updates.
type UserService struct {
	Users   repo.UserRepository
	Members repo.MemberRepository
	Images  ImageStore
	Logger  *logrus.Logger
}

func NewUserService(users repo.UserRepository, members repo.MemberRepository, images ImageStore, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Members: members, Images: images, Logger: logger}
}

const bannerFolder = "user"

// ProfileView is a user with its members resolved by reference.
type ProfileView struct {
	User    *entity.User
	Members []*entity.Member
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	members, err := s.Members.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: u, Members: members}, nil
}

type UpdateProfileInput struct {
	Category string
	AboutUs  string
}

// UpdateProfile applies non-empty field changes and, when a banner image is
// supplied, uploads it and stores the resulting URL. The profile update is
// persisted before the banner upload; an upload failure surfaces as
// ErrUpstream with the field changes already saved.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput, banner *ImageUpload) (*ProfileView, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if in.Category != "" {
		u.Category = in.Category
	}
	if in.AboutUs != "" {
		u.AboutUs = in.AboutUs
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}

	if banner != nil {
		url, err := s.Images.Upload(ctx, banner.Reader, u.ID, bannerFolder, banner.ContentType)
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("user_id", u.ID).Error("banner upload failed")
			}
			return nil, ErrUpstream
		}
		u.BannerURL = url
		if err := s.Users.Update(ctx, u); err != nil {
			return nil, err
		}
	}

	members, err := s.Members.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: u, Members: members}, nil
}
