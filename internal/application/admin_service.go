package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
	repo "github.com/taranco/contact-directory-api/internal/domain/repository"
	"github.com/taranco/contact-directory-api/pkg/helpers"
)

// AdminService covers admin accounts, the member approval toggle, and the
// shared user registry.
type AdminService struct {
	Admins  repo.AdminRepository
	Users   repo.UserRepository
	Members repo.MemberRepository
	Tokens  *helpers.TokenManager
	Search  MemberSearchIndex // optional
	Logger  *logrus.Logger
}

func NewAdminService(admins repo.AdminRepository, users repo.UserRepository, members repo.MemberRepository, tokens *helpers.TokenManager, search MemberSearchIndex, logger *logrus.Logger) *AdminService {
	return &AdminService{Admins: admins, Users: users, Members: members, Tokens: tokens, Search: search, Logger: logger}
}

func (s *AdminService) CreateAdmin(ctx context.Context, email, password string) (*entity.Admin, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	a := &entity.Admin{Email: email, PasswordHash: hash}
	if err := s.Admins.Create(ctx, a); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return a, nil
}

// Login verifies admin credentials and issues an admin-namespace token.
// An unknown admin is ErrNotFound, a wrong password ErrInvalidCredentials;
// the handler reports them as 404 and 401 respectively.
func (s *AdminService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	a, err := s.Admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", time.Time{}, ErrNotFound
		}
		return "", time.Time{}, err
	}
	if !helpers.CompareHashAndPassword(a.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.Tokens.GenerateAdminToken(a.ID)
}

// ToggleApproval flips the member's approval flag. The flag lives only on
// the member row, so both the public listing and any owner view always agree
// with it. The search index tracks the flag: approved members are indexed,
// unapproved ones removed.
func (s *AdminService) ToggleApproval(ctx context.Context, memberID string) (*entity.Member, error) {
	m, err := s.Members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.IsApproved = !m.IsApproved
	if err := s.Members.SetApproved(ctx, m.ID, m.IsApproved); err != nil {
		return nil, err
	}

	if s.Search != nil {
		var sErr error
		if m.IsApproved {
			sErr = s.Search.Index(ctx, m)
		} else {
			sErr = s.Search.Remove(ctx, m.ID)
		}
		if sErr != nil && s.Logger != nil {
			s.Logger.WithError(sErr).WithField("member_id", m.ID).Warn("search index update failed")
		}
	}
	return m, nil
}

// ApproveUserForRegistry adds the user to the registry every admin can
// enumerate. Adding an already-registered user is a no-op.
func (s *AdminService) ApproveUserForRegistry(ctx context.Context, userID string) error {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.Admins.AddUserToRegistry(ctx, userID)
}

// RegistryUser is a registry entry with its members resolved by reference.
type RegistryUser struct {
	User    *entity.User
	Members []*entity.Member
}

// ListAllUsers dereferences the registry. Password hashes never leave the
// service layer in a serializable form; handlers render from this view.
func (s *AdminService) ListAllUsers(ctx context.Context) ([]*RegistryUser, error) {
	users, err := s.Admins.ListRegistryUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*RegistryUser, 0, len(users))
	for _, u := range users {
		members, err := s.Members.ListByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &RegistryUser{User: u, Members: members})
	}
	return out, nil
}

// ListMembersOfUser returns the full member set owned by one user.
func (s *AdminService) ListMembersOfUser(ctx context.Context, userID string) ([]*entity.Member, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Members.ListByUser(ctx, userID)
}
