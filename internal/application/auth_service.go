package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
	repo "github.com/taranco/contact-directory-api/internal/domain/repository"
	"github.com/taranco/contact-directory-api/pkg/helpers"
	"github.com/taranco/contact-directory-api/pkg/mailer"
)

// AuthService covers user registration and credential login.
type AuthService struct {
	Users  repo.UserRepository
	Tokens *helpers.TokenManager
	Mail   mailer.Dispatcher
	Logger *logrus.Logger
}

func NewAuthService(users repo.UserRepository, tokens *helpers.TokenManager, mail mailer.Dispatcher, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Mail: mail, Logger: logger}
}

type RegisterInput struct {
	Email    string
	Password string
	Category string
	AboutUs  string
}

// Register creates a user and issues a bearer token. The welcome email is
// best effort: a dispatch failure never fails registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, string, time.Time, error) {
	if exists, err := s.Users.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, "", time.Time{}, err
	} else if exists {
		return nil, "", time.Time{}, ErrConflict
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	u := &entity.User{
		Email:        in.Email,
		PasswordHash: hash,
		Category:     in.Category,
		AboutUs:      in.AboutUs,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, "", time.Time{}, ErrConflict
		}
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.Tokens.GenerateUserToken(u.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if s.Mail != nil {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateWelcome,
			Data:     map[string]any{"Email": u.Email},
		}
		if mErr := s.Mail.Dispatch(ctx, job); mErr != nil && s.Logger != nil {
			s.Logger.WithError(mErr).WithField("email", u.Email).Warn("welcome email dispatch failed")
		}
	}

	return u, token, exp, nil
}

// Login verifies credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, time.Time, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		// only absence means bad credentials; store failures stay 500s
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, exp, err := s.Tokens.GenerateUserToken(u.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}
