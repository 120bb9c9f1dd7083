package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/taranco/contact-directory-api/internal/domain/repository"
	"github.com/taranco/contact-directory-api/pkg/helpers"
	"github.com/taranco/contact-directory-api/pkg/mailer"
)

// RecoveryService drives both password-recovery challenge variants:
//
//   - OTP: a 6-digit code stored on the user row with a 10 minute expiry,
//     verified by (email, code).
//   - LinkToken: a random token whose sha256 hash is stored with an expiry;
//     the raw token travels in an emailed link.
//
// Both end in the same "set new password and invalidate challenge" step.
// A challenge is single use: it is cleared on successful verification
// whether or not a new password is supplied.
type RecoveryService struct {
	Users       repo.UserRepository
	ResetTokens ResetTokenStore
	Mail        mailer.Dispatcher
	Logger      *logrus.Logger

	OTPTTL   time.Duration
	LinkTTL  time.Duration
	ResetURL string // front-end page the emailed link points at

	now func() time.Time
}

func NewRecoveryService(users repo.UserRepository, tokens ResetTokenStore, mail mailer.Dispatcher, logger *logrus.Logger, otpTTL, linkTTL time.Duration, resetURL string) *RecoveryService {
	return &RecoveryService{
		Users:       users,
		ResetTokens: tokens,
		Mail:        mail,
		Logger:      logger,
		OTPTTL:      otpTTL,
		LinkTTL:     linkTTL,
		ResetURL:    resetURL,
		now:         time.Now,
	}
}

// RequestOTP issues a fresh code for the account behind email, replacing any
// previous one. The email is dispatched before the code is recorded, so a
// dispatch failure leaves no pending challenge behind.
func (s *RecoveryService) RequestOTP(ctx context.Context, email string, passwordReset bool) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.OTPTTL)

	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateOTP,
		Data:     map[string]any{"Code": code, "IsPasswordReset": passwordReset},
	}
	if err := s.Mail.Dispatch(ctx, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Error("otp email dispatch failed")
		}
		return ErrUpstream
	}

	return s.Users.SetOTP(ctx, u.ID, code, expiresAt)
}

// VerifyOTP consumes a pending code. On a match before the expiry instant the
// code is cleared immediately; when newPassword is non-empty the password is
// also replaced. Returns whether the password was changed.
func (s *RecoveryService) VerifyOTP(ctx context.Context, email, code, newPassword string) (bool, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, ErrChallenge
		}
		return false, err
	}
	// Expiry equality counts as expired.
	if !u.HasPendingOTP() || u.OTPCode != code || !s.now().Before(u.OTPExpiresAt) {
		return false, ErrChallenge
	}

	if err := s.Users.ClearOTP(ctx, u.ID); err != nil {
		return false, err
	}
	if newPassword == "" {
		return false, nil
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return false, err
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return false, err
	}
	return true, nil
}

// RequestResetLink issues an emailed reset link. Unknown addresses are
// reported as success to avoid account enumeration; the returned link is
// empty in that case.
func (s *RecoveryService) RequestResetLink(ctx context.Context, email string) (string, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	token, err := helpers.GenResetToken(32)
	if err != nil {
		return "", err
	}
	if err := s.ResetTokens.Save(ctx, helpers.HashResetToken(token), u.ID, s.LinkTTL); err != nil {
		return "", err
	}

	link := s.ResetURL + "?token=" + token
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateResetLink,
		Data:     map[string]any{"ResetURL": link},
	}
	if err := s.Mail.Dispatch(ctx, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Error("reset link dispatch failed")
		}
		// leave no dangling challenge behind
		_ = s.ResetTokens.Delete(ctx, helpers.HashResetToken(token))
		return "", ErrUpstream
	}
	return link, nil
}

// ResetWithLink consumes a presented link token: the stored hash must match
// and be unexpired. The challenge is invalidated on success.
func (s *RecoveryService) ResetWithLink(ctx context.Context, token, newPassword string) error {
	hashKey := helpers.HashResetToken(token)
	userID, err := s.ResetTokens.Lookup(ctx, hashKey)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrChallenge
		}
		return err
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.ResetTokens.Delete(ctx, hashKey)
}
