package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
	"github.com/taranco/contact-directory-api/internal/domain/repository"
)

const userColumns = `id, email, password_hash, category, about_us, banner_url,
	family_head_id, otp_code, otp_expires_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// mapWriteErr converts unique-violation errors into repository.ErrDuplicate.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicate
	}
	return err
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var familyHead, otpCode *string
	var otpExpires *time.Time
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Category, &u.AboutUs, &u.BannerURL,
		&familyHead, &otpCode, &otpExpires, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if familyHead != nil {
		u.FamilyHeadID = *familyHead
	}
	if otpCode != nil {
		u.OTPCode = *otpCode
	}
	if otpExpires != nil {
		u.OTPExpiresAt = *otpExpires
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, category, about_us, banner_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.Category, u.AboutUs, u.BannerURL)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET category = $1, about_us = $2, banner_url = $3, updated_at = $4
		WHERE id = $5
	`, u.Category, u.AboutUs, u.BannerURL, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetFamilyHead(ctx context.Context, userID, memberID string) error {
	var ref *string
	if memberID != "" {
		ref = &memberID
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET family_head_id = $1, updated_at = now() WHERE id = $2
	`, ref, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetOTP(ctx context.Context, userID, code string, expiresAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET otp_code = $1, otp_expires_at = $2, updated_at = now() WHERE id = $3
	`, code, expiresAt, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ClearOTP(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET otp_code = NULL, otp_expires_at = NULL, updated_at = now() WHERE id = $1
	`, userID)
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
