package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
	"github.com/taranco/contact-directory-api/internal/domain/repository"
)

const memberColumns = `id, user_id, first_name, last_name, email, phone_number,
	address, dob, photo_url, family_head, is_approved, created_at, updated_at`

type MemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

func scanMember(row pgx.Row) (*entity.Member, error) {
	m := &entity.Member{}
	if err := row.Scan(&m.ID, &m.UserID, &m.FirstName, &m.LastName, &m.Email, &m.PhoneNumber,
		&m.Address, &m.DOB, &m.PhotoURL, &m.FamilyHead, &m.IsApproved, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func collectMembers(rows pgx.Rows) ([]*entity.Member, error) {
	defer rows.Close()
	out := make([]*entity.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MemberRepository) Create(ctx context.Context, m *entity.Member) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO members (user_id, first_name, last_name, email, phone_number, address, dob, family_head)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, is_approved, created_at, updated_at
	`, m.UserID, m.FirstName, m.LastName, m.Email, m.PhoneNumber, m.Address, m.DOB, m.FamilyHead)

	if err := row.Scan(&m.ID, &m.IsApproved, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id string) (*entity.Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
}

func (r *MemberRepository) GetOwned(ctx context.Context, id, userID string) (*entity.Member, error) {
	return scanMember(r.pool.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1 AND user_id = $2`, id, userID))
}

func (r *MemberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM members WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *MemberRepository) Update(ctx context.Context, m *entity.Member) error {
	m.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE members
		SET first_name = $1, last_name = $2, email = $3, phone_number = $4,
		    address = $5, dob = $6, photo_url = $7, family_head = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`, m.FirstName, m.LastName, m.Email, m.PhoneNumber, m.Address, m.DOB, m.PhotoURL,
		m.FamilyHead, m.UpdatedAt, m.ID, m.UserID)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MemberRepository) DeleteOwned(ctx context.Context, id, userID string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MemberRepository) SetPhotoURL(ctx context.Context, id, url string) error {
	res, err := r.pool.Exec(ctx, `UPDATE members SET photo_url = $1, updated_at = now() WHERE id = $2`, url, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MemberRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	res, err := r.pool.Exec(ctx, `UPDATE members SET is_approved = $1, updated_at = now() WHERE id = $2`, approved, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MemberRepository) ListApproved(ctx context.Context) ([]*entity.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM members WHERE is_approved ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return collectMembers(rows)
}

func (r *MemberRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM members WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	return collectMembers(rows)
}

// escapeLike escapes LIKE metacharacters so the query is a literal substring.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

func (r *MemberRepository) SearchApproved(ctx context.Context, query string) ([]*entity.Member, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.pool.Query(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE is_approved AND (
			first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1
			OR phone_number ILIKE $1 OR address ILIKE $1
		)
		ORDER BY created_at
	`, pattern)
	if err != nil {
		return nil, err
	}
	return collectMembers(rows)
}

var _ repository.MemberRepository = (*MemberRepository)(nil)
