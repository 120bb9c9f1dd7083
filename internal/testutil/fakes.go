// Package testutil holds in-memory fakes shared by the service and handler
// tests. They mirror the Postgres repositories closely enough that the
// ownership and uniqueness rules hold.
package testutil

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
	"github.com/taranco/contact-directory-api/internal/domain/repository"
	"github.com/taranco/contact-directory-api/pkg/mailer"
)

// UserRepo is an in-memory repository.UserRepository.
type UserRepo struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]entity.User)}
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.users {
		if strings.EqualFold(ex.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Category = u.Category
	stored.AboutUs = u.AboutUs
	stored.BannerURL = u.BannerURL
	stored.UpdatedAt = time.Now()
	r.users[u.ID] = stored
	return nil
}

func (r *UserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.PasswordHash = passwordHash
	r.users[id] = stored
	return nil
}

func (r *UserRepo) SetFamilyHead(_ context.Context, userID, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.FamilyHeadID = memberID
	r.users[userID] = stored
	return nil
}

func (r *UserRepo) SetOTP(_ context.Context, userID, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.OTPCode = code
	stored.OTPExpiresAt = expiresAt
	r.users[userID] = stored
	return nil
}

func (r *UserRepo) ClearOTP(_ context.Context, userID string) error {
	return r.SetOTP(context.Background(), userID, "", time.Time{})
}

// MemberRepo is an in-memory repository.MemberRepository.
type MemberRepo struct {
	mu      sync.Mutex
	members map[string]entity.Member
	seq     int
}

func NewMemberRepo() *MemberRepo {
	return &MemberRepo{members: make(map[string]entity.Member)}
}

func (r *MemberRepo) Create(_ context.Context, m *entity.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.members {
		if strings.EqualFold(ex.Email, m.Email) {
			return repository.ErrDuplicate
		}
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	r.seq++
	now := time.Now().Add(time.Duration(r.seq)) // stable creation order
	m.CreatedAt, m.UpdatedAt = now, now
	r.members[m.ID] = *m
	return nil
}

func (r *MemberRepo) GetByID(_ context.Context, id string) (*entity.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *MemberRepo) GetOwned(_ context.Context, id, userID string) (*entity.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok || m.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *MemberRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if strings.EqualFold(m.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemberRepo) Update(_ context.Context, m *entity.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.members[m.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, ex := range r.members {
		if ex.ID != m.ID && strings.EqualFold(ex.Email, m.Email) {
			return repository.ErrDuplicate
		}
	}
	created := stored.CreatedAt
	stored = *m
	stored.CreatedAt = created
	stored.UpdatedAt = time.Now()
	r.members[m.ID] = stored
	return nil
}

func (r *MemberRepo) DeleteOwned(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok || m.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.members, id)
	return nil
}

func (r *MemberRepo) SetPhotoURL(_ context.Context, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.PhotoURL = url
	r.members[id] = m
	return nil
}

func (r *MemberRepo) SetApproved(_ context.Context, id string, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.IsApproved = approved
	r.members[id] = m
	return nil
}

func (r *MemberRepo) ListApproved(_ context.Context) ([]*entity.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Member
	for _, m := range r.members {
		if m.IsApproved {
			c := m
			out = append(out, &c)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *MemberRepo) ListByUser(_ context.Context, userID string) ([]*entity.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Member
	for _, m := range r.members {
		if m.UserID == userID {
			c := m
			out = append(out, &c)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *MemberRepo) SearchApproved(_ context.Context, query string) ([]*entity.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var out []*entity.Member
	for _, m := range r.members {
		if !m.IsApproved {
			continue
		}
		hay := strings.ToLower(strings.Join([]string{m.FirstName, m.LastName, m.Email, m.PhoneNumber, m.Address}, "\x00"))
		if strings.Contains(hay, q) {
			c := m
			out = append(out, &c)
		}
	}
	sortByCreated(out)
	return out, nil
}

func sortByCreated(list []*entity.Member) {
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
}

// AdminRepo is an in-memory repository.AdminRepository backed by a UserRepo
// for registry resolution.
type AdminRepo struct {
	mu       sync.Mutex
	admins   map[string]entity.Admin
	registry []string
	Users    *UserRepo
}

func NewAdminRepo(users *UserRepo) *AdminRepo {
	return &AdminRepo{admins: make(map[string]entity.Admin), Users: users}
}

func (r *AdminRepo) Create(_ context.Context, a *entity.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.admins {
		if strings.EqualFold(ex.Email, a.Email) {
			return repository.ErrDuplicate
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.admins[a.ID] = *a
	return nil
}

func (r *AdminRepo) GetByEmail(_ context.Context, email string) (*entity.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if strings.EqualFold(a.Email, email) {
			c := a
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *AdminRepo) AddUserToRegistry(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.registry {
		if id == userID {
			return nil
		}
	}
	r.registry = append(r.registry, userID)
	return nil
}

func (r *AdminRepo) ListRegistryUsers(ctx context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	ids := append([]string(nil), r.registry...)
	r.mu.Unlock()
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		u, err := r.Users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *AdminRepo) RegistrySize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.registry)
}

// ResetTokenStore is an in-memory application.ResetTokenStore. Now is
// swappable so expiry can be driven from tests.
type ResetTokenStore struct {
	mu      sync.Mutex
	entries map[string]resetEntry
	Now     func() time.Time
}

type resetEntry struct {
	userID  string
	expires time.Time
}

func NewResetTokenStore() *ResetTokenStore {
	return &ResetTokenStore{entries: make(map[string]resetEntry), Now: time.Now}
}

func (s *ResetTokenStore) Save(_ context.Context, tokenHash, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tokenHash] = resetEntry{userID: userID, expires: s.Now().Add(ttl)}
	return nil
}

func (s *ResetTokenStore) Lookup(_ context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tokenHash]
	if !ok || !s.Now().Before(e.expires) {
		delete(s.entries, tokenHash)
		return "", repository.ErrNotFound
	}
	return e.userID, nil
}

func (s *ResetTokenStore) Delete(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, tokenHash)
	return nil
}

func (s *ResetTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ImageStore records uploads and deletes; FailUploads forces the upstream
// error path.
type ImageStore struct {
	mu          sync.Mutex
	FailUploads bool
	Uploads     []string // "folder/id"
	Deletes     []string
}

func (s *ImageStore) Upload(_ context.Context, r io.Reader, id, folder, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUploads {
		return "", io.ErrUnexpectedEOF
	}
	_, _ = io.Copy(io.Discard, r)
	s.Uploads = append(s.Uploads, folder+"/"+id)
	return "https://img.test/" + folder + "/" + id, nil
}

func (s *ImageStore) Delete(_ context.Context, id, folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes = append(s.Deletes, folder+"/"+id)
	return nil
}

// Dispatcher records email jobs; Err makes every dispatch fail.
type Dispatcher struct {
	mu   sync.Mutex
	Err  error
	Jobs []mailer.EmailJob
}

func (d *Dispatcher) Dispatch(_ context.Context, job mailer.EmailJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.Jobs = append(d.Jobs, job)
	return nil
}

func (d *Dispatcher) Sent() []mailer.EmailJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]mailer.EmailJob(nil), d.Jobs...)
}

// SearchIndex is an in-memory application.MemberSearchIndex; Fail makes
// every call error so fallbacks can be exercised.
type SearchIndex struct {
	mu   sync.Mutex
	Fail bool
	Docs map[string]entity.Member
}

func NewSearchIndex() *SearchIndex {
	return &SearchIndex{Docs: make(map[string]entity.Member)}
}

func (x *SearchIndex) Index(_ context.Context, m *entity.Member) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.Fail {
		return io.ErrUnexpectedEOF
	}
	x.Docs[m.ID] = *m
	return nil
}

func (x *SearchIndex) Remove(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.Fail {
		return io.ErrUnexpectedEOF
	}
	delete(x.Docs, id)
	return nil
}

func (x *SearchIndex) Search(_ context.Context, query string) ([]*entity.Member, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.Fail {
		return nil, io.ErrUnexpectedEOF
	}
	q := strings.ToLower(query)
	var out []*entity.Member
	for _, m := range x.Docs {
		if !m.IsApproved {
			continue
		}
		hay := strings.ToLower(strings.Join([]string{m.FirstName, m.LastName, m.Email, m.PhoneNumber, m.Address}, "\x00"))
		if strings.Contains(hay, q) {
			c := m
			out = append(out, &c)
		}
	}
	sortByCreated(out)
	return out, nil
}
