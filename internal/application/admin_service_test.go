package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
	"github.com/taranco/contact-directory-api/internal/testutil"
	"github.com/taranco/contact-directory-api/pkg/helpers"
)

type adminFixture struct {
	svc     *AdminService
	users   *testutil.UserRepo
	members *testutil.MemberRepo
	admins  *testutil.AdminRepo
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	users := testutil.NewUserRepo()
	members := testutil.NewMemberRepo()
	admins := testutil.NewAdminRepo(users)
	tm := helpers.NewTokenManager("user-secret", "admin-secret", time.Hour, time.Hour)
	return &adminFixture{
		svc:     NewAdminService(admins, users, members, tm, nil, nil),
		users:   users,
		members: members,
		admins:  admins,
	}
}

func TestAdminLogin(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateAdmin(ctx, "admin@x.com", "adminpass1"); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	token, _, err := f.svc.Login(ctx, "admin@x.com", "adminpass1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := f.svc.Tokens.ParseAdminToken(token)
	if err != nil {
		t.Fatalf("parse admin token: %v", err)
	}
	if claims.Role != helpers.RoleAdmin {
		t.Errorf("role = %q, want admin", claims.Role)
	}
	// the admin token must not verify in the user namespace
	if _, err := f.svc.Tokens.ParseUserToken(token); err == nil {
		t.Error("admin token accepted as user token")
	}

	if _, _, err := f.svc.Login(ctx, "nobody@x.com", "adminpass1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown admin: err = %v, want ErrNotFound", err)
	}
	if _, _, err := f.svc.Login(ctx, "admin@x.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateAdminDuplicate(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateAdmin(ctx, "admin@x.com", "adminpass1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.CreateAdmin(ctx, "admin@x.com", "other"); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestToggleApprovalFlips(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	m := &entity.Member{UserID: "u1", FirstName: "Jane", LastName: "Doe", Email: "jane@x.com"}
	if err := f.members.Create(ctx, m); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	got, err := f.svc.ToggleApproval(ctx, m.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !got.IsApproved {
		t.Fatal("first toggle should approve")
	}
	listed, _ := f.members.ListApproved(ctx)
	if len(listed) != 1 {
		t.Fatalf("approved listing = %d entries, want 1", len(listed))
	}

	// toggling again hides the member, it does not stay approved
	got, err = f.svc.ToggleApproval(ctx, m.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if got.IsApproved {
		t.Fatal("second toggle should unapprove")
	}
	listed, _ = f.members.ListApproved(ctx)
	if len(listed) != 0 {
		t.Fatalf("approved listing = %d entries, want 0", len(listed))
	}

	if _, err := f.svc.ToggleApproval(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing member: err = %v, want ErrNotFound", err)
	}
}

func TestToggleApprovalMaintainsSearchIndex(t *testing.T) {
	f := newAdminFixture(t)
	idx := testutil.NewSearchIndex()
	f.svc.Search = idx
	ctx := context.Background()

	m := &entity.Member{UserID: "u1", FirstName: "Jane", LastName: "Doe", Email: "jane@x.com"}
	if err := f.members.Create(ctx, m); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	if _, err := f.svc.ToggleApproval(ctx, m.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, ok := idx.Docs[m.ID]; !ok {
		t.Error("approved member not indexed")
	}

	if _, err := f.svc.ToggleApproval(ctx, m.ID); err != nil {
		t.Fatalf("unapprove: %v", err)
	}
	if _, ok := idx.Docs[m.ID]; ok {
		t.Error("unapproved member still indexed")
	}
}

func TestRegistryAddIsIdempotent(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	u := &entity.User{Email: "a@x.com"}
	if err := f.users.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := f.svc.ApproveUserForRegistry(ctx, u.ID); err != nil {
			t.Fatalf("add #%d: %v", i+1, err)
		}
	}
	if n := f.admins.RegistrySize(); n != 1 {
		t.Errorf("registry size = %d, want 1", n)
	}

	if err := f.svc.ApproveUserForRegistry(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}
}

func TestListAllUsersResolvesMembers(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	u := &entity.User{Email: "a@x.com"}
	if err := f.users.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	m := &entity.Member{UserID: u.ID, FirstName: "Jane", LastName: "Doe", Email: "jane@x.com"}
	if err := f.members.Create(ctx, m); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	if err := f.svc.ApproveUserForRegistry(ctx, u.ID); err != nil {
		t.Fatalf("register: %v", err)
	}

	out, err := f.svc.ListAllUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("users = %d, want 1", len(out))
	}
	if out[0].User.ID != u.ID || len(out[0].Members) != 1 {
		t.Errorf("entry = %+v, want user with one member", out[0])
	}
}

func TestListMembersOfUser(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	u := &entity.User{Email: "a@x.com"}
	if err := f.users.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	// unapproved members are visible to admins
	m := &entity.Member{UserID: u.ID, FirstName: "Jane", LastName: "Doe", Email: "jane@x.com"}
	if err := f.members.Create(ctx, m); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	got, err := f.svc.ListMembersOfUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != m.ID {
		t.Errorf("members = %+v", got)
	}

	if _, err := f.svc.ListMembersOfUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}
}
