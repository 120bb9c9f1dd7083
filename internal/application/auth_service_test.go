package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
	"github.com/taranco/contact-directory-api/internal/testutil"
	"github.com/taranco/contact-directory-api/pkg/helpers"
	"github.com/taranco/contact-directory-api/pkg/mailer"
)

func newAuthService(users *testutil.UserRepo, mail *testutil.Dispatcher) *AuthService {
	tm := helpers.NewTokenManager("user-secret", "admin-secret", time.Hour, time.Hour)
	return NewAuthService(users, tm, mail, nil)
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	users := testutil.NewUserRepo()
	mail := &testutil.Dispatcher{}
	svc := newAuthService(users, mail)

	u, token, exp, err := svc.Register(context.Background(), RegisterInput{
		Email:    "a@x.com",
		Password: "password1",
		Category: "family",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == "" {
		t.Fatal("no user id assigned")
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("token expiry not in the future: %v", exp)
	}

	claims, err := svc.Tokens.ParseUserToken(token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.SubjectID != u.ID {
		t.Errorf("token subject = %q, want %q", claims.SubjectID, u.ID)
	}

	jobs := mail.Sent()
	if len(jobs) != 1 || jobs[0].Template != mailer.TemplateWelcome {
		t.Errorf("welcome email jobs = %+v, want one welcome job", jobs)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := testutil.NewUserRepo()
	svc := newAuthService(users, &testutil.Dispatcher{})

	if _, _, _, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "password1"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, _, _, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "different1"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestRegisterSucceedsWhenWelcomeEmailFails(t *testing.T) {
	users := testutil.NewUserRepo()
	mail := &testutil.Dispatcher{Err: errors.New("smtp down")}
	svc := newAuthService(users, mail)

	if _, _, _, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
}

type failingUserRepo struct {
	*testutil.UserRepo
	err error
}

func (r *failingUserRepo) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, r.err
}

func TestLoginStoreFailurePropagates(t *testing.T) {
	users := &failingUserRepo{UserRepo: testutil.NewUserRepo(), err: errors.New("connection refused")}
	tm := helpers.NewTokenManager("user-secret", "admin-secret", time.Hour, time.Hour)
	svc := NewAuthService(users, tm, &testutil.Dispatcher{}, nil)

	_, _, _, err := svc.Login(context.Background(), "a@x.com", "password1")
	if err == nil {
		t.Fatal("expected an error")
	}
	// a broken store must not look like a wrong password
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("store failure reported as ErrInvalidCredentials: %v", err)
	}
	if !errors.Is(err, users.err) {
		t.Errorf("err = %v, want the store error passed through", err)
	}
}

func TestLogin(t *testing.T) {
	users := testutil.NewUserRepo()
	svc := newAuthService(users, &testutil.Dispatcher{})

	u, _, _, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, token, _, err := svc.Login(context.Background(), "a@x.com", "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("login returned user %q, want %q", got.ID, u.ID)
	}
	if token == "" {
		t.Error("no token issued")
	}

	if _, _, _, err := svc.Login(context.Background(), "a@x.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, _, err := svc.Login(context.Background(), "nobody@x.com", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}
