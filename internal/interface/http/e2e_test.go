package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	app "github.com/taranco/contact-directory-api/internal/application"
	handlers "github.com/taranco/contact-directory-api/internal/interface/http"
	"github.com/taranco/contact-directory-api/internal/router"
	"github.com/taranco/contact-directory-api/internal/router/modules"
	"github.com/taranco/contact-directory-api/internal/testutil"
	"github.com/taranco/contact-directory-api/pkg/helpers"
	"github.com/taranco/contact-directory-api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type testServer struct {
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := testutil.NewUserRepo()
	members := testutil.NewMemberRepo()
	admins := testutil.NewAdminRepo(users)
	images := &testutil.ImageStore{}
	mail := &testutil.Dispatcher{}
	resetTokens := testutil.NewResetTokenStore()
	tokens := helpers.NewTokenManager("user-secret", "admin-secret", time.Hour, time.Hour)

	authSvc := app.NewAuthService(users, tokens, mail, nil)
	recoverySvc := app.NewRecoveryService(users, resetTokens, mail, nil, 10*time.Minute, time.Hour, "https://app.test/reset")
	directorySvc := app.NewDirectoryService(members, users, images, nil, nil)
	userSvc := app.NewUserService(users, members, images, nil)
	adminSvc := app.NewAdminService(admins, users, members, tokens, nil, nil)

	engine := gin.New()
	reg := router.NewRegistry(engine)
	reg.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, recoverySvc, nil)))
	reg.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, nil), tokens))
	reg.Add(modules.NewMemberModule(handlers.NewMemberHandler(directorySvc, userSvc, nil), tokens))
	reg.Add(modules.NewAdminModule(handlers.NewAdminHandler(adminSvc, nil), tokens))
	reg.RegisterAll()

	return &testServer{engine: engine}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, header map[string]string) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid envelope %q: %v", method, path, w.Body.String(), err)
	}
	return w, &env
}

func (s *testServer) doJSON(t *testing.T, method, path string, payload any, header map[string]string) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if header == nil {
		header = map[string]string{}
	}
	header["Content-Type"] = "application/json"
	return s.do(t, method, path, bytes.NewReader(b), header)
}

func multipartBody(t *testing.T, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func userBearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func adminBearer(token string) map[string]string {
	return map[string]string{"AdminAuthorization": "Bearer " + token}
}

// Walks the whole lifecycle: register, login, add a family-head member,
// admin approval gating the public listing, and delete clearing the
// family-head reference.
func TestDirectoryLifecycle(t *testing.T) {
	s := newTestServer(t)

	// register user A
	w, env := s.doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "a@x.com",
		"password": "password1",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", w.Code, w.Body.String())
	}

	// login
	w, env = s.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "password1",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	var loginData struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &loginData); err != nil || loginData.Token == "" {
		t.Fatalf("login data = %s (err %v)", env.Data, err)
	}
	userToken := loginData.Token

	// create Jane as family head
	body, ctype := multipartBody(t, map[string]string{
		"firstName":  "Jane",
		"lastName":   "Doe",
		"email":      "jane@x.com",
		"familyHead": "true",
	})
	hdr := userBearer(userToken)
	hdr["Content-Type"] = ctype
	w, env = s.do(t, http.MethodPost, "/api/members", body, hdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("create member: status %d body %s", w.Code, w.Body.String())
	}
	var createData struct {
		Member struct {
			ID string `json:"id"`
		} `json:"member"`
		User struct {
			FamilyHeadID string `json:"familyHeadId"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &createData); err != nil {
		t.Fatalf("create data = %s: %v", env.Data, err)
	}
	janeID := createData.Member.ID
	if janeID == "" {
		t.Fatal("no member id returned")
	}
	if createData.User.FamilyHeadID != janeID {
		t.Errorf("familyHeadId = %q, want %q", createData.User.FamilyHeadID, janeID)
	}

	// unapproved members are invisible publicly
	w, env = s.do(t, http.MethodGet, "/api/members", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var listed []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("list data = %s: %v", env.Data, err)
	}
	if len(listed) != 0 {
		t.Fatalf("unapproved member listed: %+v", listed)
	}

	// bootstrap an admin and approve Jane
	w, _ = s.doJSON(t, http.MethodPost, "/api/admin/create-admin", map[string]string{
		"email":    "admin@x.com",
		"password": "adminpass1",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create admin: status %d body %s", w.Code, w.Body.String())
	}
	w, env = s.doJSON(t, http.MethodPost, "/api/admin/admin-login", map[string]string{
		"email":    "admin@x.com",
		"password": "adminpass1",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin login: status %d body %s", w.Code, w.Body.String())
	}
	var adminData struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &adminData); err != nil || adminData.Token == "" {
		t.Fatalf("admin login data = %s (err %v)", env.Data, err)
	}

	// a user token must not pass admin auth
	w, _ = s.do(t, http.MethodPut, fmt.Sprintf("/api/admin/approve-member/%s", janeID), nil, adminBearer(userToken))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("user token on admin route: status %d, want 401", w.Code)
	}

	w, _ = s.do(t, http.MethodPut, fmt.Sprintf("/api/admin/approve-member/%s", janeID), nil, adminBearer(adminData.Token))
	if w.Code != http.StatusOK {
		t.Fatalf("approve member: status %d body %s", w.Code, w.Body.String())
	}

	// now the public listing and search include Jane
	w, env = s.do(t, http.MethodGet, "/api/members", nil, nil)
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("list data = %s: %v", env.Data, err)
	}
	if len(listed) != 1 || listed[0].ID != janeID {
		t.Fatalf("approved listing = %+v, want jane", listed)
	}
	w, env = s.do(t, http.MethodGet, "/api/members/search?q=jane", nil, nil)
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("search data = %s: %v", env.Data, err)
	}
	if len(listed) != 1 {
		t.Fatalf("search results = %+v, want jane", listed)
	}

	// delete Jane; the family-head reference must clear
	w, env = s.do(t, http.MethodDelete, "/api/members/"+janeID, nil, userBearer(userToken))
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d body %s", w.Code, w.Body.String())
	}
	w, env = s.do(t, http.MethodGet, "/api/user/users", nil, userBearer(userToken))
	if w.Code != http.StatusOK {
		t.Fatalf("profile: status %d", w.Code)
	}
	var profile struct {
		FamilyHeadID *string `json:"familyHeadId"`
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("profile data = %s: %v", env.Data, err)
	}
	if profile.FamilyHeadID != nil {
		t.Errorf("familyHeadId = %v, want null after delete", *profile.FamilyHeadID)
	}
}

func TestRegisterDuplicateEmailHTTP(t *testing.T) {
	s := newTestServer(t)

	payload := map[string]string{"email": "a@x.com", "password": "password1"}
	if w, _ := s.doJSON(t, http.MethodPost, "/api/auth/register", payload, nil); w.Code != http.StatusCreated {
		t.Fatalf("first register: status %d", w.Code)
	}
	w, env := s.doJSON(t, http.MethodPost, "/api/auth/register", payload, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: status %d, want 400", w.Code)
	}
	if env.Message != "User already exists" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestMemberWritesRequireUserToken(t *testing.T) {
	s := newTestServer(t)

	body, ctype := multipartBody(t, map[string]string{
		"firstName": "Jane", "lastName": "Doe", "email": "jane@x.com",
	})
	w, _ := s.do(t, http.MethodPost, "/api/members", body, map[string]string{"Content-Type": ctype})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: status %d, want 401", w.Code)
	}
}

func TestOTPFlowHTTP(t *testing.T) {
	s := newTestServer(t)

	// unknown email is a 404 for the OTP flow
	w, env := s.doJSON(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "nobody@x.com"}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown email: status %d, want 404", w.Code)
	}
	if env.Message != "User not found with this email address" {
		t.Errorf("message = %q", env.Message)
	}

	// bad OTP shape is rejected by validation before the service runs
	w, _ = s.doJSON(t, http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"email": "a@x.com", "otp": "12", "newPassword": "password2",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short otp: status %d, want 400", w.Code)
	}
}
