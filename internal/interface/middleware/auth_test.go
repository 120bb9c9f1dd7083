package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taranco/contact-directory-api/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(tm *helpers.TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/user", UserAuth(tm), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	r.GET("/admin", AdminAuth(tm), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxAdminIDKey))
	})
	return r
}

func TestUserAuth(t *testing.T) {
	tm := helpers.NewTokenManager("user-secret", "admin-secret", time.Hour, time.Hour)
	r := newAuthRouter(tm)

	userToken, _, err := tm.GenerateUserToken("user-42")
	if err != nil {
		t.Fatalf("generate user token: %v", err)
	}
	adminToken, _, err := tm.GenerateAdminToken("admin-1")
	if err != nil {
		t.Fatalf("generate admin token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized, ""},
		{"admin token rejected", "Bearer " + adminToken, http.StatusUnauthorized, ""},
		{"valid token", "Bearer " + userToken, http.StatusOK, "user-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAdminAuth(t *testing.T) {
	tm := helpers.NewTokenManager("user-secret", "admin-secret", time.Hour, time.Hour)
	r := newAuthRouter(tm)

	userToken, _, err := tm.GenerateUserToken("user-42")
	if err != nil {
		t.Fatalf("generate user token: %v", err)
	}
	adminToken, _, err := tm.GenerateAdminToken("admin-7")
	if err != nil {
		t.Fatalf("generate admin token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, ""},
		{"user token rejected", "Bearer " + userToken, http.StatusUnauthorized, ""},
		{"valid token", "Bearer " + adminToken, http.StatusOK, "admin-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("AdminAuthorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestUserAuthDoesNotReadAdminHeader(t *testing.T) {
	tm := helpers.NewTokenManager("user-secret", "admin-secret", time.Hour, time.Hour)
	r := newAuthRouter(tm)

	userToken, _, err := tm.GenerateUserToken("user-42")
	if err != nil {
		t.Fatalf("generate user token: %v", err)
	}

	// A user token in the admin header must not satisfy user auth.
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("AdminAuthorization", "Bearer "+userToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
