package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taranco/contact-directory-api/pkg/helpers"
	"github.com/taranco/contact-directory-api/pkg/response"
)

const (
	// CtxUserIDKey is the Gin context key the resolved user id is stored under.
	CtxUserIDKey = "userID"
	// CtxAdminIDKey is the Gin context key the resolved admin id is stored under.
	CtxAdminIDKey = "adminID"
)

func bearerToken(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// UserAuth validates the Authorization header against the user token
// namespace and injects the user id into the context. Admin tokens never
// pass here: they are signed with a different secret and role.
func UserAuth(tm *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error[any](c, http.StatusUnauthorized, "authorization header missing, access denied", nil)
			c.Abort()
			return
		}
		token := bearerToken(header)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "no authentication token, access denied", nil)
			c.Abort()
			return
		}
		claims, err := tm.ParseUserToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "token verification failed, authorization denied", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, claims.SubjectID)
		c.Next()
	}
}

// AdminAuth validates the AdminAuthorization header against the admin token
// namespace and injects the admin id into the context.
func AdminAuth(tm *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("AdminAuthorization"))
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "please authenticate", nil)
			c.Abort()
			return
		}
		claims, err := tm.ParseAdminToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "please authenticate", nil)
			c.Abort()
			return
		}
		c.Set(CtxAdminIDKey, claims.SubjectID)
		c.Next()
	}
}
