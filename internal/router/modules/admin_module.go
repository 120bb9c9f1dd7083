package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/taranco/contact-directory-api/internal/interface/http"
	"github.com/taranco/contact-directory-api/internal/interface/middleware"
	"github.com/taranco/contact-directory-api/pkg/helpers"
)

// AdminModule routes carry the admin token namespace; a user token is never
// accepted here.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Tokens  *helpers.TokenManager
}

func NewAdminModule(h *handlers.AdminHandler, tm *helpers.TokenManager) *AdminModule {
	return &AdminModule{Handler: h, Tokens: tm}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")

	admin.POST("/create-admin", m.Handler.Create)
	admin.POST("/admin-login", m.Handler.Login)

	protected := admin.Group("")
	protected.Use(middleware.AdminAuth(m.Tokens))
	{
		protected.PUT("/approve-member/:memberId", m.Handler.ToggleApproval)
		protected.PUT("/approve-user/:userId", m.Handler.ApproveUser)
		protected.GET("/get-all-users", m.Handler.GetAllUsers)
		protected.GET("/get-user-members/:userId", m.Handler.GetUserMembers)
	}
}
