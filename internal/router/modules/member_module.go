package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/taranco/contact-directory-api/internal/interface/http"
	"github.com/taranco/contact-directory-api/internal/interface/middleware"
	"github.com/taranco/contact-directory-api/pkg/helpers"
)

// MemberModule mixes public directory reads with owner-scoped writes. The
// read endpoints stay open so visitor pages can render approved members.
type MemberModule struct {
	Handler *handlers.MemberHandler
	Tokens  *helpers.TokenManager
}

func NewMemberModule(h *handlers.MemberHandler, tm *helpers.TokenManager) *MemberModule {
	return &MemberModule{Handler: h, Tokens: tm}
}

func (m *MemberModule) Register(rg *gin.RouterGroup) {
	members := rg.Group("/members")

	members.GET("", m.Handler.ListApproved)
	members.GET("/search", m.Handler.Search)
	members.GET("/:memberId", m.Handler.Get)

	owned := members.Group("")
	owned.Use(middleware.UserAuth(m.Tokens))
	{
		owned.POST("", m.Handler.Create)
		owned.PUT("/:memberId", m.Handler.Update)
		owned.DELETE("/:memberId", m.Handler.Delete)
	}
}
