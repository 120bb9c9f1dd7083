package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/taranco/contact-directory-api/internal/interface/http"
	"github.com/taranco/contact-directory-api/internal/interface/middleware"
	"github.com/taranco/contact-directory-api/pkg/helpers"
)

type UserModule struct {
	Handler *handlers.UserHandler
	Tokens  *helpers.TokenManager
}

func NewUserModule(h *handlers.UserHandler, tm *helpers.TokenManager) *UserModule {
	return &UserModule{Handler: h, Tokens: tm}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	user := rg.Group("/user")
	user.Use(middleware.UserAuth(m.Tokens))
	{
		user.GET("/users", m.Handler.GetProfile)
		user.PUT("/users", m.Handler.UpdateProfile)
	}
}
