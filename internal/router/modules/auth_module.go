package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/taranco/contact-directory-api/internal/interface/http"
)

// AuthModule holds the public account endpoints: none of them require a
// token, recovery included.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", m.Handler.Register)
		auth.POST("/login", m.Handler.Login)
		auth.POST("/forgot-password", m.Handler.ForgotPassword)
		auth.POST("/send-otp", m.Handler.SendOTP)
		auth.POST("/verify-otp", m.Handler.VerifyOTP)
		auth.POST("/reset-link", m.Handler.RequestResetLink)
		auth.POST("/reset-password", m.Handler.ResetPassword)
	}
}
