package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/taranco/contact-directory-api/internal/application"
	"github.com/taranco/contact-directory-api/pkg/response"
	"github.com/taranco/contact-directory-api/pkg/validation"
)

// AuthHandler covers account registration, login and the two password
// recovery flows (OTP and emailed reset link).
type AuthHandler struct {
	Auth     *app.AuthService
	Recovery *app.RecoveryService
	Logger   *logrus.Logger
}

func NewAuthHandler(auth *app.AuthService, recovery *app.RecoveryService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Recovery: recovery, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Category string `json:"category"`
	AboutUs  string `json:"aboutUs"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyOTPRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,otp"`
	NewPassword string `json:"newPassword" binding:"omitempty,pwd"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, exp, err := h.Auth.Register(c.Request.Context(), app.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Category: req.Category,
		AboutUs:  req.AboutUs,
	})
	if err != nil {
		if errors.Is(err, app.ErrConflict) {
			response.Error[any](c, http.StatusBadRequest, "User already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token": token,
		"user":  userJSON(u, nil),
	}, "User registered successfully", map[string]any{"expires_at": exp})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, exp, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusBadRequest, "Invalid email or password", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  userJSON(u, nil),
	}, "Login successful", map[string]any{"expires_at": exp})
}

// ForgotPassword starts the OTP flow with intent to reset the password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	h.sendOTP(c, true, "OTP sent successfully. Please check your email to verify and reset your password.")
}

// SendOTP issues a plain verification code without the reset framing.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	h.sendOTP(c, false, "OTP sent successfully. Please check your email.")
}

func (h *AuthHandler) sendOTP(c *gin.Context, passwordReset bool, okMsg string) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Recovery.RequestOTP(c.Request.Context(), req.Email, passwordReset)
	switch {
	case err == nil:
		response.Success[any](c, http.StatusOK, nil, okMsg, nil)
	case errors.Is(err, app.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "User not found with this email address", nil)
	case errors.Is(err, app.ErrUpstream):
		response.Error[any](c, http.StatusInternalServerError, "Error sending OTP", nil)
	default:
		h.Logger.WithError(err).Error("otp request failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
	}
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	changed, err := h.Recovery.VerifyOTP(c.Request.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		if errors.Is(err, app.ErrChallenge) || errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusBadRequest, "Invalid or expired OTP", nil)
			return
		}
		h.Logger.WithError(err).Error("otp verification failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}

	msg := "OTP verified successfully. You can now reset your password."
	if changed {
		msg = "OTP verified and password reset successfully"
	}
	response.Success[any](c, http.StatusOK, nil, msg, nil)
}

// RequestResetLink responds identically for known and unknown accounts so the
// endpoint cannot be used to probe which emails are registered.
func (h *AuthHandler) RequestResetLink(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if _, err := h.Recovery.RequestResetLink(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, app.ErrUpstream) {
			response.Error[any](c, http.StatusInternalServerError, "Error sending reset link", nil)
			return
		}
		h.Logger.WithError(err).Error("reset link request failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "If an account exists for that email, a reset link has been sent.", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Recovery.ResetWithLink(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, app.ErrChallenge) {
			response.Error[any](c, http.StatusBadRequest, "Invalid or expired reset token", nil)
			return
		}
		h.Logger.WithError(err).Error("link reset failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password reset successfully", nil)
}
