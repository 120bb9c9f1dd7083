package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/taranco/contact-directory-api/internal/application"
	"github.com/taranco/contact-directory-api/internal/interface/middleware"
	"github.com/taranco/contact-directory-api/pkg/response"
)

type UserHandler struct {
	Users  *app.UserService
	Logger *logrus.Logger
}

func NewUserHandler(users *app.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	p, err := h.Users.GetProfile(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.Logger.WithError(err).Error("profile fetch failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(p.User, p.Members), "profile", nil)
}

// UpdateProfile accepts a multipart form so the banner image can ride along
// with the category and aboutUs fields.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	banner, closeBanner, err := formImage(c, "bannerImage")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "could not read uploaded banner", nil)
		return
	}
	if closeBanner != nil {
		defer closeBanner()
	}

	p, err := h.Users.UpdateProfile(c.Request.Context(), uid, app.UpdateProfileInput{
		Category: c.PostForm("category"),
		AboutUs:  c.PostForm("aboutUs"),
	}, banner)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
		case errors.Is(err, app.ErrUpstream):
			response.Error[any](c, http.StatusInternalServerError, "Error uploading banner", nil)
		default:
			h.Logger.WithError(err).Error("profile update failed")
			response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, userJSON(p.User, p.Members), "Profile updated successfully", nil)
}
