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

// AdminHandler covers the moderation surface: admin accounts, member
// approval toggling and the registry of user accounts visible to admins.
type AdminHandler struct {
	Admins *app.AdminService
	Logger *logrus.Logger
}

func NewAdminHandler(admins *app.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Admins: admins, Logger: logger}
}

type adminCredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func (h *AdminHandler) Create(c *gin.Context) {
	var req adminCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a, err := h.Admins.CreateAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrConflict) {
			response.Error[any](c, http.StatusBadRequest, "Admin already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("admin create failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":    a.ID,
		"email": a.Email,
	}, "Admin created successfully", nil)
}

// Login distinguishes an unknown admin (404) from a bad password (401).
func (h *AdminHandler) Login(c *gin.Context) {
	var req adminCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	token, exp, err := h.Admins.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error[any](c, http.StatusNotFound, "Admin not found", nil)
		case errors.Is(err, app.ErrInvalidCredentials):
			response.Error[any](c, http.StatusUnauthorized, "Invalid credentials", nil)
		default:
			h.Logger.WithError(err).Error("admin login failed")
			response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token}, "Admin login successful", map[string]any{"expires_at": exp})
}

// ToggleApproval flips a member's public visibility rather than setting it,
// so approving twice returns the member to hidden.
func (h *AdminHandler) ToggleApproval(c *gin.Context) {
	m, err := h.Admins.ToggleApproval(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "Member not found", nil)
			return
		}
		h.Logger.WithError(err).Error("approval toggle failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}

	msg := "Member approved successfully"
	if !m.IsApproved {
		msg = "Member unapproved successfully"
	}
	response.Success(c, http.StatusOK, gin.H{"member": memberJSON(m)}, msg, nil)
}

// ApproveUser adds the account to the admin registry; re-adding an already
// registered account is a no-op and still succeeds.
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	if err := h.Admins.ApproveUserForRegistry(c.Request.Context(), c.Param("userId")); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.Logger.WithError(err).Error("registry add failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "User approved successfully", nil)
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := h.Admins.ListAllUsers(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("registry listing failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, ru := range users {
		out = append(out, userJSON(ru.User, ru.Members))
	}
	response.Success(c, http.StatusOK, out, "registered users", map[string]any{"count": len(out)})
}

func (h *AdminHandler) GetUserMembers(c *gin.Context) {
	members, err := h.Admins.ListMembersOfUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.Logger.WithError(err).Error("member listing for user failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	response.Success(c, http.StatusOK, membersJSON(members), "user members", map[string]any{"count": len(members)})
}
