package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/taranco/contact-directory-api/internal/application"
	"github.com/taranco/contact-directory-api/internal/interface/middleware"
	"github.com/taranco/contact-directory-api/pkg/response"
)

const dobLayout = "2006-01-02"

// MemberHandler exposes member CRUD for owners plus the public directory
// reads. Create and update accept multipart forms so the photo rides along
// with the fields.
type MemberHandler struct {
	Directory *app.DirectoryService
	Users     *app.UserService
	Logger    *logrus.Logger
}

func NewMemberHandler(directory *app.DirectoryService, users *app.UserService, logger *logrus.Logger) *MemberHandler {
	return &MemberHandler{Directory: directory, Users: users, Logger: logger}
}

func parseDOB(c *gin.Context) (*time.Time, bool) {
	raw := c.PostForm("dob")
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dobLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func (h *MemberHandler) Create(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	first := c.PostForm("firstName")
	last := c.PostForm("lastName")
	email := c.PostForm("email")
	if first == "" || last == "" || email == "" {
		response.Error[any](c, http.StatusBadRequest, "firstName, lastName and email are required", nil)
		return
	}
	dob, ok := parseDOB(c)
	if !ok {
		response.Error[any](c, http.StatusBadRequest, "dob must be formatted as YYYY-MM-DD", nil)
		return
	}
	familyHead, _ := strconv.ParseBool(c.PostForm("familyHead"))

	photo, closePhoto, err := formImage(c, "dp")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "could not read uploaded photo", nil)
		return
	}
	if closePhoto != nil {
		defer closePhoto()
	}

	m, err := h.Directory.CreateMember(c.Request.Context(), uid, app.CreateMemberInput{
		FirstName:   first,
		LastName:    last,
		Email:       email,
		PhoneNumber: c.PostForm("phoneNumber"),
		Address:     c.PostForm("address"),
		DOB:         dob,
		FamilyHead:  familyHead,
	}, photo)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrConflict):
			response.Error[any](c, http.StatusBadRequest, "Member with this email already exists", nil)
		case errors.Is(err, app.ErrUpstream):
			// member row is already stored, only the photo is missing
			response.Error[any](c, http.StatusInternalServerError, "Error uploading photo", nil)
		default:
			h.Logger.WithError(err).Error("member create failed")
			response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		}
		return
	}

	profile, err := h.Users.GetProfile(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).Error("profile reload after member create failed")
		response.Success(c, http.StatusCreated, gin.H{"member": memberJSON(m)}, "Member added successfully", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"member": memberJSON(m),
		"user":   userJSON(profile.User, profile.Members),
	}, "Member added successfully", nil)
}

func (h *MemberHandler) Update(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	memberID := c.Param("memberId")

	dob, ok := parseDOB(c)
	if !ok {
		response.Error[any](c, http.StatusBadRequest, "dob must be formatted as YYYY-MM-DD", nil)
		return
	}
	var familyHead *bool
	if raw, exists := c.GetPostForm("familyHead"); exists {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "familyHead must be a boolean", nil)
			return
		}
		familyHead = &v
	}

	photo, closePhoto, err := formImage(c, "dp")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "could not read uploaded photo", nil)
		return
	}
	if closePhoto != nil {
		defer closePhoto()
	}

	m, err := h.Directory.UpdateMember(c.Request.Context(), uid, memberID, app.UpdateMemberInput{
		FirstName:   c.PostForm("firstName"),
		LastName:    c.PostForm("lastName"),
		Email:       c.PostForm("email"),
		PhoneNumber: c.PostForm("phoneNumber"),
		Address:     c.PostForm("address"),
		DOB:         dob,
		FamilyHead:  familyHead,
	}, photo)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error[any](c, http.StatusNotFound, "Member not found", nil)
		case errors.Is(err, app.ErrConflict):
			response.Error[any](c, http.StatusBadRequest, "Member with this email already exists", nil)
		case errors.Is(err, app.ErrUpstream):
			response.Error[any](c, http.StatusInternalServerError, "Error uploading photo", nil)
		default:
			h.Logger.WithError(err).Error("member update failed")
			response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		}
		return
	}

	profile, err := h.Users.GetProfile(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).Error("profile reload after member update failed")
		response.Success(c, http.StatusOK, gin.H{"member": memberJSON(m)}, "Member updated successfully", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"member": memberJSON(m),
		"user":   userJSON(profile.User, profile.Members),
	}, "Member updated successfully", nil)
}

func (h *MemberHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	memberID := c.Param("memberId")

	m, owner, err := h.Directory.DeleteMember(c.Request.Context(), uid, memberID)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "Member not found", nil)
			return
		}
		h.Logger.WithError(err).Error("member delete failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}

	members, err := h.Directory.ListByOwner(c.Request.Context(), uid)
	if err != nil {
		members = nil
	}
	response.Success(c, http.StatusOK, gin.H{
		"member": memberJSON(m),
		"user":   userJSON(owner, members),
	}, "Member deleted successfully", nil)
}

// Get is a public read: any visitor can open an approved member's card. The
// response carries the owning account and its other members for the detail
// page.
func (h *MemberHandler) Get(c *gin.Context) {
	d, err := h.Directory.GetMember(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "Member not found", nil)
			return
		}
		h.Logger.WithError(err).Error("member fetch failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	var owner any
	if d.Owner != nil {
		owner = userJSON(d.Owner, d.Related)
	}
	response.Success(c, http.StatusOK, gin.H{
		"member":  memberJSON(d.Member),
		"user":    owner,
		"related": membersJSON(d.Related),
	}, "member", nil)
}

func (h *MemberHandler) ListApproved(c *gin.Context) {
	list, err := h.Directory.ListApproved(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("approved member listing failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	response.Success(c, http.StatusOK, membersJSON(list), "approved members", map[string]any{"count": len(list)})
}

func (h *MemberHandler) Search(c *gin.Context) {
	q := c.Query("q")
	list, err := h.Directory.SearchApproved(c.Request.Context(), q)
	if err != nil {
		h.Logger.WithError(err).Error("member search failed")
		response.Error[any](c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	response.Success(c, http.StatusOK, membersJSON(list), "search results", map[string]any{"count": len(list), "q": q})
}
