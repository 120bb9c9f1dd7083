package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taranco/contact-directory-api/internal/domain/entity"
)

// JSON shapes for API payloads. The password hash is never serialized.

func memberJSON(m *entity.Member) gin.H {
	var dob any
	if m.DOB != nil {
		dob = m.DOB.Format("2006-01-02")
	}
	return gin.H{
		"id":          m.ID,
		"userId":      m.UserID,
		"firstName":   m.FirstName,
		"lastName":    m.LastName,
		"email":       m.Email,
		"phoneNumber": m.PhoneNumber,
		"address":     m.Address,
		"dob":         dob,
		"dp":          m.PhotoURL,
		"familyHead":  m.FamilyHead,
		"isApproved":  m.IsApproved,
		"createdAt":   m.CreatedAt.Format(time.RFC3339),
		"updatedAt":   m.UpdatedAt.Format(time.RFC3339),
	}
}

func membersJSON(list []*entity.Member) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, m := range list {
		out = append(out, memberJSON(m))
	}
	return out
}

func userJSON(u *entity.User, members []*entity.Member) gin.H {
	var familyHead any
	if u.FamilyHeadID != "" {
		familyHead = u.FamilyHeadID
	}
	h := gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"category":     u.Category,
		"aboutUs":      u.AboutUs,
		"banner":       u.BannerURL,
		"familyHeadId": familyHead,
		"createdAt":    u.CreatedAt.Format(time.RFC3339),
	}
	if members != nil {
		h["membersArray"] = membersJSON(members)
	}
	return h
}
