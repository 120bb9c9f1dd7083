package entity

import "time"

// User is the aggregate root for an account that owns members.
// Passwords are stored as bcrypt hashes in PasswordHash.
//
// FamilyHeadID points at the one owned member flagged as family head; empty
// when no member holds the flag. OTP fields form the pending one-time-code
// recovery challenge and are cleared on consumption.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Category     string
	AboutUs      string
	BannerURL    string
	FamilyHeadID string
	OTPCode      string
	OTPExpiresAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPendingOTP reports whether an OTP challenge is stored, regardless of expiry.
func (u *User) HasPendingOTP() bool {
	return u.OTPCode != ""
}
