package entity

import "time"

// Member is a contact record owned by exactly one user. Members start
// unapproved and only become publicly visible once an admin approves them.
type Member struct {
	ID          string
	UserID      string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     string
	DOB         *time.Time
	PhotoURL    string
	FamilyHead  bool
	IsApproved  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
