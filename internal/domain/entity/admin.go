package entity

import "time"

// Admin is an identity record distinct from User; it carries no relationship
// to users other than through the shared registry.
type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
