package application

import "errors"

// Service-level error taxonomy. Handlers translate these into HTTP statuses:
// ErrConflict -> 400/409, ErrNotFound -> 404, ErrInvalidCredentials -> 400/401,
// ErrChallenge -> 400, ErrUpstream -> 500.
var (
	ErrConflict           = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrChallenge          = errors.New("invalid or expired challenge")
	ErrUpstream           = errors.New("upstream failure")
)
