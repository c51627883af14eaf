package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailAlreadyUsed   = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password is too short")
)

// User is an account that owns bookings; admins additionally manage lots.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  *string
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}
