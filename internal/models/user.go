package models

import (
	"time"
)

// User is an operator account allowed to manage records.
type User struct {
	ID           string
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	TokenKey     string // Per-user secret mixed into session signing
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
