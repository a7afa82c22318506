package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are carried in the signed session cookie.
// RegisteredClaims.ID doubles as the browser session id.
type SessionClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionID returns the identifier scoping per-browser state such as the wizard.
func (c *SessionClaims) SessionID() string {
	return c.ID
}
