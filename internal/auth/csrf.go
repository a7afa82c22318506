package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// CSRFFieldName is the form field a state-changing form echoes the CSRF
// cookie in. Scripts may send the X-CSRF-Token header instead.
const (
	CSRFFieldName  = "csrfmiddlewaretoken"
	CSRFHeaderName = "X-CSRF-Token"
)

// GenerateCSRFToken returns 32 random bytes, hex encoded.
func GenerateCSRFToken() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}

// CSRFTokensMatch compares the submitted token with the cookie value in
// constant time.
func CSRFTokensMatch(submitted, cookie string) bool {
	if submitted == "" || cookie == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(cookie)) == 1
}
