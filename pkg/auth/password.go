package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12
	TokenKeyLength = 32 // 256 bits
	MinPasswordLen = 8
	MaxPasswordLen = 128

	// similarity ratio at or above which a password is rejected as too close
	// to one of the user's own attributes
	maxSimilarity = 0.7
)

// PasswordValidationError lists every rule a password broke. The messages
// are safe to show on the registration form.
type PasswordValidationError struct {
	Errors []string
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return strings.Join(e.Errors, " ")
}

// Common weak passwords to reject
var commonPasswords = map[string]bool{
	"password":     true,
	"password1":    true,
	"12345678":     true,
	"123456789":    true,
	"1234567890":   true,
	"qwerty123":    true,
	"qwertyuiop":   true,
	"abc12345":     true,
	"password123":  true,
	"password123!": true,
	"iloveyou":     true,
	"letmein1":     true,
	"welcome1":     true,
	"sunshine":     true,
	"princess":     true,
	"starwars":     true,
	"football":     true,
	"baseball":     true,
	"trustno1":     true,
	"passw0rd":     true,
	"superman":     true,
	"whatever":     true,
	"11111111":     true,
	"00000000":     true,
}

var attributeSplit = regexp.MustCompile(`\W+`)

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func GenerateTokenKey() (string, error) {
	bytes := make([]byte, TokenKeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate token key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

// ValidatePassword checks length, common-password, all-numeric and
// similarity rules. userAttributes are the username, email and names of the
// account the password is for; empty values are ignored.
func ValidatePassword(password string, userAttributes ...string) error {
	errors := make([]string, 0)

	if len(password) < MinPasswordLen {
		errors = append(errors, fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLen))
	}
	if len(password) > MaxPasswordLen {
		errors = append(errors, fmt.Sprintf("This password is too long. It must contain at most %d characters.", MaxPasswordLen))
	}

	if commonPasswords[strings.ToLower(strings.TrimSpace(password))] {
		errors = append(errors, "This password is too common.")
	}

	if password != "" && isAllDigits(password) {
		errors = append(errors, "This password is entirely numeric.")
	}

	if attr, ok := similarAttribute(password, userAttributes); ok {
		errors = append(errors, fmt.Sprintf("The password is too similar to the %s.", attr))
	}

	if len(errors) > 0 {
		return &PasswordValidationError{Errors: errors}
	}

	return nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similarAttribute returns a description of the first attribute the password
// resembles. Attributes are compared whole and split on non-word characters,
// so "jane.doe@example.com" also matches "jane" and "doe".
func similarAttribute(password string, attributes []string) (string, bool) {
	lowered := strings.ToLower(password)
	for _, attr := range attributes {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if attr == "" {
			continue
		}
		parts := append([]string{attr}, attributeSplit.Split(attr, -1)...)
		for _, part := range parts {
			if len(part) < 3 {
				continue
			}
			if similarity(lowered, part) >= maxSimilarity {
				return "personal information", true
			}
		}
	}
	return "", false
}

// similarity is 2*LCS/(len(a)+len(b)) over runes, in [0, 1].
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return 2 * float64(prev[len(rb)]) / float64(total)
}
