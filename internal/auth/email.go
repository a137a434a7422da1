package auth

import (
	"regexp"
	"strings"

	"vocab-sprint/internal/domain"
)

// https://html.spec.whatwg.org/#valid-e-mail-address
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_\x60{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// MinPasswordLength matches the identity provider's rule.
const MinPasswordLength = 6

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address shape.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !emailRegex.MatchString(email) {
		return domain.ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return domain.ErrWeakPassword
	}
	return nil
}
