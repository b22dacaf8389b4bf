package session

import (
	"fmt"
	"regexp"

	"github.com/wencuts/masterclass/internal/errs"
)

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// specialCharRegex matches the special characters the password policy
// accepts
var specialCharRegex = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)

// ValidatePassword checks the password policy: at least 8 characters
// and at least one special character. The returned error names the
// rule that failed.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", errs.ErrValidation)
	}
	if !specialCharRegex.MatchString(password) {
		return fmt.Errorf("%w: password must contain at least one special character", errs.ErrValidation)
	}
	return nil
}

// validateEmail checks the email shape before any remote call
func validateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", errs.ErrValidation)
	}
	return nil
}
