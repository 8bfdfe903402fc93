package session

import (
	"regexp"

	"github.com/go-faster/errors"
)

// CredentialPolicy validates login input before Login is invoked. Login
// itself only rejects empty strings; the concrete format and strength rules
// are pluggable and applied at the edge.
type CredentialPolicy func(email, password string) error

var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// DefaultCredentialPolicy requires a plausible email shape and a password of
// at least 6 characters.
func DefaultCredentialPolicy(email, password string) error {
	if email == "" {
		return errors.Wrap(ErrInvalidCredentials, "email is required")
	}
	if !emailShape.MatchString(email) {
		return errors.Wrap(ErrInvalidCredentials, "email is invalid")
	}
	if password == "" {
		return errors.Wrap(ErrInvalidCredentials, "password is required")
	}
	if len(password) < 6 {
		return errors.Wrap(ErrInvalidCredentials, "password must be at least 6 characters")
	}
	return nil
}
