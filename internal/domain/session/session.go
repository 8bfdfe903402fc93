// Package session owns authentication state: the current user and their
// opaque credential. It gates the cart and order engines and is the only
// component that writes the auth keys in durable storage.
package session

import "github.com/go-faster/errors"

// Sentinel errors for the session taxonomy.
var (
	// ErrInvalidCredentials is returned when login input fails validation.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when a gated operation is attempted
	// without an authenticated session.
	ErrUnauthorized = errors.New("unauthorized")
)

// User is the authenticated identity synthesized at login.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// Session is the current authentication state. User and Token are either
// both set (authenticated) or both empty (anonymous) — never one without
// the other.
type Session struct {
	User  *User
	Token string
}

// Authenticated reports whether the session carries a user and credential.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Repository mirrors session state into durable storage. Load maps a
// malformed persisted user, or a token without a user (and vice versa),
// to the anonymous state.
type Repository interface {
	Load() (token string, user *User, err error)
	Save(token string, user User) error
	Clear() error
}

// CartInvalidator discards cart state when the session ends.
type CartInvalidator interface {
	Invalidate() error
}
