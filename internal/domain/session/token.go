package session

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a persisted token fails verification.
// Callers treat it like malformed persisted data: the session is anonymous.
var ErrInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies the opaque session credential. The token is
// an HS256 JWT; in a real deployment the issue step is replaced by a network
// credential exchange and only verification stays local.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenIssuer creates a TokenIssuer signing with secret. Tokens expire
// after lifetime; zero means 30 days.
func NewTokenIssuer(secret []byte, lifetime time.Duration) *TokenIssuer {
	if lifetime == 0 {
		lifetime = 30 * 24 * time.Hour
	}
	return &TokenIssuer{secret: secret, lifetime: lifetime}
}

// Issue mints a signed token for user.
func (t *TokenIssuer) Issue(user User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns the subject
// (user id) it was issued for.
func (t *TokenIssuer) Verify(token string) (userID string, err error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
