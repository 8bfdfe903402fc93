package session

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store holds the current session and keeps it in lockstep with durable
// storage: every state change mutates memory and writes through before
// returning. Login and Logout are serialized by the store's mutex, so a
// second conflicting mutation cannot start while one is in flight.
type Store struct {
	repo   Repository
	tokens *TokenIssuer
	carts  CartInvalidator

	mu  sync.Mutex
	cur Session
}

// NewStore creates a Store. carts may be nil when no cart engine is wired
// (logout then only clears auth state).
func NewStore(repo Repository, tokens *TokenIssuer, carts CartInvalidator) *Store {
	return &Store{repo: repo, tokens: tokens, carts: carts}
}

// Restore initializes the session from durable storage. A persisted token
// and user that both verify yield an authenticated session; anything else
// (absent keys, malformed user, bad token) yields anonymous. The token is
// trusted as-is beyond local verification — no credential authority is
// consulted here.
func (s *Store) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, user, err := s.repo.Load()
	if err != nil {
		s.cur = Session{}
		return err
	}
	if token == "" || user == nil {
		s.cur = Session{}
		return nil
	}
	if _, verr := s.tokens.Verify(token); verr != nil {
		s.cur = Session{}
		return nil
	}

	s.cur = Session{User: user, Token: token}
	return nil
}

// Login authenticates with the given credentials. It models an asynchronous
// round trip: the local user synthesis stands in for a network credential
// exchange, and callers must treat the operation as suspending. Empty email
// or password fails with ErrInvalidCredentials; stricter format policies
// belong to the caller (see CredentialPolicy).
//
// On success the session holds a synthesized user (display name = local part
// of the email) and a freshly issued token, both persisted before return. A
// storage write failure leaves the in-memory session authenticated and is
// reported so the caller can continue memory-only.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.cur, err
	}
	if email == "" || password == "" {
		return s.cur, ErrInvalidCredentials
	}

	user := User{
		ID:          uuid.New().String(),
		Email:       email,
		DisplayName: displayName(email),
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return s.cur, err
	}

	s.cur = Session{User: &user, Token: token}
	if err := s.repo.Save(token, user); err != nil {
		return s.cur, err
	}
	return s.cur, nil
}

// Logout clears the session, its durable mirror, and the cart. It is
// idempotent: logging out an anonymous session is a no-op. The in-memory
// state is always cleared; a storage failure is reported afterward.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cur.Authenticated() {
		return nil
	}
	s.cur = Session{}

	if err := s.repo.Clear(); err != nil {
		return err
	}
	if s.carts != nil {
		if err := s.carts.Invalidate(); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.cur
	if cur.User != nil {
		u := *cur.User
		cur.User = &u
	}
	return cur
}

// displayName derives the user-facing name from the email local part.
func displayName(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
