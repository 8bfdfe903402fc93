package kvstore

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"storefront/internal/domain/session"
	"storefront/internal/storage/kv"
)

var _ session.Repository = (*SessionRepository)(nil)

// SessionRepository mirrors the token and user under "auth-token" and
// "user-data".
type SessionRepository struct {
	store kv.Store
}

// NewSessionRepository returns a SessionRepository over store.
func NewSessionRepository(store kv.Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// Load reads the persisted credential pair. If either half is absent or the
// user blob is malformed, both are reported absent — a token without a user
// (or vice versa) is not a valid session.
func (r *SessionRepository) Load() (string, *session.User, error) {
	rawToken, ok, err := r.store.Get(KeyAuthToken)
	if err != nil {
		return "", nil, err
	}
	if !ok || len(rawToken) == 0 {
		return "", nil, nil
	}

	rawUser, ok, err := r.store.Get(KeyUserData)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, nil
	}

	user, err := decodeUser(jx.DecodeBytes(rawUser))
	if err != nil {
		return "", nil, nil
	}
	return string(rawToken), &user, nil
}

// Save writes both halves of the credential pair.
func (r *SessionRepository) Save(token string, user session.User) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(user.ID) })
		e.Field("email", func(e *jx.Encoder) { e.Str(user.Email) })
		e.Field("display_name", func(e *jx.Encoder) { e.Str(user.DisplayName) })
	})

	if err := r.store.Set(KeyUserData, e.Bytes()); err != nil {
		return err
	}
	return r.store.Set(KeyAuthToken, []byte(token))
}

// Clear deletes both credential keys. The token goes first so a failure
// midway can never leave a stale credential without its user rather than
// the reverse.
func (r *SessionRepository) Clear() error {
	if err := r.store.Delete(KeyAuthToken); err != nil {
		return err
	}
	return r.store.Delete(KeyUserData)
}

func decodeUser(d *jx.Decoder) (session.User, error) {
	var u session.User
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			u.ID, err = d.Str()
		case "email":
			u.Email, err = d.Str()
		case "display_name":
			u.DisplayName, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return session.User{}, err
	}
	if u.ID == "" || u.Email == "" {
		return session.User{}, errors.New("user record incomplete")
	}
	return u, nil
}
