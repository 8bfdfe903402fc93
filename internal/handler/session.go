package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"

	"storefront/internal/domain/session"
	"storefront/internal/storage/kv"
)

// Login authenticates the caller. The credential policy runs first; Login
// itself then only rejects empty inputs. A storage write failure still
// yields an authenticated (memory-only) session, flagged with a warning.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "unreadable body")
		return
	}

	var email, password string
	if err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "email":
			email, err = d.Str()
		case "password":
			password, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed json body")
		return
	}

	if err := h.policy(email, password); err != nil {
		writeDomainError(w, err)
		return
	}

	sess, err := h.sessions.Login(r.Context(), email, password)
	if err != nil && !kv.IsStorageError(err) {
		writeDomainError(w, err)
		return
	}
	degraded := err != nil

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("token", func(e *jx.Encoder) { e.Str(sess.Token) })
			e.Field("user", func(e *jx.Encoder) { encodeUser(e, *sess.User) })
			if degraded {
				e.Field("warning", func(e *jx.Encoder) { e.Str(codeStorageFailure) })
			}
		})
	})
}

// Logout ends the session. Idempotent: logging out while anonymous is a
// successful no-op.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the current authentication state.
func (h *Handler) Session(w http.ResponseWriter, _ *http.Request) {
	sess := h.sessions.Snapshot()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("authenticated", func(e *jx.Encoder) { e.Bool(sess.Authenticated()) })
			if sess.Authenticated() {
				e.Field("user", func(e *jx.Encoder) { encodeUser(e, *sess.User) })
			}
		})
	})
}

func encodeUser(e *jx.Encoder, u session.User) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(u.ID) })
		e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
		e.Field("display_name", func(e *jx.Encoder) { e.Str(u.DisplayName) })
	})
}
