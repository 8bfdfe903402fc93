package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requireAuth gates an endpoint on the live session: the request must carry
// the session's own bearer token. The comparison is constant-time so the
// check does not leak token bytes through timing.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := h.sessions.Snapshot()
		if !sess.Authenticated() {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		token := bearerToken(r)
		if token == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(sess.Token)) != 1 {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid or missing token")
			return
		}

		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return auth[len(prefix):]
}
