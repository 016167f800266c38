package auth

import (
	"net/http"
	"strings"
)

// SessionCookieName is the cookie the web apps carry their session token in.
const SessionCookieName = "session_token"

// SessionTokenFromRequest returns the session token from Cookie or Authorization Bearer. Prefers cookie.
func SessionTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
