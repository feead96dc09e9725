package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "sid"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

type sessionKey struct{}

// SessionID returns the browser session id attached by Session
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey{}).(string)
	return sid
}

// Session resolves the browser session from the X-Session-ID header, then the
// sid cookie, and issues a new id when neither holds a well-formed value.
// The id is echoed back in both the header and the cookie.
func Session(secure bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := r.Header.Get(SessionHeader)
			if !sessionIDPattern.MatchString(sid) {
				sid = ""
				if c, err := r.Cookie(SessionCookie); err == nil && sessionIDPattern.MatchString(c.Value) {
					sid = c.Value
				}
			}
			if sid == "" {
				sid = uuid.New().String()
			}

			w.Header().Set(SessionHeader, sid)
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionKey{}, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
