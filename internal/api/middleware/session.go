package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sameboat/jobsheet/internal/core/ports"
)

// SessionKey is the echo context key holding the request's ports.Session.
const SessionKey = "session"

// SessionOptions configures the browser cookie that carries the session id.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session resolves the sid cookie to a session, issuing a fresh random id
// when the cookie is missing or not a UUID.
func Session(provider ports.SessionProvider, opts SessionOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(opts.CookieName); err == nil {
				if parsed, err := uuid.Parse(ck.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			sess := provider.Open(id)
			// The cookie is written as the headers go out so an id rotated
			// by the handler reaches the browser. Stored values keep the TTL
			// they were written with, so a login lasts at most opts.TTL.
			c.Response().Before(func() {
				c.SetCookie(&http.Cookie{
					Name:     opts.CookieName,
					Value:    sess.ID(),
					Path:     "/",
					MaxAge:   int(opts.TTL.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			})

			c.Set(SessionKey, sess)
			return next(c)
		}
	}
}
