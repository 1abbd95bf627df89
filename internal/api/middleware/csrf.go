package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	// CSRFKey is the echo context key holding the request's CSRF token.
	CSRFKey = "csrf"
	// CSRFField is the hidden form field every POST form must carry.
	CSRFField = "_csrf"
)

// CSRF guards state-changing requests with a double-submit token: the
// cookie value must match the CSRFField form value.
func CSRF(secure bool) echo.MiddlewareFunc {
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "form:" + CSRFField,
		ContextKey:     CSRFKey,
		CookieName:     CSRFField,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// CSRFToken returns the token for the current request, or "" outside the
// CSRF middleware.
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(CSRFKey).(string)
	return token
}
