package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sameboat/jobsheet/internal/core/ports"
)

// RequireLogin sends visitors without a stored token to the login page.
// JSON API requests get a 401 instead of a redirect.
func RequireLogin(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := c.Get(SessionKey).(ports.Session)
			if !ok {
				return echo.NewHTTPError(http.StatusInternalServerError, "session middleware not installed")
			}
			if sess.IsLoggedIn(c.Request().Context()) {
				return next(c)
			}
			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}
			return c.Redirect(http.StatusSeeOther, loginPath)
		}
	}
}
