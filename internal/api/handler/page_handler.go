package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

// PageHandler serves the static pages and the theme switch.
type PageHandler struct {
	pages
}

func NewPageHandler(flashes ports.FlashStore, logger zerolog.Logger) *PageHandler {
	return &PageHandler{pages: pages{flashes: flashes, logger: logger}}
}

// Index renders GET /.
func (h *PageHandler) Index(c echo.Context) error {
	return h.render(c, http.StatusOK, "index", "Jobsheet", nil, nil)
}

// Contact renders GET /contact.
func (h *PageHandler) Contact(c echo.Context) error {
	return h.render(c, http.StatusOK, "contact", "Contact", nil, nil)
}

// ToggleTheme handles POST /theme and returns to the page it came from.
func (h *PageHandler) ToggleTheme(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	next := domain.ThemeDark
	if sess.Theme(ctx) == domain.ThemeDark {
		next = domain.ThemeLight
	}
	if err := sess.SetTheme(ctx, next); err != nil {
		h.logger.Warn().Err(err).Str("session", sess.ID()).Msg("store theme")
	}
	return c.Redirect(http.StatusSeeOther, sameOriginPath(c.Request().Referer()))
}

// sameOriginPath keeps only the path and query of a referer so the redirect
// never leaves the site.
func sameOriginPath(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
