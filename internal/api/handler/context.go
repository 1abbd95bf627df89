package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/api/middleware"
	"github.com/sameboat/jobsheet/internal/api/view"
	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

// sessionFrom returns the session installed by the Session middleware.
func sessionFrom(c echo.Context) (ports.Session, error) {
	sess, ok := c.Get(middleware.SessionKey).(ports.Session)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	return sess, nil
}

// pages holds what every HTML handler needs to render a page or hand a
// notice over to the next one.
type pages struct {
	flashes ports.FlashStore
	logger  zerolog.Logger
}

// render shows a page. A pending flash is shown before the toasts queued
// by the handler.
func (p pages) render(c echo.Context, status int, name, title string, n *view.Notifier, data any) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var toasts view.Notifier
	flash, err := p.flashes.Read(ctx, sess.ID())
	if err != nil {
		p.logger.Warn().Err(err).Str("session", sess.ID()).Msg("read flash")
	}
	toasts.ShowFlash(flash)
	if n != nil {
		for _, t := range n.Toasts() {
			toasts.Show(t.Message, t.Type, int(t.Duration.Milliseconds()))
		}
	}

	page := view.Page{
		Title:    title,
		Theme:    sess.Theme(ctx),
		LoggedIn: sess.IsLoggedIn(ctx),
		Toasts:   toasts.Toasts(),
		CSRF:     middleware.CSRFToken(c),
		Data:     data,
	}
	if page.LoggedIn {
		page.Identity, _ = sess.Identity(ctx)
	}
	return c.Render(status, name, page)
}

// redirect queues a flash for the next page and sends the browser there.
func (p pages) redirect(c echo.Context, to string, flash *domain.Flash) error {
	if flash != nil {
		sess, err := sessionFrom(c)
		if err != nil {
			return err
		}
		if err := p.flashes.Set(c.Request().Context(), sess.ID(), *flash); err != nil {
			p.logger.Warn().Err(err).Str("session", sess.ID()).Msg("store flash")
		}
	}
	return c.Redirect(http.StatusSeeOther, to)
}

func notice(msg string, typ domain.NoticeType, durationMs int) *domain.Flash {
	return &domain.Flash{Message: msg, Type: typ, Duration: durationMs}
}
