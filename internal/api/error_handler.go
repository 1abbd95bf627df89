package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/api/middleware"
	"github.com/sameboat/jobsheet/internal/api/view"
	"github.com/sameboat/jobsheet/internal/core/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an Echo error handler that:
//   - Maps domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Answers /api requests with {"success": false, "message": "..."} and
//     everything else with the error page.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			_ = c.JSON(code, errorResponse{Message: msg})
			return
		}
		page := view.Page{
			Title: http.StatusText(code),
			Theme: domain.ThemeLight,
			CSRF:  middleware.CSRFToken(c),
			Data:  view.ErrorPage{Code: code, Message: msg},
		}
		if rerr := c.Render(code, "error", page); rerr != nil {
			log.Error().Err(rerr).Msg("render error page")
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	var f *domain.Failure
	hasMessage := errors.As(err, &f) && f.Message != ""
	switch {
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrNotLoggedIn):
		return http.StatusUnauthorized, "login required"
	case errors.Is(err, domain.ErrJobNotFound):
		return http.StatusNotFound, "job not found"
	case errors.Is(err, domain.ErrJobNotStaged):
		return http.StatusConflict, "job not staged for update"
	case errors.Is(err, domain.ErrValidation) && hasMessage:
		return http.StatusUnprocessableEntity, f.Message
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusServiceUnavailable, "backend unavailable"
	case errors.Is(err, domain.ErrServer), errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway, "backend error"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
