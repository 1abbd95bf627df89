package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

// APIHandler exposes the job sheet as JSON for scripts.
type APIHandler struct {
	jobService ports.JobService
}

func NewAPIHandler(jobService ports.JobService) *APIHandler {
	return &APIHandler{jobService: jobService}
}

type sheetQuery struct {
	Q string `query:"q" validate:"max=200"`
}

type sessionResponse struct {
	LoggedIn bool             `json:"logged_in"`
	Theme    string           `json:"theme"`
	Identity *domain.Identity `json:"identity,omitempty"`
}

// envelopeStatus picks the HTTP status for a failed backend envelope.
func envelopeStatus(kind domain.FailureKind) int {
	switch kind {
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindNetwork:
		return http.StatusServiceUnavailable
	case domain.KindSession:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// Jobs lists the session's jobs with their counters.
//
// @Summary      List jobs
// @Description  Jobs visible for the optional search term, with status counters.
// @Tags         jobs
// @Produce      json
// @Param        q    query     string  false  "Search term"
// @Success      200  {object}  domain.Envelope[ports.JobSheet]
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      502  {object}  map[string]any
// @Router       /api/jobs [get]
func (h *APIHandler) Jobs(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var q sheetQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	env := h.jobService.Sheet(c.Request().Context(), sess, q.Q)
	if !env.Success {
		return c.JSON(envelopeStatus(env.Kind), env)
	}
	return c.JSON(http.StatusOK, env)
}

// Session reports whether the browser session is logged in.
//
// @Summary      Session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.Envelope[sessionResponse]
// @Router       /api/session [get]
func (h *APIHandler) Session(c echo.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	resp := sessionResponse{LoggedIn: sess.IsLoggedIn(ctx), Theme: sess.Theme(ctx)}
	if id, ok := sess.Identity(ctx); ok {
		resp.Identity = &id
	}
	return c.JSON(http.StatusOK, domain.Ok(resp))
}
